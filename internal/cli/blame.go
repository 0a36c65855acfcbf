package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// BlameOptions holds flags for the blame command.
type BlameOptions struct {
	*RootOptions
	X int
	Y int
}

// BlameResult holds one pixel attribution.
type BlameResult struct {
	X       int          `json:"x"`
	Y       int          `json:"y"`
	Entries []BlameEntry `json:"entries"`
}

// BlameEntry names one contributing event.
type BlameEntry struct {
	BufferID   int     `json:"buffer_id"`
	EventIndex int     `json:"event_index"`
	Type       string  `json:"type"`
	AuthorID   int     `json:"author_id"`
	AuthorSeq  int     `json:"author_seq"`
	Alpha      float64 `json:"alpha"`
}

// NewBlameCommand creates the blame command.
func NewBlameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BlameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "blame <log>",
		Short: "Attribute a pixel to the events that painted it",
		Long: `Parse a picture log and report, front to back, every event that touches
the given pixel, with the alpha each would apply in isolation.

Examples:
  easel blame picture.easel -x 120 -y 48
  easel blame picture.easel -x 0 -y 0 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlame(opts, cmd, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.X, "x", "x", 0, "pixel x coordinate")
	cmd.Flags().IntVarP(&opts.Y, "y", "y", 0, "pixel y coordinate")

	return cmd
}

func runBlame(opts *BlameOptions, cmd *cobra.Command, path string) error {
	pic, err := loadPicture(path, 1)
	if err != nil {
		return err
	}
	defer pic.Free()

	if opts.X < 0 || opts.X >= pic.Width() || opts.Y < 0 || opts.Y >= pic.Height() {
		return fmt.Errorf("pixel (%d,%d) outside %dx%d picture", opts.X, opts.Y, pic.Width(), pic.Height())
	}

	result := BlameResult{X: opts.X, Y: opts.Y}
	for _, e := range pic.BlamePixel(opts.X, opts.Y) {
		base := e.Event.Base()
		result.Entries = append(result.Entries, BlameEntry{
			BufferID:   e.Buffer.ID(),
			EventIndex: e.EventIndex,
			Type:       e.Event.Type().String(),
			AuthorID:   base.AuthorID,
			AuthorSeq:  base.AuthorSeq,
			Alpha:      e.Alpha,
		})
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	w := cmd.OutOrStdout()
	if len(result.Entries) == 0 {
		fmt.Fprintf(w, "no events touch pixel (%d,%d)\n", result.X, result.Y)
		return nil
	}
	fmt.Fprintf(w, "pixel (%d,%d), front to back:\n", result.X, result.Y)
	for _, e := range result.Entries {
		fmt.Fprintf(w, "  buffer %d event %d: %s by author %d (seq %d), alpha %.3f\n",
			e.BufferID, e.EventIndex, e.Type, e.AuthorID, e.AuthorSeq, e.Alpha)
	}
	return nil
}
