package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// InspectBuffer holds the reported state of one buffer.
type InspectBuffer struct {
	ID          int            `json:"id"`
	Events      int            `json:"events"`
	Undone      int            `json:"undone"`
	Absent      bool           `json:"absent"`
	Opacity     float64        `json:"opacity"`
	HasAlpha    bool           `json:"has_alpha"`
	Checkpoints int            `json:"checkpoints"`
	EventTypes  map[string]int `json:"event_types"`
}

// InspectResult holds the overall inspection report.
type InspectResult struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Buffers  []InspectBuffer `json:"buffers"`
	Authors  map[string]int  `json:"authors"`
	MemBytes int             `json:"mem_bytes"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <log>",
		Short: "Report a picture log's structure",
		Long: `Parse a serialized picture log and report its buffers, event logs and
authoring sessions without writing any image.

Examples:
  easel inspect picture.easel
  easel inspect picture.easel --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, cmd *cobra.Command, path string) error {
	pic, err := loadPicture(path, 1)
	if err != nil {
		return err
	}
	defer pic.Free()

	result := InspectResult{
		Width:    pic.Width(),
		Height:   pic.Height(),
		Authors:  map[string]int{},
		MemBytes: pic.MemBytes(),
	}
	for i := 0; i < pic.BufferCount(); i++ {
		b := pic.BufferAt(i)
		ib := InspectBuffer{
			ID:         b.ID(),
			Events:     b.EventCount(),
			Absent:     b.Absent(),
			Opacity:    b.Opacity(),
			HasAlpha:   b.Opts().HasAlpha,
			EventTypes: map[string]int{},
		}
		ib.Checkpoints, _, _ = b.CheckpointStats()
		for k := 0; k < b.EventCount(); k++ {
			e := b.EventAt(k)
			ib.EventTypes[e.Type().String()]++
			if e.Base().Undone() {
				ib.Undone++
			}
			author := fmt.Sprintf("%d", e.Base().AuthorID)
			if seq := e.Base().AuthorSeq; seq > result.Authors[author] {
				result.Authors[author] = seq
			}
		}
		result.Buffers = append(result.Buffers, ib)
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return outputInspectText(cmd, result)
}

func outputInspectText(cmd *cobra.Command, result InspectResult) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Picture %dx%d, %d buffer(s), ~%d KiB\n\n",
		result.Width, result.Height, len(result.Buffers), result.MemBytes/1024)
	for i, b := range result.Buffers {
		state := ""
		if b.Absent {
			state = " (absent)"
		}
		fmt.Fprintf(w, "[%d] buffer %d%s\n", i, b.ID, state)
		fmt.Fprintf(w, "  events: %d (%d undone), checkpoints: %d, opacity: %g, alpha: %v\n",
			b.Events, b.Undone, b.Checkpoints, b.Opacity, b.HasAlpha)
		for tag, n := range b.EventTypes {
			fmt.Fprintf(w, "    %s: %d\n", tag, n)
		}
	}
	if len(result.Authors) > 0 {
		fmt.Fprintln(w, "\nAuthors (highest sequence number):")
		for author, seq := range result.Authors {
			fmt.Fprintf(w, "  %s: %d\n", author, seq)
		}
	}
	return nil
}
