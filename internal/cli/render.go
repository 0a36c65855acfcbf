package cli

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/easel"
	"github.com/gogpu/easel/backend"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Output  string
	Scale   float64
	Backend string
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <log>",
		Short: "Composite a picture log to a PNG",
		Long: `Parse a serialized picture log, replay every buffer and composite the
visible stack to a PNG image.

Examples:
  easel render picture.easel -o picture.png
  easel render picture.easel -o big.png --scale 2
  easel render picture.easel -o out.png --backend software`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "out.png", "output PNG path")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 1, "geometry scale factor applied on load")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "pixel backend (default: best available)")

	return cmd
}

func runRender(opts *RenderOptions, cmd *cobra.Command, path string) error {
	b, err := pickBackend(opts.Backend)
	if err != nil {
		return err
	}
	pic, err := loadPicture(path, opts.Scale, easel.WithBackend(b))
	if err != nil {
		return err
	}
	defer pic.Free()

	img, err := pic.Composite()
	if err != nil {
		return fmt.Errorf("compositing: %w", err)
	}
	out, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", opts.Output, err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding %s: %w", opts.Output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rendered %dx%d to %s (%s backend)\n",
		pic.Width(), pic.Height(), opts.Output, b.Name())
	return nil
}

// pickBackend resolves a backend by name, or the best available one.
func pickBackend(name string) (easel.Backend, error) {
	if name == "" {
		b := backend.Default()
		if b == nil {
			return nil, backend.ErrBackendNotAvailable
		}
		return b, nil
	}
	b := backend.Get(name)
	if b == nil {
		return nil, fmt.Errorf("backend %q not available (registered: %v)", name, backend.Available())
	}
	return b, nil
}
