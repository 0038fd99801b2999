package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/orthodoxrecords/site/internal/animation"
	"github.com/orthodoxrecords/site/internal/infrastructure/logging"
)

type tableOptions struct {
	from   float64
	to     float64
	step   float64
	height float64
	format string
}

func newTableCmd(root *rootOptions) *cobra.Command {
	opts := &tableOptions{}
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print animation parameters across a scroll range.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.step <= 0 {
				return fmt.Errorf("--step must be positive")
			}
			if opts.format != "json" && opts.format != "yaml" {
				return fmt.Errorf("unknown format %q (json, yaml)", opts.format)
			}
			engine, logger, err := root.engine()
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			to := opts.to
			if to < 0 {
				to = engine.Config().Distance
			}
			frames := buildTable(engine, opts.from, to, opts.step, opts.height)

			out := cmd.OutOrStdout()
			if opts.format == "yaml" {
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(frames)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(frames)
		},
	}
	cmd.Flags().Float64Var(&opts.from, "from", 0, "first scroll offset in px")
	cmd.Flags().Float64Var(&opts.to, "to", -1, "last scroll offset in px (default: the animation distance)")
	cmd.Flags().Float64Var(&opts.step, "step", 100, "scroll increment in px")
	cmd.Flags().Float64Var(&opts.height, "height", 900, "window height in px")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

// buildTable samples from..to inclusive. The last row is always to, even
// when step does not divide the range.
func buildTable(engine *animation.Engine, from, to, step, height float64) []animation.Frame {
	var frames []animation.Frame
	var seq uint64
	add := func(y float64) {
		seq++
		v := animation.Viewport{ScrollY: y, WindowHeight: height}
		frames = append(frames, animation.Frame{Seq: seq, Viewport: v, Params: engine.Compute(v)})
	}
	y := from
	for ; y < to; y += step {
		add(y)
	}
	add(to)
	return frames
}
