package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orthodoxrecords/site/internal/animation"
	"github.com/orthodoxrecords/site/internal/infrastructure/logging"
)

type rootOptions struct {
	configPath string
	verbose    bool
	glyph      float64
	label      float64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "scrollmap",
		Short: "Inspect the hero scroll animation mapping.",
		Long: `scrollmap evaluates the scroll-driven hero animation outside the browser.
It prints parameter tables for a scroll range, replays recorded scroll
traces through the frame coalescer, and dumps the default tuning.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML file overriding the default animation tuning")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")
	root.PersistentFlags().Float64Var(&opts.glyph, "glyph", 0, "rendered glyph width in px, used for logo centering")
	root.PersistentFlags().Float64Var(&opts.label, "label", 0, "rendered label width in px, used for logo centering")

	root.AddCommand(newTableCmd(opts), newReplayCmd(opts), newDefaultsCmd())
	return root
}

// engine loads the configured tuning and applies any measured widths.
func (o *rootOptions) engine() (*animation.Engine, *zap.Logger, error) {
	logger, err := logging.NewCLI(o.verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := animation.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	engine, err := animation.NewEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	if o.glyph > 0 || o.label > 0 {
		engine.Measure(o.glyph, o.label)
	}
	logger.Debug("engine ready",
		zap.String("config", o.configPath),
		zap.Float64("distance", cfg.Distance),
		zap.Float64("centering_offset", engine.CenteringOffset()),
	)
	return engine, logger, nil
}
