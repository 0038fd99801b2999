package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orthodoxrecords/site/internal/animation"
	"github.com/orthodoxrecords/site/internal/infrastructure/logging"
)

type replayOptions struct {
	input    string
	height   float64
	interval time.Duration
}

func newReplayCmd(root *rootOptions) *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a scroll trace through the frame coalescer.",
		Long: `replay reads one viewport per line, "scrollY [windowHeight]", and writes
each coalesced frame as a JSON line. Blank lines and lines starting with #
are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}
			engine, logger, err := root.engine()
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			src := cmd.InOrStdin()
			if opts.input != "" && opts.input != "-" {
				f, err := os.Open(opts.input)
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			n, err := replay(cmd.Context(), engine, src, cmd.OutOrStdout(), opts.height, opts.interval)
			logger.Debug("replay finished", zap.Int("frames", n), zap.Error(err))
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "trace file, - for stdin")
	cmd.Flags().Float64Var(&opts.height, "height", 900, "window height for lines that omit it")
	cmd.Flags().DurationVar(&opts.interval, "interval", 16*time.Millisecond, "frame interval")
	return cmd
}

// replay pipes parsed viewports through Engine.Run and encodes every frame.
// It returns the number of frames written.
func replay(ctx context.Context, engine *animation.Engine, src io.Reader, dst io.Writer, height float64, interval time.Duration) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	in := make(chan animation.Viewport)
	out := make(chan animation.Frame)

	g.Go(func() error {
		defer close(in)
		scanner := bufio.NewScanner(src)
		line := 0
		for scanner.Scan() {
			line++
			v, ok, err := parseViewport(scanner.Text(), height)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if !ok {
				continue
			}
			select {
			case in <- v:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return scanner.Err()
	})

	g.Go(func() error {
		defer close(out)
		return engine.Run(ctx, in, interval, out)
	})

	written := 0
	g.Go(func() error {
		enc := json.NewEncoder(dst)
		for frame := range out {
			if err := enc.Encode(frame); err != nil {
				return err
			}
			written++
		}
		return nil
	})

	err := g.Wait()
	return written, err
}

func parseViewport(line string, defaultHeight float64) (animation.Viewport, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return animation.Viewport{}, false, nil
	}
	fields := strings.Fields(line)
	if len(fields) > 2 {
		return animation.Viewport{}, false, fmt.Errorf("expected \"scrollY [windowHeight]\", got %q", line)
	}
	y, err := parseFinite(fields[0])
	if err != nil {
		return animation.Viewport{}, false, fmt.Errorf("scrollY: %w", err)
	}
	h := defaultHeight
	if len(fields) == 2 {
		if h, err = parseFinite(fields[1]); err != nil {
			return animation.Viewport{}, false, fmt.Errorf("windowHeight: %w", err)
		}
	}
	return animation.Viewport{ScrollY: y, WindowHeight: h}, true, nil
}

// parseFinite rejects NaN and infinities, which JSON cannot carry.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
