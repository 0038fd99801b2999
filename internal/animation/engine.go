package animation

import (
	"context"
	"sync"
	"time"
)

// Viewport is an immutable snapshot of the inputs read from the page.
type Viewport struct {
	ScrollY      float64 `json:"scrollY" yaml:"scrollY"`
	WindowHeight float64 `json:"windowHeight" yaml:"windowHeight"`
}

// Parameters is everything the rendering layer needs for one frame.
type Parameters struct {
	Progress            float64 `json:"progress" yaml:"progress"`
	EasedProgress       float64 `json:"easedProgress" yaml:"easedProgress"`
	RotationDeg         float64 `json:"rotationDeg" yaml:"rotationDeg"`
	TranslateYPx        float64 `json:"translateYPx" yaml:"translateYPx"`
	Scale               float64 `json:"scale" yaml:"scale"`
	LogoYPx             float64 `json:"logoYPx" yaml:"logoYPx"`
	SeparationVw        float64 `json:"separationVw" yaml:"separationVw"`
	XShiftPx            float64 `json:"xShiftPx" yaml:"xShiftPx"`
	SquareOpacity       float64 `json:"squareOpacity" yaml:"squareOpacity"`
	TextColor           int     `json:"textColor" yaml:"textColor"`
	LogoFilter          string  `json:"logoFilter" yaml:"logoFilter"`
	HeaderOpacity       float64 `json:"headerOpacity" yaml:"headerOpacity"`
	ContentOpacity      float64 `json:"contentOpacity" yaml:"contentOpacity"`
	ContentTranslateYPx float64 `json:"contentTranslateYPx" yaml:"contentTranslateYPx"`
}

// Frame is one coalesced recomputation.
type Frame struct {
	Seq      uint64     `json:"seq" yaml:"seq"`
	Viewport Viewport   `json:"viewport" yaml:"viewport"`
	Params   Parameters `json:"params" yaml:"params"`
}

// Engine computes Parameters for a validated Config. The logo centering
// offset depends on rendered widths that arrive after layout, so it is
// stored separately and defaults to zero until Measure is called.
type Engine struct {
	cfg Config

	mu     sync.RWMutex
	offset float64
}

// NewEngine validates cfg and returns an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Measure records the rendered glyph and label widths.
func (e *Engine) Measure(glyphWidth, labelWidth float64) {
	offset := LogoCentering(glyphWidth, labelWidth)
	e.mu.Lock()
	e.offset = offset
	e.mu.Unlock()
}

// CenteringOffset returns the last measured offset.
func (e *Engine) CenteringOffset() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.offset
}

// Compute derives all parameters for v.
func (e *Engine) Compute(v Viewport) Parameters {
	cfg := e.cfg
	progress := Progress(v.ScrollY, cfg.Distance)
	eased := EasedProgress(progress)
	square := cfg.SquareOpacity(eased)
	return Parameters{
		Progress:            progress,
		EasedProgress:       eased,
		RotationDeg:         Rotation(eased),
		TranslateYPx:        TranslateY(eased, v.WindowHeight, cfg.HeaderHeight),
		Scale:               cfg.LogoScale(eased),
		LogoYPx:             LogoY(eased, v.WindowHeight, cfg.HeaderHeight),
		SeparationVw:        cfg.SeparationVw(eased),
		XShiftPx:            XShift(eased, e.CenteringOffset()),
		SquareOpacity:       square,
		TextColor:           TextColor(square),
		LogoFilter:          cfg.LogoFilter(square),
		HeaderOpacity:       cfg.HeaderOpacity(progress),
		ContentOpacity:      cfg.ContentOpacity(v.ScrollY),
		ContentTranslateYPx: cfg.ContentTranslateY(v.ScrollY),
	}
}

// Run coalesces viewport snapshots into at most one Frame per interval. Only
// the latest snapshot seen since the previous frame is computed. When in is
// closed any pending snapshot is flushed and Run returns nil. Run blocks on
// out, so a slow consumer slows the frame rate instead of queueing frames.
func (e *Engine) Run(ctx context.Context, in <-chan Viewport, interval time.Duration, out chan<- Frame) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		pending Viewport
		dirty   bool
		seq     uint64
	)
	emit := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seq++
		frame := Frame{Seq: seq, Viewport: pending, Params: e.Compute(pending)}
		dirty = false
		select {
		case out <- frame:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v, ok := <-in:
			if !ok {
				if dirty {
					return emit()
				}
				return nil
			}
			pending = v
			dirty = true
		case <-ticker.C:
			if !dirty {
				continue
			}
			if err := emit(); err != nil {
				return err
			}
		}
	}
}
