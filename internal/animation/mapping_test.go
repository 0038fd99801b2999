package animation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestProgressClamps(t *testing.T) {
	cases := []struct {
		scrollY  float64
		expected float64
	}{
		{-100, 0},
		{0, 0},
		{200, 0.25},
		{400, 0.5},
		{800, 1},
		{801, 1},
		{5000, 1},
	}
	for _, tc := range cases {
		require.InDelta(t, tc.expected, Progress(tc.scrollY, 800), eps, "scrollY=%v", tc.scrollY)
	}
}

func TestEasedProgressEndpointsAndMonotonic(t *testing.T) {
	require.Equal(t, 0.0, EasedProgress(0))
	require.Equal(t, 1.0, EasedProgress(1))
	require.InDelta(t, 0.875, EasedProgress(0.5), eps)

	prev := EasedProgress(0)
	for i := 1; i <= 1000; i++ {
		cur := EasedProgress(float64(i) / 1000)
		require.GreaterOrEqual(t, cur, prev)
		require.LessOrEqual(t, cur, 1.0)
		prev = cur
	}
}

func TestRotationAndTranslate(t *testing.T) {
	require.Equal(t, 0.0, Rotation(0))
	require.Equal(t, -90.0, Rotation(1))
	require.InDelta(t, -45, Rotation(0.5), eps)

	// centerOffset = 900/2 - 90 = 360
	require.InDelta(t, -360, TranslateY(1, 900, 90), eps)
	require.InDelta(t, -180, TranslateY(0.5, 900, 90), eps)
	require.Equal(t, 0.0, TranslateY(0, 900, 90))
}

func TestLogoInterpolations(t *testing.T) {
	cfg := DefaultConfig()

	require.InDelta(t, 0.75, cfg.LogoScale(0), eps)
	require.InDelta(t, 0.39, cfg.LogoScale(1), eps)
	require.InDelta(t, 0.4, cfg.SeparationVw(0), eps)
	require.InDelta(t, 0, cfg.SeparationVw(1), eps)
	require.InDelta(t, 450, LogoY(0, 900, 90), eps)
	require.InDelta(t, 45, LogoY(1, 900, 90), eps)
	require.InDelta(t, -60, XShift(0.5, -120), eps)
}

func TestSquareOpacitySmoothstep(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 0.0, cfg.SquareOpacity(0))
	require.Equal(t, 0.0, cfg.SquareOpacity(0.85))
	require.InDelta(t, 1, cfg.SquareOpacity(1), eps)
	// halfway through the ramp smoothstep is exactly 0.5
	require.InDelta(t, 0.5, cfg.SquareOpacity(0.925), 1e-6)
	// zero slope at the start: well below the linear ramp value
	require.Less(t, cfg.SquareOpacity(0.86), (0.86-0.85)/0.15)
}

func TestTextColorAndFilter(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 255, TextColor(0))
	require.Equal(t, 0, TextColor(1))
	require.Equal(t, 128, TextColor(0.5))
	require.Equal(t, "none", cfg.LogoFilter(0.4))
	require.Equal(t, "invert(1) brightness(2)", cfg.LogoFilter(0.41))
}

func TestHeaderOpacityThreshold(t *testing.T) {
	cfg := DefaultConfig()

	for _, p := range []float64{0, 0.25, 0.5, 0.75} {
		require.Equal(t, 0.0, cfg.HeaderOpacity(p), "progress=%v", p)
	}
	require.InDelta(t, 0.5, cfg.HeaderOpacity(0.875), eps)
	require.Equal(t, 1.0, cfg.HeaderOpacity(1))
}

func TestContentFadeOverlapsHero(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 0.0, cfg.ContentOpacity(0))
	require.Equal(t, 0.0, cfg.ContentOpacity(400))
	require.InDelta(t, 0.5, cfg.ContentOpacity(600), eps)
	require.Equal(t, 1.0, cfg.ContentOpacity(800))
	require.Equal(t, 1.0, cfg.ContentOpacity(2000))

	require.InDelta(t, 50, cfg.ContentTranslateY(300), eps)
	require.InDelta(t, 25, cfg.ContentTranslateY(450), eps)
	require.Equal(t, 0.0, cfg.ContentTranslateY(600))
	require.Equal(t, 0.0, cfg.ContentTranslateY(1200))
}

func TestLogoCentering(t *testing.T) {
	require.InDelta(t, -150, LogoCentering(100, 400), eps)
	require.InDelta(t, 0, LogoCentering(200, 200), eps)
}

func TestClampHandlesNaN(t *testing.T) {
	require.Equal(t, 0.0, clamp01(math.NaN()))
	require.Equal(t, 0.0, EasedProgress(math.NaN()))
}
