// Package animation maps the landing page scroll offset to the transform
// parameters of the hero animation. Every mapping is a total function of its
// arguments; the only state is the late-arriving logo measurement held by
// Engine.
package animation

import "math"

// Progress is the linear ratio of scrollY to distance, clamped to [0,1].
func Progress(scrollY, distance float64) float64 {
	return clamp01(scrollY / distance)
}

// EasedProgress applies a cubic ease-out.
func EasedProgress(progress float64) float64 {
	p := clamp01(progress)
	inv := 1 - p
	return 1 - inv*inv*inv
}

// Rotation turns the background plane counter-clockwise up to 90 degrees.
func Rotation(eased float64) float64 {
	return eased * -90
}

// TranslateY keeps the rotating background centered under the viewport
// whatever the viewport height.
func TranslateY(eased, windowHeight, headerHeight float64) float64 {
	centerOffset := windowHeight/2 - headerHeight
	return eased * -centerOffset
}

// LogoScale shrinks the wordmark from its hero size to its header size.
func (c Config) LogoScale(eased float64) float64 {
	return lerp(c.Logo.StartScale, c.Logo.EndScale, eased)
}

// LogoY moves the wordmark from the viewport middle to the header middle.
func LogoY(eased, windowHeight, headerHeight float64) float64 {
	return lerp(windowHeight/2, headerHeight/2, eased)
}

// SeparationVw closes the gap between glyph and label.
func (c Config) SeparationVw(eased float64) float64 {
	return lerp(c.Separation.Start, c.Separation.End, eased)
}

// XShift applies the optical centering offset proportionally to progress.
func XShift(eased, finalOffset float64) float64 {
	return finalOffset * eased
}

// SquareOpacity fades the glyph square in over the tail of the animation.
// Smoothstep avoids a visible linear pop at both ends of the ramp.
func (c Config) SquareOpacity(eased float64) float64 {
	raw := clamp01((eased - c.Opacity.SquareStart) / c.Opacity.SquareRange)
	return smoothstep(raw)
}

// TextColor is the grey channel of the label, white over the dark square
// and black without it.
func TextColor(squareOpacity float64) int {
	return int(math.Round(255 - clamp01(squareOpacity)*255))
}

// LogoFilter inverts the glyph once the square is mostly visible.
func (c Config) LogoFilter(squareOpacity float64) string {
	if squareOpacity > c.Filter.Threshold {
		return c.Filter.Value
	}
	return "none"
}

// HeaderOpacity stays at zero until progress passes the header threshold and
// reaches one at the end of the animation.
func (c Config) HeaderOpacity(progress float64) float64 {
	start := c.Opacity.HeaderStart
	return clamp01((progress - start) / (1 - start))
}

// ContentOpacity fades the content section in from a fraction of the
// animation distance, overlapping the end of the hero animation.
func (c Config) ContentOpacity(scrollY float64) float64 {
	start := c.Distance * c.Opacity.ContentStart
	span := c.Distance - start
	return clamp01((scrollY - start) / span)
}

// ContentTranslateY slides the content section up as it fades in.
func (c Config) ContentTranslateY(scrollY float64) float64 {
	return math.Max(0, c.Content.OffsetPx-(scrollY-c.Content.StartPx)/c.Content.Rate)
}

// LogoCentering returns the horizontal offset that puts the midpoint of the
// two-part wordmark at the viewport center once the animation completes.
// The label is wider than the glyph, so the result is usually negative.
func LogoCentering(glyphWidth, labelWidth float64) float64 {
	return -((labelWidth - glyphWidth) / 2)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
