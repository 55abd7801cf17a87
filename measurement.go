package deckexport

import (
	"math"
	"strconv"
	"strings"
)

// Canvas-to-target conversion helpers.
// Every element rectangle is authored on the 800×450 canvas; widths normalize
// against 800 and heights against 450, then scale to the target's own size.

// Axis selects which canvas dimension a value is normalized against.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// cssPixelsPerInch is the CSS reference resolution.
const cssPixelsPerInch = 96.0

// defaultFontSizePx is used when a font size is missing or unparsable.
const defaultFontSizePx = 16.0

// A4 landscape page and the slide box placed on it, in millimetres.
const (
	pdfPageWidth  = 297.0
	pdfPageHeight = 210.0
	pdfSlideWidth = 277.0
	mmPerInch     = 25.4
)

// UnitSpace describes the native coordinate system of one export target.
type UnitSpace struct {
	Name   string
	Unit   string
	Width  float64 // target width of the full canvas, in Unit
	Height float64 // target height of the full canvas, in Unit

	// InchesPerUnit relates the space to physical size for font scaling.
	// Zero means the space has no physical size.
	InchesPerUnit float64
}

// Predefined unit spaces.
var (
	// OfficeInches is the 16:9 PowerPoint slide.
	OfficeInches = UnitSpace{Name: "office", Unit: "in", Width: 10, Height: 5.625, InchesPerUnit: 1}

	// WebPixels is the canvas itself, as rendered by a browser.
	WebPixels = UnitSpace{Name: "web", Unit: "px", Width: CanvasWidth, Height: CanvasHeight, InchesPerUnit: 1 / cssPixelsPerInch}

	// WebPercent expresses positions relative to the slide box.
	WebPercent = UnitSpace{Name: "percent", Unit: "%", Width: 100, Height: 100}

	// PDFMillimetres is the slide box fitted to the width of an A4 landscape
	// page with a 10mm margin.
	PDFMillimetres = UnitSpace{
		Name:          "pdf",
		Unit:          "mm",
		Width:         pdfSlideWidth,
		Height:        pdfSlideWidth * CanvasHeight / CanvasWidth,
		InchesPerUnit: 1 / mmPerInch,
	}
)

// RasterPixels is the device-pixel space of an off-screen surface drawn at
// the given oversampling factor.
func RasterPixels(scale float64) UnitSpace {
	if scale <= 0 {
		scale = 1
	}
	return UnitSpace{
		Name:          "raster",
		Unit:          "px",
		Width:         CanvasWidth * scale,
		Height:        CanvasHeight * scale,
		InchesPerUnit: 1 / cssPixelsPerInch,
	}
}

func (s UnitSpace) axisSize(axis Axis) float64 {
	if axis == Vertical {
		return s.Height
	}
	return s.Width
}

func canvasAxisSize(axis Axis) float64 {
	if axis == Vertical {
		return CanvasHeight
	}
	return CanvasWidth
}

// ToTargetUnit converts a canvas pixel value into the target space.
func ToTargetUnit(px float64, axis Axis, space UnitSpace) float64 {
	return px / canvasAxisSize(axis) * space.axisSize(axis)
}

// ToPixel is the inverse of ToTargetUnit.
func ToPixel(native float64, axis Axis, space UnitSpace) float64 {
	size := space.axisSize(axis)
	if size == 0 {
		return 0
	}
	return native / size * canvasAxisSize(axis)
}

// ToTargetRect converts a canvas rectangle into the target space.
func ToTargetRect(r Rect, space UnitSpace) Rect {
	return Rect{
		X:      ToTargetUnit(r.X, Horizontal, space),
		Y:      ToTargetUnit(r.Y, Vertical, space),
		Width:  ToTargetUnit(r.Width, Horizontal, space),
		Height: ToTargetUnit(r.Height, Vertical, space),
	}
}

// fontScale is the ratio between the target width in inches and the canvas
// width in inches. For OfficeInches it is 1.2, so one canvas pixel becomes
// 0.9pt, the same factor the vertical position path applies.
func fontScale(space UnitSpace) float64 {
	if space.InchesPerUnit == 0 {
		return 1
	}
	return space.Width * space.InchesPerUnit / (CanvasWidth / cssPixelsPerInch)
}

// FontPoints converts a canvas font size in pixels to whole points in the
// target space.
func FontPoints(px float64, space UnitSpace) int {
	return int(math.Round(fontPointsExact(px, space)))
}

func fontPointsExact(px float64, space UnitSpace) float64 {
	return px * 0.75 * fontScale(space)
}

// ParseFontSize parses a CSS font size into canvas pixels. Supported units
// are px, pt, em and rem (relative to 16px); a bare number is pixels.
// Anything unparsable or non-positive yields 16.
func ParseFontSize(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return defaultFontSizePx
	}

	factor := 1.0
	for _, u := range []struct {
		suffix string
		factor float64
	}{
		{"rem", defaultFontSizePx},
		{"em", defaultFontSizePx},
		{"px", 1},
		{"pt", cssPixelsPerInch / 72},
	} {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			factor = u.factor
			break
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return defaultFontSizePx
	}
	return v * factor
}

// fitContain returns the largest rectangle with the image's aspect ratio
// that fits inside r, centred in it.
func fitContain(r Rect, imgW, imgH int) Rect {
	if imgW <= 0 || imgH <= 0 || r.Width <= 0 || r.Height <= 0 {
		return r
	}
	scale := math.Min(r.Width/float64(imgW), r.Height/float64(imgH))
	w, h := float64(imgW)*scale, float64(imgH)*scale
	return Rect{X: r.X + (r.Width-w)/2, Y: r.Y + (r.Height-h)/2, Width: w, Height: h}
}
