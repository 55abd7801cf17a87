package pptx

import "strings"

// Color is an opaque sRGB colour stored as six upper-case hex digits.
type Color struct {
	RGB string
}

// ColorBlack is the default text and outline colour.
var ColorBlack = Color{RGB: "000000"}

// NewColor creates a Color from a hex string. A leading "#" and an 8-digit
// ARGB alpha prefix are dropped; anything unparsable becomes black.
func NewColor(hex string) Color {
	hex = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
	if len(hex) == 8 {
		hex = hex[2:]
	}
	if !isHex6(hex) {
		return ColorBlack
	}
	return Color{RGB: hex}
}

func isHex6(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// String returns the six-digit token written into DrawingML.
func (c Color) String() string {
	if !isHex6(c.RGB) {
		return ColorBlack.RGB
	}
	return c.RGB
}

// Font represents run-level text properties. Bold and Italic are tri-state:
// nil leaves the attribute off so the run inherits from the master.
type Font struct {
	Name   string
	Size   int // in points
	Bold   *bool
	Italic *bool
	Color  Color
}

// NewFont creates a Font with defaults.
func NewFont() *Font {
	return &Font{
		Name:  "Calibri",
		Size:  18,
		Color: ColorBlack,
	}
}

// SetBold sets the bold flag explicitly.
func (f *Font) SetBold(bold bool) *Font {
	f.Bold = &bold
	return f
}

// SetItalic sets the italic flag explicitly.
func (f *Font) SetItalic(italic bool) *Font {
	f.Italic = &italic
	return f
}

// SetSize sets the font size in points (clamped to 1–4000).
func (f *Font) SetSize(size int) *Font {
	if size < 1 {
		size = 1
	}
	if size > 4000 {
		size = 4000
	}
	f.Size = size
	return f
}

// SetColor sets the font color.
func (f *Font) SetColor(color Color) *Font {
	f.Color = color
	return f
}

// SetName sets the font name.
func (f *Font) SetName(name string) *Font {
	f.Name = name
	return f
}

// HorizontalAlignment is the DrawingML paragraph alignment token.
type HorizontalAlignment string

const (
	HorizontalLeft    HorizontalAlignment = "l"
	HorizontalCenter  HorizontalAlignment = "ctr"
	HorizontalRight   HorizontalAlignment = "r"
	HorizontalJustify HorizontalAlignment = "just"
)

// Fill represents a shape or background fill.
type Fill struct {
	Type     FillType
	Color    Color
	EndColor Color // for gradient fills
	Rotation int   // gradient rotation in degrees
}

// FillType represents the type of fill.
type FillType int

const (
	FillNone FillType = iota
	FillSolid
	FillGradientLinear
)

// NewFill creates a new Fill with no fill.
func NewFill() *Fill {
	return &Fill{Type: FillNone}
}

// SetSolid sets a solid fill.
func (f *Fill) SetSolid(color Color) *Fill {
	f.Type = FillSolid
	f.Color = color
	return f
}

// SetGradientLinear sets a two-stop linear gradient. Rotation is normalized to 0–359.
func (f *Fill) SetGradientLinear(startColor, endColor Color, rotation int) *Fill {
	f.Type = FillGradientLinear
	f.Color = startColor
	f.EndColor = endColor
	f.Rotation = ((rotation % 360) + 360) % 360
	return f
}

// Border represents a shape outline.
type Border struct {
	Style BorderStyle
	Width int64 // in EMU
	Color Color
}

// BorderStyle represents the border line style.
type BorderStyle string

const (
	BorderNone  BorderStyle = "none"
	BorderSolid BorderStyle = "solid"
)

// NewBorder creates a new Border with no border.
func NewBorder() *Border {
	return &Border{Style: BorderNone}
}

// SetSolid sets a solid outline of the given width in EMU.
func (b *Border) SetSolid(color Color, width int64) *Border {
	b.Style = BorderSolid
	b.Color = color
	b.Width = width
	return b
}
