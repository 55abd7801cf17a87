package deckexport

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Style mapping from the editor's CSS vocabulary to export vocabularies.
// Every function here is total: unmapped input falls back to a default.

// DefaultFont is the office font used for any family not in the font table.
const DefaultFont = "Calibri"

// DefaultFontFamily is used for text elements that name no family.
const DefaultFontFamily = "Arial"

// fontTable maps case-folded CSS family names to office font names.
var fontTable = func() map[string]string {
	m := map[string]string{
		"Arial":           "Arial",
		"Helvetica":       "Helvetica",
		"Times New Roman": "Times New Roman",
		"Georgia":         "Georgia",
		"Verdana":         "Verdana",
		"Courier New":     "Courier New",
		"Geist":           "Calibri",
		"sans-serif":      "Calibri",
		"serif":           "Times New Roman",
		"monospace":       "Courier New",
	}
	fold := cases.Fold()
	folded := make(map[string]string, len(m))
	for k, v := range m {
		folded[fold.String(k)] = v
	}
	return folded
}()

// primaryFamily returns the first family of a CSS font-family list, unquoted.
func primaryFamily(family string) string {
	first, _, _ := strings.Cut(family, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

// MapFont maps a CSS font-family value to an office font name.
func MapFont(family string) string {
	// a Caser is stateful, so each call gets its own
	if f, ok := fontTable[cases.Fold().String(primaryFamily(family))]; ok {
		return f
	}
	return DefaultFont
}

// ColorContext selects the fallback used when a colour is missing or invalid.
type ColorContext int

const (
	TextOnLight ColorContext = iota
	TextOnDark
	ShapeFill
	ShapeLine
	BackgroundFill
)

func (c ColorContext) fallback() string {
	switch c {
	case TextOnDark:
		return "FFFFFF"
	case ShapeFill:
		return "CCCCCC"
	case ShapeLine, TextOnLight:
		return "000000"
	default:
		return "FFFFFF"
	}
}

// TextContext returns the text colour context for a theme.
func TextContext(theme string) ColorContext {
	if IsDarkTheme(theme) {
		return TextOnDark
	}
	return TextOnLight
}

var namedColors = map[string]string{
	"black":  "000000",
	"white":  "FFFFFF",
	"red":    "FF0000",
	"green":  "008000",
	"blue":   "0000FF",
	"yellow": "FFFF00",
	"orange": "FFA500",
	"purple": "800080",
	"gray":   "808080",
	"grey":   "808080",
	"silver": "C0C0C0",
	"navy":   "000080",
	"teal":   "008080",
}

// MapColor converts a CSS colour into a six-digit upper-case hex token.
// It accepts #rgb, #rrggbb, #rrggbbaa, rgb()/rgba() and a few named colours.
func MapColor(value string, ctx ColorContext) string {
	if hex, ok := parseColor(value); ok {
		return hex
	}
	return ctx.fallback()
}

// IsTransparent reports whether a background value means "no fill".
func IsTransparent(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "transparent")
}

func parseColor(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "transparent" {
		return "", false
	}
	if hex, ok := namedColors[v]; ok {
		return hex, true
	}
	if strings.HasPrefix(v, "rgb") {
		return parseRGBFunc(v)
	}

	v = strings.TrimPrefix(v, "#")
	switch len(v) {
	case 3:
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	case 8:
		v = v[:6]
	}
	if !isHexColor(v) {
		return "", false
	}
	return strings.ToUpper(v), true
}

func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// parseRGBFunc handles rgb(r, g, b) and rgba(r, g, b, a); alpha is dropped.
func parseRGBFunc(v string) (string, bool) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return "", false
	}
	parts := strings.FieldsFunc(v[open+1:len(v)-1], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) < 3 {
		return "", false
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 || n > 255 {
			return "", false
		}
		rgb[i] = n
	}
	return fmt.Sprintf("%02X%02X%02X", rgb[0], rgb[1], rgb[2]), true
}

// Alignment is a horizontal text alignment.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// MapAlignment returns the alignment for a CSS text-align value, defaulting
// to left.
func MapAlignment(v string) Alignment {
	switch a := Alignment(strings.ToLower(strings.TrimSpace(v))); a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return a
	}
	return AlignLeft
}

// Gradient is a two-stop linear gradient. Angle uses CSS conventions:
// 0 points up and angles grow clockwise.
type Gradient struct {
	From  string
	To    string
	Angle int
}

// BackgroundSpec is a resolved slide background: either a flat colour or a
// gradient. Image is only honoured by targets that can reference it.
type BackgroundSpec struct {
	Color    string
	Gradient *Gradient
	Image    string
}

// IsGradient reports whether the background needs a gradient fill.
func (b BackgroundSpec) IsGradient() bool { return b.Gradient != nil }

// DefaultGradient is the background used for unknown themes and for
// gradient descriptors whose colours cannot be read.
var DefaultGradient = Gradient{From: "1E293B", To: "1E3A8A", Angle: 135}

func defaultGradientSpec() BackgroundSpec {
	g := DefaultGradient
	return BackgroundSpec{Color: g.From, Gradient: &g}
}

var themeColors = map[string]string{
	"white":  "FFFFFF",
	"black":  "000000",
	"league": "2B2B2B",
	"beige":  "F7F3DE",
	"sky":    "E6F3FF",
	"night":  "1A1A2E",
	"serif":  "F5F5F5",
	"simple": "FFFFFF",
}

// MapTheme returns the background of a reveal.js theme name.
func MapTheme(theme string) BackgroundSpec {
	if c, ok := themeColors[strings.ToLower(strings.TrimSpace(theme))]; ok {
		return BackgroundSpec{Color: c}
	}
	return defaultGradientSpec()
}

// IsDarkTheme reports whether text defaults to white on the theme.
func IsDarkTheme(theme string) bool {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "black", "league", "night":
		return true
	}
	return false
}

// tailwindDirections maps bg-gradient-to-* suffixes to CSS angles.
var tailwindDirections = map[string]int{
	"t": 0, "tr": 45, "r": 90, "br": 135, "b": 180, "bl": 225, "l": 270, "tl": 315,
}

// sideAngles maps linear-gradient "to <side>" keywords to CSS angles.
var sideAngles = map[string]int{
	"to top": 0, "to top right": 45, "to right top": 45,
	"to right": 90, "to bottom right": 135, "to right bottom": 135,
	"to bottom": 180, "to bottom left": 225, "to left bottom": 225,
	"to left": 270, "to top left": 315, "to left top": 315,
}

// ParseGradient interprets a slide gradient descriptor. CSS linear-gradient()
// and Tailwind bg-gradient-to-* class lists are understood; any other text
// containing "gradient" yields DefaultGradient, and text without it is read
// as a flat colour.
func ParseGradient(desc string) BackgroundSpec {
	d := strings.TrimSpace(desc)
	lower := strings.ToLower(d)
	switch {
	case strings.Contains(lower, "linear-gradient("):
		return parseCSSGradient(lower)
	case strings.Contains(lower, "bg-gradient-to-"):
		return parseTailwindGradient(lower)
	case strings.Contains(lower, "gradient"):
		return defaultGradientSpec()
	}
	return BackgroundSpec{Color: MapColor(d, BackgroundFill)}
}

func parseCSSGradient(s string) BackgroundSpec {
	start := strings.Index(s, "linear-gradient(") + len("linear-gradient(")
	end := strings.LastIndexByte(s, ')')
	if end <= start {
		return defaultGradientSpec()
	}
	args := splitTopLevel(s[start:end])
	g := DefaultGradient
	g.Angle = 180

	if len(args) > 0 {
		first := strings.Join(strings.Fields(args[0]), " ")
		if a, ok := sideAngles[first]; ok {
			g.Angle = a
			args = args[1:]
		} else if strings.HasSuffix(first, "deg") {
			if n, err := strconv.ParseFloat(strings.TrimSuffix(first, "deg"), 64); err == nil {
				g.Angle = normalizeAngle(int(n))
			}
			args = args[1:]
		}
	}

	var stops []string
	for _, a := range args {
		if hex, ok := parseColor(stopColor(a)); ok {
			stops = append(stops, hex)
		}
	}
	if len(stops) >= 2 {
		g.From, g.To = stops[0], stops[len(stops)-1]
	}
	return BackgroundSpec{Color: g.From, Gradient: &g}
}

// stopColor strips a trailing position from a colour stop such as "#fff 20%".
func stopColor(stop string) string {
	stop = strings.TrimSpace(stop)
	if strings.HasPrefix(stop, "rgb") {
		if i := strings.IndexByte(stop, ')'); i >= 0 {
			return stop[:i+1]
		}
	}
	if i := strings.IndexByte(stop, ' '); i >= 0 {
		return stop[:i]
	}
	return stop
}

// splitTopLevel splits on commas outside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[last:]))
}

// parseTailwindGradient reads the direction from bg-gradient-to-*. Palette
// names are not resolved; only arbitrary values like from-[#112233] replace
// the default colours.
func parseTailwindGradient(s string) BackgroundSpec {
	g := DefaultGradient
	for _, tok := range strings.Fields(s) {
		switch {
		case strings.HasPrefix(tok, "bg-gradient-to-"):
			if a, ok := tailwindDirections[strings.TrimPrefix(tok, "bg-gradient-to-")]; ok {
				g.Angle = a
			}
		case strings.HasPrefix(tok, "from-["):
			if hex, ok := parseColor(strings.Trim(strings.TrimPrefix(tok, "from-"), "[]")); ok {
				g.From = hex
			}
		case strings.HasPrefix(tok, "to-["):
			if hex, ok := parseColor(strings.Trim(strings.TrimPrefix(tok, "to-"), "[]")); ok {
				g.To = hex
			}
		}
	}
	return BackgroundSpec{Color: g.From, Gradient: &g}
}

func normalizeAngle(deg int) int {
	return ((deg % 360) + 360) % 360
}

// ResolveBackground picks the background of a slide: an explicit slide colour
// wins, then a slide gradient, then the theme.
func ResolveBackground(slide *Slide, settings Settings) BackgroundSpec {
	var spec BackgroundSpec
	bg := slide.Background
	switch {
	case bg != nil && strings.TrimSpace(bg.Color) != "":
		spec = BackgroundSpec{Color: MapColor(bg.Color, BackgroundFill)}
	case bg != nil && strings.TrimSpace(bg.Gradient) != "":
		spec = ParseGradient(bg.Gradient)
	default:
		spec = MapTheme(settings.Theme)
	}
	if bg != nil {
		spec.Image = strings.TrimSpace(bg.Image)
	}
	return spec
}
