package deckexport

import (
	"context"
	"fmt"
	"strings"
)

// target describes what an export target supports.
type target struct {
	format      Format
	defaultRect Rect // used for elements without a position
	notes       bool // has a speaker-notes channel
	bgImages    bool // can reference a background image
}

// slideBuilder renders the layers of one slide for one target. Calls arrive
// in draw order: background first, then elements in slice order, then notes.
type slideBuilder interface {
	background(bg BackgroundSpec)
	text(el *element)
	image(ctx context.Context, el *element) error
	shape(el *element)
	notes(text string)
}

// element is a slide element with its style resolved through the style
// mapper. Geometry stays in canvas pixels; builders convert it.
type element struct {
	src    *SlideContent
	index  int
	rect   Rect
	fontPx float64
	family string // CSS family as authored, DefaultFontFamily when blank
	font   string // office font name
	color  string // text or outline colour
	fill   string // fill colour, empty for none
	align  Alignment
	bold   *bool
	italic *bool
	lines  []string
}

func resolveElement(el *SlideContent, index int, settings Settings, t target) *element {
	st := el.Style
	r := t.defaultRect
	if st.Position != nil {
		r = *st.Position
	}
	family := st.FontFamily
	if strings.TrimSpace(family) == "" {
		family = DefaultFontFamily
	}
	e := &element{
		src:    el,
		index:  index,
		rect:   r,
		fontPx: ParseFontSize(st.FontSize),
		family: family,
		font:   MapFont(family),
		align:  MapAlignment(st.TextAlign),
		bold:   boldFlag(st.FontWeight),
		italic: italicFlag(st.FontStyle),
	}

	switch el.Type {
	case ContentShape:
		e.color = MapColor(st.Color, ShapeLine)
		if !IsTransparent(st.BackgroundColor) {
			e.fill = MapColor(st.BackgroundColor, ShapeFill)
		}
	default:
		e.color = MapColor(st.Color, TextContext(settings.Theme))
		if hex, ok := parseColor(st.BackgroundColor); ok {
			e.fill = hex
		}
		e.lines = textLines(el.Content)
	}
	return e
}

// placeholder is the text element drawn in place of an unresolvable image.
// It keeps the image's rectangle and uses light-theme text colours.
func (e *element) placeholder() *element {
	cp := *e
	cp.color = MapColor(e.src.Style.Color, TextOnLight)
	cp.lines = []string{PlaceholderText}
	return &cp
}

// report collects recoverable problems for one export call.
type report struct {
	opts     *Options
	warnings []Warning
}

func (r *report) warn(w Warning) {
	r.warnings = append(r.warnings, w)
	r.opts.logWarn("%s", w)
}

// assemble drives b through one slide. Element-level failures become
// warnings; assemble itself never fails.
func assemble(ctx context.Context, slideNum int, slide *Slide, settings Settings, t target, b slideBuilder, rep *report) {
	bg := ResolveBackground(slide, settings)
	if bg.Image != "" && !t.bgImages {
		rep.warn(Warning{Slide: slideNum, Kind: WarnBackgroundImage,
			Err: fmt.Errorf("%s export cannot reference background image %q", t.format, bg.Image)})
	}
	b.background(bg)

	for i := range slide.Content {
		src := &slide.Content[i]
		switch src.Type {
		case ContentText:
			b.text(resolveElement(src, i, settings, t))
		case ContentShape:
			b.shape(resolveElement(src, i, settings, t))
		case ContentImage:
			el := resolveElement(src, i, settings, t)
			if err := b.image(ctx, el); err != nil {
				rep.warn(Warning{Slide: slideNum, Element: src.ID, Kind: WarnImageUnresolved, Err: err})
				b.text(el.placeholder())
			}
		default:
			rep.warn(Warning{Slide: slideNum, Element: src.ID, Kind: WarnUnsupportedElement,
				Err: fmt.Errorf("unsupported element type %q", src.Type)})
		}
	}

	if t.notes && strings.TrimSpace(slide.Notes) != "" {
		b.notes(slide.Notes)
	}
}
