// Package deckexport turns an editor's pixel-positioned slide deck into
// distributable artifacts: a raster PDF, a reveal.js web slideshow, an
// editable PowerPoint document and a set of PNG images.
//
// All geometry is authored against a fixed 800×450 canvas. Each exporter
// converts that canvas into its own unit space (inches, millimetres or
// device pixels) through the functions in measurement.go, and maps CSS-ish
// style values through style.go.
//
// See the Version variable for the current library version.
package deckexport

import (
	"fmt"
	"strings"
	"time"
)

// Canvas dimensions every element position is expressed in.
const (
	CanvasWidth  = 800
	CanvasHeight = 450
)

// Presentation is an immutable snapshot of a deck as produced by the editor.
type Presentation struct {
	ID        string    `json:"id" yaml:"id"`
	Settings  Settings  `json:"settings" yaml:"settings"`
	Slides    []Slide   `json:"slides" yaml:"slides"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Settings holds deck metadata and the slideshow behaviour flags consumed by
// the HTML target.
type Settings struct {
	Title                string `json:"title" yaml:"title"`
	Author               string `json:"author" yaml:"author"`
	Theme                string `json:"theme" yaml:"theme"`
	Transition           string `json:"transition" yaml:"transition"`
	Controls             bool   `json:"controls" yaml:"controls"`
	Progress             bool   `json:"progress" yaml:"progress"`
	Center               bool   `json:"center" yaml:"center"`
	Touch                bool   `json:"touch" yaml:"touch"`
	Loop                 bool   `json:"loop" yaml:"loop"`
	RTL                  bool   `json:"rtl" yaml:"rtl"`
	Shuffle              bool   `json:"shuffle" yaml:"shuffle"`
	Fragments            bool   `json:"fragments" yaml:"fragments"`
	Embedded             bool   `json:"embedded" yaml:"embedded"`
	Help                 bool   `json:"help" yaml:"help"`
	ShowNotes            bool   `json:"showNotes" yaml:"showNotes"`
	AutoSlide            int    `json:"autoSlide" yaml:"autoSlide"`
	AutoSlideStoppable   bool   `json:"autoSlideStoppable" yaml:"autoSlideStoppable"`
	MouseWheel           bool   `json:"mouseWheel" yaml:"mouseWheel"`
	HideAddressBar       bool   `json:"hideAddressBar" yaml:"hideAddressBar"`
	PreviewLinks         bool   `json:"previewLinks" yaml:"previewLinks"`
	FocusBodyOnLoad      bool   `json:"focusBodyOnLoad" yaml:"focusBodyOnLoad"`
	Hash                 bool   `json:"hash" yaml:"hash"`
	RespondToHashChanges bool   `json:"respondToHashChanges" yaml:"respondToHashChanges"`
	JumpToSlide          bool   `json:"jumpToSlide" yaml:"jumpToSlide"`
	History              bool   `json:"history" yaml:"history"`
}

// DefaultSettings returns the settings a freshly created deck starts with.
func DefaultSettings() Settings {
	return Settings{
		Theme:                "white",
		Transition:           "slide",
		Controls:             true,
		Progress:             true,
		Center:               true,
		Touch:                true,
		Fragments:            true,
		Help:                 true,
		AutoSlideStoppable:   true,
		HideAddressBar:       true,
		FocusBodyOnLoad:      true,
		RespondToHashChanges: true,
		JumpToSlide:          true,
	}
}

// Layout is the advisory layout tag of a slide. Exporters do not enforce it.
type Layout string

const (
	LayoutTitle     Layout = "title"
	LayoutContent   Layout = "content"
	LayoutTwoColumn Layout = "two-column"
	LayoutImageText Layout = "image-text"
	LayoutBlank     Layout = "blank"
)

// Slide is one slide of the deck. Content is drawn in slice order, so later
// elements paint over earlier ones.
type Slide struct {
	ID         string         `json:"id" yaml:"id"`
	Title      string         `json:"title" yaml:"title"`
	Layout     Layout         `json:"layout" yaml:"layout"`
	Content    []SlideContent `json:"content" yaml:"content"`
	Notes      string         `json:"notes" yaml:"notes"`
	Transition string         `json:"transition,omitempty" yaml:"transition,omitempty"`
	Background *Background    `json:"background,omitempty" yaml:"background,omitempty"`
}

// Background is an optional per-slide background. Color wins over Gradient.
type Background struct {
	Color    string `json:"color,omitempty" yaml:"color,omitempty"`
	Image    string `json:"image,omitempty" yaml:"image,omitempty"`
	Gradient string `json:"gradient,omitempty" yaml:"gradient,omitempty"`
}

// ContentType is the element type tag.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
	ContentShape ContentType = "shape"
)

// SlideContent is a single element on a slide. For images Content holds the
// resource reference; for text it holds the text itself.
type SlideContent struct {
	ID      string      `json:"id" yaml:"id"`
	Type    ContentType `json:"type" yaml:"type"`
	Content string      `json:"content" yaml:"content"`
	Style   Style       `json:"style" yaml:"style"`
}

// Style carries the CSS-like element styling. Empty fields mean "use the
// target default".
type Style struct {
	FontSize        string `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	TextAlign       string `json:"textAlign,omitempty" yaml:"textAlign,omitempty"`
	FontWeight      string `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	FontStyle       string `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty"`
	Position        *Rect  `json:"position,omitempty" yaml:"position,omitempty"`
}

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Snapshot returns a deep copy of p. Exporters work on the copy so that an
// editor mutating p concurrently cannot affect an export in flight.
func (p *Presentation) Snapshot() *Presentation {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Slides != nil {
		cp.Slides = make([]Slide, len(p.Slides))
		for i := range p.Slides {
			cp.Slides[i] = p.Slides[i].clone()
		}
	}
	return &cp
}

func (s Slide) clone() Slide {
	cp := s
	if s.Background != nil {
		bg := *s.Background
		cp.Background = &bg
	}
	if s.Content != nil {
		cp.Content = make([]SlideContent, len(s.Content))
		for i, el := range s.Content {
			if el.Style.Position != nil {
				pos := *el.Style.Position
				el.Style.Position = &pos
			}
			cp.Content[i] = el
		}
	}
	return cp
}

// Validate checks the snapshot for structural issues and returns an error
// describing all problems found. Unknown element types are not an error;
// exporters skip them with a warning.
func (p *Presentation) Validate() error {
	if p == nil {
		return fmt.Errorf("presentation is nil")
	}
	var errs []string
	if p.Settings.AutoSlide < 0 {
		errs = append(errs, "settings: autoSlide must not be negative")
	}
	for i, s := range p.Slides {
		prefix := fmt.Sprintf("slide %d", i+1)
		switch s.Layout {
		case "", LayoutTitle, LayoutContent, LayoutTwoColumn, LayoutImageText, LayoutBlank:
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown layout %q", prefix, s.Layout))
		}
		for j, el := range s.Content {
			pos := el.Style.Position
			if pos == nil {
				continue
			}
			if pos.Width < 0 || pos.Height < 0 {
				errs = append(errs, fmt.Sprintf("%s: element %d: negative size", prefix, j+1))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(errs, "\n  "))
}
