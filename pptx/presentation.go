// Package pptx reads and writes the PresentationML subset used for exported
// decks: a single master, layout and theme, positioned text boxes, pictures
// and rectangles, flat slide backgrounds and speaker notes.
package pptx

import (
	"errors"
	"time"
)

// Presentation represents an in-memory PowerPoint presentation.
type Presentation struct {
	properties *DocumentProperties
	layout     *DocumentLayout
	slides     []*Slide
}

// New creates an empty Presentation with a 16:9 layout.
func New() *Presentation {
	return &Presentation{
		properties: NewDocumentProperties(),
		layout:     NewDocumentLayout(),
		slides:     make([]*Slide, 0),
	}
}

func (p *Presentation) GetDocumentProperties() *DocumentProperties { return p.properties }
func (p *Presentation) SetDocumentProperties(props *DocumentProperties) {
	p.properties = props
}

func (p *Presentation) GetLayout() *DocumentLayout       { return p.layout }
func (p *Presentation) SetLayout(layout *DocumentLayout) { p.layout = layout }

// CreateSlide creates a new slide and adds it to the presentation.
func (p *Presentation) CreateSlide() *Slide {
	slide := &Slide{}
	p.slides = append(p.slides, slide)
	return slide
}

// GetSlide returns a slide by index.
func (p *Presentation) GetSlide(index int) (*Slide, error) {
	if index < 0 || index >= len(p.slides) {
		return nil, errors.New("slide index out of range")
	}
	return p.slides[index], nil
}

func (p *Presentation) GetAllSlides() []*Slide { return p.slides }
func (p *Presentation) GetSlideCount() int     { return len(p.slides) }

// DocumentProperties holds the core and extended document properties.
type DocumentProperties struct {
	Creator        string
	LastModifiedBy string
	Created        time.Time
	Modified       time.Time
	Title          string
	Description    string
	Subject        string
	Company        string
}

// NewDocumentProperties creates new document properties with defaults.
func NewDocumentProperties() *DocumentProperties {
	now := time.Now()
	return &DocumentProperties{
		Created:  now,
		Modified: now,
	}
}

// DocumentLayout is the global slide size.
type DocumentLayout struct {
	Name string // sldSz type token, e.g. "screen16x9"; empty means custom
	CX   int64
	CY   int64
}

// Layout16x9 is 10in × 5.625in.
const Layout16x9 = "screen16x9"

// NewDocumentLayout returns the 10in × 5.625in widescreen layout.
func NewDocumentLayout() *DocumentLayout {
	return &DocumentLayout{
		Name: Layout16x9,
		CX:   Inch(10),
		CY:   Inch(5.625),
	}
}

// Slide is one slide: a background, shapes in z-order and optional notes.
type Slide struct {
	shapes     []Shape
	background *Fill
	notes      string
}

// CreateTextBox appends a text box.
func (s *Slide) CreateTextBox() *TextBox {
	tb := NewTextBox()
	s.shapes = append(s.shapes, tb)
	return tb
}

// CreatePicture appends a picture.
func (s *Slide) CreatePicture() *Picture {
	pic := &Picture{}
	s.shapes = append(s.shapes, pic)
	return pic
}

// CreateRect appends a rectangle.
func (s *Slide) CreateRect() *Rect {
	r := &Rect{}
	s.shapes = append(s.shapes, r)
	return r
}

func (s *Slide) GetShapes() []Shape { return s.shapes }

// SetBackground sets the native slide background. Only solid fills are
// representable; gradient and empty fills are ignored.
func (s *Slide) SetBackground(f *Fill) {
	if f == nil || f.Type != FillSolid {
		s.background = nil
		return
	}
	s.background = f
}

func (s *Slide) GetBackground() *Fill  { return s.background }
func (s *Slide) SetNotes(notes string) { s.notes = notes }
func (s *Slide) GetNotes() string      { return s.notes }
