package pptx

import "strings"

// Shape is the interface that all shapes implement.
type Shape interface {
	GetType() ShapeType
	GetOffsetX() int64
	GetOffsetY() int64
	GetWidth() int64
	GetHeight() int64
	GetName() string
	// base returns the underlying BaseShape (unexported, internal use only).
	base() *BaseShape
}

// ShapeType represents the type of shape.
type ShapeType int

const (
	ShapeTypeTextBox ShapeType = iota
	ShapeTypePicture
	ShapeTypeRect
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeTextBox:
		return "text"
	case ShapeTypePicture:
		return "picture"
	case ShapeTypeRect:
		return "rect"
	}
	return "unknown"
}

// BaseShape contains common shape properties.
type BaseShape struct {
	name        string
	description string
	offsetX     int64 // in EMU
	offsetY     int64 // in EMU
	width       int64 // in EMU
	height      int64 // in EMU
	fill        *Fill
	border      *Border
}

func (b *BaseShape) GetOffsetX() int64      { return b.offsetX }
func (b *BaseShape) GetOffsetY() int64      { return b.offsetY }
func (b *BaseShape) GetWidth() int64        { return b.width }
func (b *BaseShape) GetHeight() int64       { return b.height }
func (b *BaseShape) GetName() string        { return b.name }
func (b *BaseShape) GetDescription() string { return b.description }
func (b *BaseShape) base() *BaseShape       { return b }

func (b *BaseShape) SetName(n string)        { b.name = n }
func (b *BaseShape) SetDescription(d string) { b.description = d }

// SetPosition sets both offset X and Y in EMU.
func (b *BaseShape) SetPosition(x, y int64) {
	b.offsetX = x
	b.offsetY = y
}

// SetSize sets both width and height in EMU.
func (b *BaseShape) SetSize(w, h int64) {
	b.width = w
	b.height = h
}

func (b *BaseShape) GetFill() *Fill {
	if b.fill == nil {
		b.fill = NewFill()
	}
	return b.fill
}

func (b *BaseShape) SetFill(f *Fill) { b.fill = f }

func (b *BaseShape) GetBorder() *Border {
	if b.border == nil {
		b.border = NewBorder()
	}
	return b.border
}

func (b *BaseShape) SetBorder(border *Border) { b.border = border }

// TextBox is a free-standing text shape with zero insets and top anchoring,
// so text starts exactly at the shape's offset.
type TextBox struct {
	BaseShape
	paragraphs []*Paragraph
	wordWrap   bool
}

func (t *TextBox) GetType() ShapeType { return ShapeTypeTextBox }

// NewTextBox creates an empty wrapped text box with one paragraph.
func NewTextBox() *TextBox {
	return &TextBox{
		paragraphs: []*Paragraph{NewParagraph()},
		wordWrap:   true,
	}
}

// GetActiveParagraph returns the last paragraph.
func (t *TextBox) GetActiveParagraph() *Paragraph {
	if len(t.paragraphs) == 0 {
		return t.CreateParagraph()
	}
	return t.paragraphs[len(t.paragraphs)-1]
}

// CreateParagraph appends a new paragraph.
func (t *TextBox) CreateParagraph() *Paragraph {
	p := NewParagraph()
	t.paragraphs = append(t.paragraphs, p)
	return p
}

func (t *TextBox) GetParagraphs() []*Paragraph { return t.paragraphs }
func (t *TextBox) SetWordWrap(wrap bool)       { t.wordWrap = wrap }
func (t *TextBox) GetWordWrap() bool           { return t.wordWrap }

// GetText returns the plain text, with breaks as "\n" and paragraphs joined by "\n".
func (t *TextBox) GetText() string {
	parts := make([]string, 0, len(t.paragraphs))
	for _, p := range t.paragraphs {
		parts = append(parts, p.GetText())
	}
	return strings.Join(parts, "\n")
}

// Paragraph is an ordered list of runs and line breaks.
type Paragraph struct {
	alignment HorizontalAlignment
	elements  []ParagraphElement
}

// ParagraphElement is a TextRun or a BreakElement.
type ParagraphElement interface {
	GetElementType() string
}

// NewParagraph creates a left-aligned paragraph.
func NewParagraph() *Paragraph {
	return &Paragraph{alignment: HorizontalLeft}
}

func (p *Paragraph) GetAlignment() HorizontalAlignment  { return p.alignment }
func (p *Paragraph) SetAlignment(a HorizontalAlignment) { p.alignment = a }
func (p *Paragraph) GetElements() []ParagraphElement    { return p.elements }

// CreateTextRun appends a run with a default font.
func (p *Paragraph) CreateTextRun(text string) *TextRun {
	tr := &TextRun{text: text, font: NewFont()}
	p.elements = append(p.elements, tr)
	return tr
}

// CreateBreak appends a soft line break.
func (p *Paragraph) CreateBreak() *BreakElement {
	br := &BreakElement{}
	p.elements = append(p.elements, br)
	return br
}

// GetText returns the paragraph text with breaks as "\n".
func (p *Paragraph) GetText() string {
	var b strings.Builder
	for _, e := range p.elements {
		switch el := e.(type) {
		case *TextRun:
			b.WriteString(el.text)
		case *BreakElement:
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// TextRun is a run of uniformly formatted text.
type TextRun struct {
	text string
	font *Font
}

func (tr *TextRun) GetElementType() string { return "textrun" }
func (tr *TextRun) GetText() string        { return tr.text }
func (tr *TextRun) GetFont() *Font         { return tr.font }
func (tr *TextRun) SetFont(f *Font)        { tr.font = f }

// BreakElement is a soft line break inside a paragraph. Its font sets the
// height of an empty line; without one the preceding run's font is used.
type BreakElement struct {
	font *Font
}

func (br *BreakElement) GetElementType() string { return "break" }
func (br *BreakElement) GetFont() *Font         { return br.font }
func (br *BreakElement) SetFont(f *Font)        { br.font = f }

// Picture is an embedded raster image stretched to its frame.
type Picture struct {
	BaseShape
	data     []byte
	mimeType string
}

func (p *Picture) GetType() ShapeType { return ShapeTypePicture }

// SetImageData sets the encoded image bytes and their MIME type.
func (p *Picture) SetImageData(data []byte, mimeType string) *Picture {
	p.data = data
	p.mimeType = mimeType
	return p
}

func (p *Picture) GetImageData() []byte { return p.data }
func (p *Picture) GetMimeType() string  { return p.mimeType }

// Rect is a rectangle preset geometry.
type Rect struct {
	BaseShape
}

func (r *Rect) GetType() ShapeType { return ShapeTypeRect }
