package deckexport

import (
	"bytes"
	"context"
	"strings"

	"github.com/VantageDataChat/GoDeckExport/pptx"
)

// Fixed PowerPoint metadata.
const (
	PPTXCompany       = "GoDeckExport - Slide Decks Fast"
	PPTXSubject       = "Presentation exported with GoDeckExport"
	defaultPPTXAuthor = "GoDeckExport"
	defaultPPTXTitle  = "Untitled Presentation"
)

// shapeOutline is the fixed outline width of shape elements.
var shapeOutline = pptx.Point(1)

// PPTXExporter writes an editable PowerPoint document.
type PPTXExporter struct {
	opts *Options
}

func (e *PPTXExporter) Format() Format { return FormatPPTX }

// Export builds one native slide per slide on a 10in × 5.625in layout.
func (e *PPTXExporter) Export(ctx context.Context, p *Presentation) (*Artifact, error) {
	snap, err := begin(ctx, FormatPPTX, p)
	if err != nil {
		return nil, err
	}
	e.opts.logInfo("Exporting %d slide(s) to PPTX...", len(snap.Slides))

	pres := pptx.New()
	setPPTXProperties(pres.GetDocumentProperties(), snap)

	rep := &report{opts: e.opts}
	t := target{format: FormatPPTX, defaultRect: Rect{X: 50, Y: 50, Width: 200, Height: 50}, notes: true}
	for i := range snap.Slides {
		if err := ctx.Err(); err != nil {
			return nil, wrapExportError(FormatPPTX, "build", err)
		}
		b := &pptxBuilder{
			layout:   pres.GetLayout(),
			slide:    pres.CreateSlide(),
			resolver: e.opts.Resolver,
		}
		assemble(ctx, i+1, &snap.Slides[i], snap.Settings, t, b, rep)
	}

	if err := pres.Validate(); err != nil {
		e.opts.logError("PPTX package is invalid: %v", err)
		return nil, wrapExportError(FormatPPTX, "validate", err)
	}
	var buf bytes.Buffer
	if _, err := pptx.NewWriter(pres).WriteTo(&buf); err != nil {
		e.opts.logError("PPTX write failed: %v", err)
		return nil, wrapExportError(FormatPPTX, "write", err)
	}

	name := e.opts.filename(snap, FormatPPTX)
	e.opts.logInfo("PPTX export finished: %s (%d bytes)", name, buf.Len())
	return &Artifact{
		Format:   FormatPPTX,
		Filename: name,
		MIMEType: FormatPPTX.MIMEType(),
		Files:    []File{{Name: name, Data: buf.Bytes()}},
		Pages:    len(snap.Slides),
		Warnings: rep.warnings,
	}, nil
}

func setPPTXProperties(props *pptx.DocumentProperties, p *Presentation) {
	author := strings.TrimSpace(p.Settings.Author)
	if author == "" {
		author = defaultPPTXAuthor
	}
	title := strings.TrimSpace(p.Settings.Title)
	if title == "" {
		title = defaultPPTXTitle
	}
	props.Creator = author
	props.LastModifiedBy = author
	props.Title = title
	props.Subject = PPTXSubject
	props.Company = PPTXCompany
	if !p.CreatedAt.IsZero() {
		props.Created = p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		props.Modified = p.UpdatedAt
	}
}

// pptxBuilder renders slide layers as DrawingML shapes.
type pptxBuilder struct {
	layout   *pptx.DocumentLayout
	slide    *pptx.Slide
	resolver ImageResolver
}

// The slide background property only takes flat fills, so a gradient
// becomes a full-bleed borderless rectangle below every element.
func (b *pptxBuilder) background(bg BackgroundSpec) {
	if !bg.IsGradient() {
		b.slide.SetBackground(pptx.NewFill().SetSolid(pptx.NewColor(bg.Color)))
		return
	}
	rect := b.slide.CreateRect()
	rect.SetName("Background")
	rect.SetPosition(0, 0)
	rect.SetSize(b.layout.CX, b.layout.CY)
	g := bg.Gradient
	rect.GetFill().SetGradientLinear(pptx.NewColor(g.From), pptx.NewColor(g.To), g.Angle)
}

func (b *pptxBuilder) place(s interface {
	SetPosition(x, y int64)
	SetSize(w, h int64)
}, r Rect) {
	in := ToTargetRect(r, OfficeInches)
	s.SetPosition(pptx.Inch(in.X), pptx.Inch(in.Y))
	s.SetSize(pptx.Inch(in.Width), pptx.Inch(in.Height))
}

var pptxAlignments = map[Alignment]pptx.HorizontalAlignment{
	AlignLeft:    pptx.HorizontalLeft,
	AlignCenter:  pptx.HorizontalCenter,
	AlignRight:   pptx.HorizontalRight,
	AlignJustify: pptx.HorizontalJustify,
}

func (b *pptxBuilder) text(el *element) {
	tb := b.slide.CreateTextBox()
	b.place(tb, el.rect)
	tb.SetWordWrap(true)
	if el.src.ID != "" {
		tb.SetDescription(el.src.ID)
	}
	if el.fill != "" {
		tb.GetFill().SetSolid(pptx.NewColor(el.fill))
	}

	font := pptx.NewFont().
		SetName(el.font).
		SetSize(FontPoints(el.fontPx, OfficeInches)).
		SetColor(pptx.NewColor(el.color))
	if el.bold != nil {
		font.SetBold(*el.bold)
	}
	if el.italic != nil {
		font.SetItalic(*el.italic)
	}

	// breaks carry the font too, so blank lines keep the element's height
	para := tb.GetActiveParagraph()
	para.SetAlignment(pptxAlignments[el.align])
	for i, line := range el.lines {
		if i > 0 {
			para.CreateBreak().SetFont(font)
		}
		if line != "" {
			para.CreateTextRun(line).SetFont(font)
		}
	}
}

func (b *pptxBuilder) image(ctx context.Context, el *element) error {
	ri, err := b.resolver.Resolve(ctx, el.src.Content)
	if err != nil {
		return err
	}
	data, mime, err := ri.embeddable()
	if err != nil {
		return err
	}
	bounds := ri.Image.Bounds()
	pic := b.slide.CreatePicture()
	pic.SetDescription(el.src.ID)
	b.place(pic, fitContain(el.rect, bounds.Dx(), bounds.Dy()))
	pic.SetImageData(data, mime)
	return nil
}

func (b *pptxBuilder) shape(el *element) {
	rect := b.slide.CreateRect()
	b.place(rect, el.rect)
	if el.src.ID != "" {
		rect.SetDescription(el.src.ID)
	}
	if el.fill != "" {
		rect.GetFill().SetSolid(pptx.NewColor(el.fill))
	}
	rect.GetBorder().SetSolid(pptx.NewColor(el.color), shapeOutline)
}

func (b *pptxBuilder) notes(text string) {
	b.slide.SetNotes(normalizeText(text))
}
