package deckexport

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
)

func exportPDF(t *testing.T, p *Presentation, opts *Options) *Artifact {
	t.Helper()
	if opts == nil {
		opts = &Options{Scale: 1}
	}
	e, err := NewExporter(FormatPDF, opts)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	a, err := e.Export(context.Background(), p)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	return a
}

func TestPDFTwoSlideDeck(t *testing.T) {
	a := exportPDF(t, twoSlideDeck(), nil)
	data := a.Files[0].Data
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a PDF: %q", data[:8])
	}
	if a.Pages != 2 || a.Filename != "Launch.pdf" || a.MIMEType != "application/pdf" {
		t.Errorf("artifact = %d pages, %s, %s", a.Pages, a.Filename, a.MIMEType)
	}
	if n := bytes.Count(data, []byte("/Type /Page\n")); n != 2 {
		t.Errorf("page objects = %d, want 2", n)
	}
}

func TestPDFNotesAttachment(t *testing.T) {
	p := twoSlideDeck()
	p.Slides[1].Notes = "closing remarks"
	a := exportPDF(t, p, nil)
	if !bytes.Contains(a.Files[0].Data, []byte("/FileAttachment")) {
		t.Error("notes were not attached")
	}

	plain := exportPDF(t, twoSlideDeck(), nil)
	if bytes.Contains(plain.Files[0].Data, []byte("/FileAttachment")) {
		t.Error("deck without notes has an attachment")
	}
}

func TestPDFSlideBox(t *testing.T) {
	x, y, w, h := pdfSlideBox(297, 210)
	if w != 277 || math.Abs(h-155.8125) > 1e-9 || x != 10 || math.Abs(y-(210-155.8125)/2) > 1e-9 {
		t.Errorf("A4 box = %v,%v %vx%v", x, y, w, h)
	}
	if w != PDFMillimetres.Width || h != PDFMillimetres.Height {
		t.Error("A4 box disagrees with PDFMillimetres")
	}

	// a square page is limited by width too
	_, _, w, h = pdfSlideBox(100, 100)
	if w != 80 || h != 45 {
		t.Errorf("square page box = %vx%v", w, h)
	}
	// a very wide page is limited by height
	_, _, w, h = pdfSlideBox(1000, 100)
	if h != 80 || math.Abs(w-80*16.0/9) > 1e-9 {
		t.Errorf("wide page box = %vx%v", w, h)
	}
}

// panicResolver makes every slide containing an image fail to render.
type panicResolver struct{}

func (panicResolver) Resolve(context.Context, string) (*ResolvedImage, error) {
	panic("decoder exploded")
}

func TestPDFSkipsFailedSlide(t *testing.T) {
	p := twoSlideDeck()
	p.Slides[0].Content = append(p.Slides[0].Content, SlideContent{ID: "img", Type: ContentImage, Content: "x.png"})
	a := exportPDF(t, p, &Options{Scale: 1, Resolver: panicResolver{}})
	if a.Pages != 1 {
		t.Errorf("pages = %d, want 1", a.Pages)
	}
	if len(a.Warnings) != 1 || a.Warnings[0].Kind != WarnSlideSkipped || a.Warnings[0].Slide != 1 {
		t.Errorf("warnings = %v", a.Warnings)
	}
}

func TestPDFEmptyDeck(t *testing.T) {
	a := exportPDF(t, &Presentation{Settings: DefaultSettings()}, nil)
	if a.Pages != 0 || a.Filename != "presentation.pdf" {
		t.Errorf("empty deck = %d pages, %s", a.Pages, a.Filename)
	}
}

func TestPDFCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e, _ := NewExporter(FormatPDF, nil)
	_, err := e.Export(ctx, twoSlideDeck())
	var ee *ExportError
	if !errors.As(err, &ee) || ee.Format != FormatPDF || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if ee.Error() != "failed to start pdf export: context canceled" {
		t.Errorf("message = %q", ee.Error())
	}
}
