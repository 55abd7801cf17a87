package deckexport

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin     = 10.0 // mm
	pdfNoteIconMM = 6.0
)

// PDFExporter writes one raster page per slide on landscape pages.
type PDFExporter struct {
	opts *Options
}

func (e *PDFExporter) Format() Format { return FormatPDF }

// Export rasterizes each slide and places it fit-and-centred on its own
// page. Speaker notes become a text attachment on the page.
func (e *PDFExporter) Export(ctx context.Context, p *Presentation) (*Artifact, error) {
	snap, err := begin(ctx, FormatPDF, p)
	if err != nil {
		return nil, err
	}
	e.opts.logInfo("Exporting %d slide(s) to PDF...", len(snap.Slides))

	pdf := gofpdf.New("L", "mm", e.opts.PageFormat, "")
	setPDFProperties(pdf, snap)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	x, y, w, h := pdfSlideBox(pdf.GetPageSize())

	rep := &report{opts: e.opts}
	t := target{format: FormatPDF, defaultRect: Rect{Width: 200, Height: 50}, notes: true}
	pages := 0
	err = rasterize(ctx, snap, e.opts, t, rep, func(page rasterPage) error {
		pages++
		pdf.AddPage()
		name := fmt.Sprintf("slide-%d.png", page.slide)
		opt := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(page.png))
		pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
		if page.notes != "" {
			pdf.AddAttachmentAnnotation(&gofpdf.Attachment{
				Content:     []byte(page.notes),
				Filename:    fmt.Sprintf("slide-%d-notes.txt", page.slide),
				Description: fmt.Sprintf("Speaker notes for slide %d", page.slide),
			}, x, y+h+2, pdfNoteIconMM, pdfNoteIconMM)
		}
		return pdf.Error()
	})
	if err != nil {
		return nil, err
	}

	// gofpdf closes an empty document with one blank page
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		e.opts.logError("PDF output failed: %v", err)
		return nil, wrapExportError(FormatPDF, "write", err)
	}

	name := e.opts.filename(snap, FormatPDF)
	e.opts.logInfo("PDF export finished: %s (%d page(s), %d bytes)", name, pages, buf.Len())
	return &Artifact{
		Format:   FormatPDF,
		Filename: name,
		MIMEType: FormatPDF.MIMEType(),
		Files:    []File{{Name: name, Data: buf.Bytes()}},
		Pages:    pages,
		Warnings: rep.warnings,
	}, nil
}

func setPDFProperties(pdf *gofpdf.Fpdf, p *Presentation) {
	title := strings.TrimSpace(p.Settings.Title)
	if title == "" {
		title = defaultPPTXTitle
	}
	author := strings.TrimSpace(p.Settings.Author)
	if author == "" {
		author = defaultPPTXAuthor
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor(author, true)
	pdf.SetSubject(PPTXSubject, true)
	pdf.SetCreator(defaultPPTXAuthor+" "+Version, true)
	if !p.CreatedAt.IsZero() {
		pdf.SetCreationDate(p.CreatedAt)
	}
}

// pdfSlideBox returns the 16:9 box fitted inside the page margins and
// centred on the page. On A4 landscape it is 277mm wide.
func pdfSlideBox(pageW, pageH float64) (x, y, w, h float64) {
	w = pageW - 2*pdfMargin
	h = w * CanvasHeight / CanvasWidth
	if maxH := pageH - 2*pdfMargin; h > maxH {
		h = maxH
		w = h * CanvasWidth / CanvasHeight
	}
	return (pageW - w) / 2, (pageH - h) / 2, w, h
}
