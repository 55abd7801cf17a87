package deckexport

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Exporter converts a presentation snapshot into one artifact. Exporters
// snapshot their input before doing any work and are safe for concurrent use.
type Exporter interface {
	Format() Format
	Export(ctx context.Context, p *Presentation) (*Artifact, error)
}

// NewExporter creates an exporter for the given format. A nil opts uses
// DefaultOptions.
func NewExporter(format Format, opts *Options) (Exporter, error) {
	o := opts.withDefaults()
	switch format {
	case FormatPDF:
		return &PDFExporter{opts: o}, nil
	case FormatHTML:
		return &HTMLExporter{opts: o}, nil
	case FormatPPTX:
		return &PPTXExporter{opts: o}, nil
	case FormatImages:
		return &ImagesExporter{opts: o}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// File is one file of an artifact.
type File struct {
	Name string
	Data []byte
}

// Artifact is the result of an export.
type Artifact struct {
	Format   Format
	Filename string
	MIMEType string
	Files    []File
	Pages    int // slides rendered into the artifact
	Warnings []Warning
}

// Bytes returns the deliverable content: the single file for PDF, HTML and
// PPTX, or a zip bundle of every file for the image set.
func (a *Artifact) Bytes() ([]byte, error) {
	if a.Format != FormatImages && len(a.Files) == 1 {
		return a.Files[0].Data, nil
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range a.Files {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to bundle: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write %s to bundle: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the deliverable content to dir/Filename and returns the path.
func (a *Artifact) Save(dir string) (string, error) {
	data, err := a.Bytes()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, a.Filename)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Extract writes every file of the artifact into dir and returns the paths.
func (a *Artifact) Extract(dir string) ([]string, error) {
	paths := make([]string, 0, len(a.Files))
	for _, f := range a.Files {
		path := filepath.Join(dir, f.Name)
		if err := writeFile(path, f.Data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Result is delivered by ExportAsync.
type Result struct {
	Artifact *Artifact
	Err      error
}

// ExportAsync snapshots p immediately and runs the export in a goroutine.
// The returned channel receives exactly one Result and is then closed.
func ExportAsync(ctx context.Context, e Exporter, p *Presentation) <-chan Result {
	snap := p.Snapshot()
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		a, err := e.Export(ctx, snap)
		ch <- Result{Artifact: a, Err: err}
	}()
	return ch
}

// ExportCurrentSlide exports a single slide as a complete presentation.
func ExportCurrentSlide(ctx context.Context, e Exporter, settings Settings, slide Slide) (*Artifact, error) {
	return ExportSelectedSlides(ctx, e, settings, []Slide{slide})
}

// ExportSelectedSlides exports the given slides, in order, as a complete
// presentation sharing the deck's settings.
func ExportSelectedSlides(ctx context.Context, e Exporter, settings Settings, slides []Slide) (*Artifact, error) {
	now := time.Now()
	p := &Presentation{
		ID:        "temp-export-" + uuid.NewString(),
		Settings:  settings,
		Slides:    slides,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return e.Export(ctx, p.Snapshot())
}

// begin is the common prologue of every exporter: it rejects nil input and
// cancelled contexts and returns the working snapshot.
func begin(ctx context.Context, f Format, p *Presentation) (*Presentation, error) {
	if p == nil {
		return nil, &ExportError{Format: f, Op: "start", Err: fmt.Errorf("presentation is nil")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ExportError{Format: f, Op: "start", Err: err}
	}
	return p.Snapshot(), nil
}
