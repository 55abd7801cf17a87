package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer serializes a Presentation as a .pptx package.
type Writer struct {
	presentation *Presentation

	// per-write state
	media    map[*Picture]string // picture -> media file name, e.g. "image2.png"
	pictures []*Picture
	hasNotes bool
}

// NewWriter creates a writer for p.
func NewWriter(p *Presentation) *Writer {
	return &Writer{presentation: p}
}

// Save writes the presentation to a file. A partially written file is removed.
func (w *Writer) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, writeErr := w.WriteTo(f)
	closeErr := f.Close()

	if writeErr != nil {
		os.Remove(path)
		return writeErr
	}
	return closeErr
}

// WriteTo writes the package to out and returns the number of bytes written.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	if w.presentation == nil {
		return 0, fmt.Errorf("presentation is nil")
	}
	cw := &countingWriter{w: out}
	zw := zip.NewWriter(cw)

	w.prepare()

	parts := []func(*zip.Writer) error{
		w.writeContentTypes,
		w.writeRootRels,
		w.writeAppProperties,
		w.writeCoreProperties,
		w.writePresentation,
		w.writePresentationRels,
		w.writePresProps,
		w.writeViewProps,
		w.writeTableStyles,
		w.writeSlideMaster,
		w.writeSlideLayout,
		w.writeTheme,
	}
	for _, part := range parts {
		if err := part(zw); err != nil {
			return cw.n, err
		}
	}

	for i, slide := range w.presentation.slides {
		if err := w.writeSlide(zw, slide, i+1); err != nil {
			return cw.n, err
		}
		if err := w.writeSlideRels(zw, slide, i+1); err != nil {
			return cw.n, err
		}
		if slide.notes != "" {
			if err := w.writeNotesSlide(zw, slide, i+1); err != nil {
				return cw.n, err
			}
		}
	}

	if w.hasNotes {
		if err := w.writeNotesMaster(zw); err != nil {
			return cw.n, err
		}
	}

	if err := w.writeMedia(zw); err != nil {
		return cw.n, err
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to finalize package: %w", err)
	}
	return cw.n, nil
}

// prepare numbers media parts in document order.
func (w *Writer) prepare() {
	w.media = make(map[*Picture]string)
	w.pictures = nil
	w.hasNotes = false
	for _, slide := range w.presentation.slides {
		if slide.notes != "" {
			w.hasNotes = true
		}
		for _, shape := range slide.shapes {
			pic, ok := shape.(*Picture)
			if !ok || len(pic.data) == 0 {
				continue
			}
			w.pictures = append(w.pictures, pic)
			w.media[pic] = fmt.Sprintf("image%d.%s", len(w.pictures), imageExtension(pic.mimeType))
		}
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
