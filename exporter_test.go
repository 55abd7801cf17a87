package deckexport

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestNewExporter(t *testing.T) {
	for _, f := range Formats() {
		e, err := NewExporter(f, nil)
		if err != nil {
			t.Fatalf("NewExporter(%s): %v", f, err)
		}
		if e.Format() != f {
			t.Errorf("exporter for %s reports %s", f, e.Format())
		}
	}
	if _, err := NewExporter("docx", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("docx err = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"pdf": FormatPDF, " PDF ": FormatPDF,
		"html": FormatHTML, "reveal": FormatHTML,
		"pptx": FormatPPTX, "PowerPoint": FormatPPTX,
		"images": FormatImages, "png": FormatImages,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("gif err = %v", err)
	}
}

func TestFormatExtensionAndFilename(t *testing.T) {
	want := map[Format]string{FormatPDF: "pdf", FormatHTML: "html", FormatPPTX: "pptx", FormatImages: "zip"}
	for f, ext := range want {
		if f.Extension() != ext {
			t.Errorf("%s extension = %s", f, f.Extension())
		}
	}
	if Format("x").MIMEType() != "application/octet-stream" {
		t.Error("unknown format MIME type")
	}

	tests := []struct {
		title string
		f     Format
		want  string
	}{
		{"Q3 Review", FormatPDF, "Q3 Review.pdf"},
		{"  ", FormatPPTX, "presentation.pptx"},
		{"a/b\\c", FormatHTML, "a-b-c.html"},
		{"Deck", FormatImages, "Deck.zip"},
	}
	for _, tt := range tests {
		if got := DefaultFilename(tt.title, tt.f); got != tt.want {
			t.Errorf("DefaultFilename(%q, %s) = %q, want %q", tt.title, tt.f, got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := (&Options{Scale: -1, Filename: "out.pdf"}).withDefaults()
	if o.Scale != 2 || o.RevealVersion != DefaultRevealVersion || o.PageFormat != "A4" || o.Resolver == nil {
		t.Errorf("defaults = %+v", o)
	}
	if o.filename(twoSlideDeck(), FormatPDF) != "out.pdf" {
		t.Error("Filename override ignored")
	}
	shared := NewFontCache()
	if (&Options{FontCache: shared}).fontCache() != shared {
		t.Error("shared font cache not used")
	}
}

func TestExportNilPresentation(t *testing.T) {
	for _, f := range Formats() {
		e, _ := NewExporter(f, nil)
		_, err := e.Export(context.Background(), nil)
		var ee *ExportError
		if !errors.As(err, &ee) || ee.Op != "start" || ee.Format != f {
			t.Errorf("%s: err = %v", f, err)
		}
	}
}

func TestExportErrorWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := wrapExportError(FormatHTML, "write", cause)
	if err.Error() != "failed to write html export: boom" || !errors.Is(err, cause) {
		t.Errorf("err = %v", err)
	}
	// an ExportError is not wrapped twice
	if again := wrapExportError(FormatPDF, "render", err); again != err {
		t.Errorf("rewrapped = %v", again)
	}
	if wrapExportError(FormatPDF, "write", nil) != nil {
		t.Error("nil cause produced an error")
	}

	w := Warning{Slide: 2, Element: "img", Kind: WarnImageUnresolved, Err: cause}
	if w.String() != "slide 2 element img: image-unresolved: boom" {
		t.Errorf("warning = %q", w.String())
	}
}

func TestExportAsync(t *testing.T) {
	e, _ := NewExporter(FormatHTML, nil)
	p := twoSlideDeck()
	ch := ExportAsync(context.Background(), e, p)
	// the caller may mutate its deck once the call returns
	p.Slides = nil
	p.Settings.Title = "changed"

	select {
	case res := <-ch:
		if res.Err != nil {
			t.Fatalf("async export: %v", res.Err)
		}
		if res.Artifact.Pages != 2 || res.Artifact.Filename != "Launch.html" {
			t.Errorf("artifact = %d pages, %s", res.Artifact.Pages, res.Artifact.Filename)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("no result")
	}
	if _, ok := <-ch; ok {
		t.Error("channel delivered a second result")
	}
}

func TestExportSelectedSlides(t *testing.T) {
	deck := twoSlideDeck()
	e, _ := NewExporter(FormatPPTX, nil)

	a, err := ExportCurrentSlide(context.Background(), e, deck.Settings, deck.Slides[1])
	if err != nil {
		t.Fatalf("ExportCurrentSlide: %v", err)
	}
	if a.Pages != 1 || a.Filename != "Launch.pptx" {
		t.Errorf("current slide = %d pages, %s", a.Pages, a.Filename)
	}

	a, err = ExportSelectedSlides(context.Background(), e, deck.Settings, []Slide{deck.Slides[1], deck.Slides[0], deck.Slides[1]})
	if err != nil {
		t.Fatalf("ExportSelectedSlides: %v", err)
	}
	if a.Pages != 3 {
		t.Errorf("selected = %d pages", a.Pages)
	}
}

func TestArtifactSaveAndExtract(t *testing.T) {
	dir := t.TempDir()
	a := &Artifact{Format: FormatPDF, Filename: "deck.pdf", Files: []File{{Name: "deck.pdf", Data: []byte("%PDF-1.3")}}}
	path, err := a.Save(dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "%PDF-1.3" {
		t.Errorf("saved %q", data)
	}

	set := &Artifact{Format: FormatImages, Filename: "deck.zip", Files: []File{
		{Name: "slide-1.png", Data: []byte("one")},
		{Name: "slide-2.png", Data: []byte("two")},
	}}
	paths, err := set.Extract(filepath.Join(dir, "frames"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "slide-2.png" {
		t.Errorf("paths = %v", paths)
	}
	if data, _ := os.ReadFile(paths[0]); string(data) != "one" {
		t.Errorf("slide-1 = %q", data)
	}

	path, err = set.Save(dir)
	if err != nil {
		t.Fatalf("Save bundle: %v", err)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Errorf("bundle entries = %d", len(zr.File))
	}
}

func TestExportLeavesPresentationUntouched(t *testing.T) {
	p, err := ReadPresentation(filepath.Join("testdata", "demo.yaml"))
	if err != nil {
		t.Fatalf("ReadPresentation: %v", err)
	}
	p.Slides = append(p.Slides, Slide{
		ID:    "extra",
		Notes: "  line one\r\nline two  ",
		Content: []SlideContent{
			{ID: "lead", Type: ContentText, Content: "\r\nafter a blank line"},
			{ID: "local", Type: ContentImage, Content: "file:///missing.png", Style: Style{FontFamily: " "}},
			{ID: "box", Type: ContentShape},
		},
	})
	before := p.Snapshot()

	for _, f := range Formats() {
		e, err := NewExporter(f, &Options{Scale: 1})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.Export(context.Background(), p); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if _, err := ExportCurrentSlide(context.Background(), e, p.Settings, p.Slides[2]); err != nil {
			t.Fatalf("%s current slide: %v", f, err)
		}
		if !reflect.DeepEqual(p, before) {
			t.Fatalf("%s export modified the presentation", f)
		}
	}
}

func TestExportDemoDeckEveryFormat(t *testing.T) {
	p, err := ReadPresentation(filepath.Join("testdata", "demo.yaml"))
	if err != nil {
		t.Fatalf("ReadPresentation: %v", err)
	}
	var logs bytes.Buffer
	opts := &Options{
		Scale:  1,
		Logger: NewSlogLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	}
	for _, f := range Formats() {
		e, err := NewExporter(f, opts)
		if err != nil {
			t.Fatal(err)
		}
		a, err := e.Export(context.Background(), p)
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if a.Pages != 2 {
			t.Errorf("%s: pages = %d", f, a.Pages)
		}
		if a.Filename != "Quarterly Review."+f.Extension() {
			t.Errorf("%s: filename = %s", f, a.Filename)
		}
		// the video element is skipped everywhere
		if len(a.Warnings) != 1 || a.Warnings[0].Kind != WarnUnsupportedElement || a.Warnings[0].Element != "clip" {
			t.Errorf("%s: warnings = %v", f, a.Warnings)
		}
	}
	out := logs.String()
	for _, want := range []string{"level=INFO", "level=WARN", "Exporting 2 slide(s) to PDF"} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %q:\n%s", want, out)
		}
	}
}
