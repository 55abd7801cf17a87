package deckexport

import (
	"archive/zip"
	"bytes"
	"context"
	"image/png"
	"testing"
)

func TestImagesTwoSlideDeck(t *testing.T) {
	e, err := NewExporter(FormatImages, nil)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	p := twoSlideDeck()
	p.Slides[0].Notes = "never shown"
	a, err := e.Export(context.Background(), p)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if a.Filename != "Launch.zip" || a.MIMEType != "application/zip" || a.Pages != 2 {
		t.Errorf("artifact = %s %s %d", a.Filename, a.MIMEType, a.Pages)
	}

	want := []string{"slide-1.png", "slide-2.png"}
	if len(a.Files) != len(want) {
		t.Fatalf("files = %d", len(a.Files))
	}
	for i, f := range a.Files {
		if f.Name != want[i] {
			t.Errorf("file %d = %s", i, f.Name)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(f.Data))
		if err != nil {
			t.Fatalf("%s: %v", f.Name, err)
		}
		// default oversampling is 2
		if cfg.Width != 1600 || cfg.Height != 900 {
			t.Errorf("%s is %dx%d", f.Name, cfg.Width, cfg.Height)
		}
	}

	data, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("bundle is not a zip: %v", err)
	}
	if len(zr.File) != 2 || zr.File[0].Name != "slide-1.png" || zr.File[1].Name != "slide-2.png" {
		t.Errorf("bundle entries = %v", zr.File)
	}
}

func TestImagesScaleOption(t *testing.T) {
	e, _ := NewExporter(FormatImages, &Options{Scale: 1, Filename: "deck.zip"})
	a, err := e.Export(context.Background(), twoSlideDeck())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if a.Filename != "deck.zip" {
		t.Errorf("filename = %s", a.Filename)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(a.Files[1].Data))
	if err != nil || cfg.Width != 800 || cfg.Height != 450 {
		t.Errorf("scale 1 image %dx%d err=%v", cfg.Width, cfg.Height, err)
	}
	img, err := png.Decode(bytes.NewReader(a.Files[1].Data))
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, _ := img.At(10, 10).RGBA(); r>>8 != 0x11 || g>>8 != 0x22 || b>>8 != 0x33 {
		t.Errorf("background = %x %x %x", r>>8, g>>8, b>>8)
	}
}

func TestImagesEmptyDeck(t *testing.T) {
	e, _ := NewExporter(FormatImages, nil)
	a, err := e.Export(context.Background(), &Presentation{Settings: DefaultSettings()})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if a.Pages != 0 || len(a.Files) != 0 || a.Filename != "presentation.zip" {
		t.Errorf("empty deck = %+v", a)
	}
	if data, err := a.Bytes(); err != nil || len(data) == 0 {
		t.Errorf("empty bundle: %d bytes, %v", len(data), err)
	}
}
