package deckexport

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func pngDataURI(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, w, h, c))
}

func TestResolveDataURI(t *testing.T) {
	r := NewResolver(nil)
	ri, err := r.Resolve(context.Background(), pngDataURI(t, 4, 2, color.White))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ri.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q", ri.MIMEType)
	}
	if b := ri.Image.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("bounds = %v", b)
	}
}

func TestResolveHTTP(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3)), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photo.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	r := NewResolver(srv.Client())
	ri, err := r.Resolve(context.Background(), srv.URL+"/photo.jpg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ri.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q", ri.MIMEType)
	}

	_, err = r.Resolve(context.Background(), srv.URL+"/missing.png")
	if !errors.Is(err, ErrImageUnresolvable) {
		t.Errorf("404 error = %v, want ErrImageUnresolvable", err)
	}
}

func TestResolveFileRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), encodePNG(t, 2, 2, color.Black), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(nil)
	r.BaseDir = dir
	if _, err := r.Resolve(context.Background(), "logo.png"); err != nil {
		t.Errorf("relative path: %v", err)
	}
	if _, err := r.Resolve(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "logo.png"))); err != nil {
		t.Errorf("file URL: %v", err)
	}
}

func TestResolveFailures(t *testing.T) {
	r := NewResolver(nil)
	for _, ref := range []string{
		"",
		"data:image/png;base64,%%%",
		"data:text/plain,hello",
		"data:nocomma",
		filepath.Join(t.TempDir(), "absent.png"),
	} {
		if _, err := r.Resolve(context.Background(), ref); !errors.Is(err, ErrImageUnresolvable) {
			t.Errorf("Resolve(%q) = %v, want ErrImageUnresolvable", ref, err)
		}
	}
}

func TestEmbeddablePassesThroughPNG(t *testing.T) {
	data := encodePNG(t, 1, 1, color.White)
	ri, err := decodeImage(data)
	if err != nil {
		t.Fatal(err)
	}
	got, mime, err := ri.embeddable()
	if err != nil || mime != "image/png" || !bytes.Equal(got, data) {
		t.Errorf("embeddable = %d bytes, %q, %v", len(got), mime, err)
	}

	ri.MIMEType = "image/webp"
	got, mime, err = ri.embeddable()
	if err != nil || mime != "image/png" || !bytes.HasPrefix(got, []byte("\x89PNG")) {
		t.Errorf("re-encode = %q, %v", mime, err)
	}
}
