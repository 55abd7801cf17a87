package httpexport

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	deckexport "github.com/VantageDataChat/GoDeckExport"
	"github.com/VantageDataChat/GoDeckExport/pptx"
)

const deckJSON = `{
	"id": "deck",
	"settings": {"title": "Launch"},
	"slides": [
		{"id": "a", "content": [{"id": "t", "type": "text", "content": "Hello"}]},
		{"id": "b", "background": {"color": "#112233"}}
	]
}`

func serve(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewHandler(&deckexport.Options{Scale: 1}).Router().ServeHTTP(rec, req)
	return rec
}

func TestFormats(t *testing.T) {
	rec := serve(t, httptest.NewRequest(http.MethodGet, "/formats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []FormatInfo
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 4 || got[3].Name != "images" || got[3].Extension != "zip" {
		t.Errorf("formats = %+v", got)
	}
}

func TestExportPPTXDownload(t *testing.T) {
	rec := serve(t, httptest.NewRequest(http.MethodPost, "/export/pptx", strings.NewReader(deckJSON)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	disp, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil || disp != "attachment" || params["filename"] != "Launch.pptx" {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Header().Get("Content-Type") != deckexport.FormatPPTX.MIMEType() {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("X-Export-Pages") != "2" {
		t.Errorf("pages header = %q", rec.Header().Get("X-Export-Pages"))
	}
	pres, err := pptx.ReadBytes(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("body is not a PPTX: %v", err)
	}
	if pres.GetSlideCount() != 2 {
		t.Errorf("slides = %d", pres.GetSlideCount())
	}
}

func TestExportSelectedSlides(t *testing.T) {
	rec := serve(t, httptest.NewRequest(http.MethodPost, "/export/html?slides=2", strings.NewReader(deckJSON)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Export-Pages") != "1" {
		t.Errorf("pages header = %q", rec.Header().Get("X-Export-Pages"))
	}
	if !strings.Contains(rec.Body.String(), `data-background-color="#112233"`) {
		t.Error("selected slide missing from body")
	}
}

func TestExportYAMLImages(t *testing.T) {
	body := "settings:\n  title: Frames\nslides:\n  - id: one\n"
	rec := serve(t, httptest.NewRequest(http.MethodPost, "/export/png", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if _, params, _ := mime.ParseMediaType(rec.Header().Get("Content-Disposition")); params["filename"] != "Frames.zip" {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Error("body is not a zip")
	}
}

func TestExportBadRequests(t *testing.T) {
	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"unknown format", http.MethodPost, "/export/docx", deckJSON, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/export/pdf", "", http.StatusBadRequest},
		{"bad json", http.MethodPost, "/export/pdf", "{not json", http.StatusBadRequest},
		{"invalid deck", http.MethodPost, "/export/pdf", `{"settings": {"autoSlide": -1}}`, http.StatusBadRequest},
		{"slide out of range", http.MethodPost, "/export/pdf?slides=3", deckJSON, http.StatusBadRequest},
		{"slide not a number", http.MethodPost, "/export/pdf?slides=x", deckJSON, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/export/pdf", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestExportFailureIsServerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/export/html", strings.NewReader(deckJSON)).WithContext(ctx)
	rec := serve(t, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed to start html export") {
		t.Errorf("body = %q", rec.Body)
	}
}
