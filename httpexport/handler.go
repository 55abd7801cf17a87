// Package httpexport serves deck exports as browser downloads.
package httpexport

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	deckexport "github.com/VantageDataChat/GoDeckExport"
)

// MaxSnapshotBytes limits the size of an uploaded snapshot.
const MaxSnapshotBytes = 64 << 20

// Handler handles export requests.
type Handler struct {
	opts *deckexport.Options
}

// NewHandler creates a handler. opts is shared by every request; a nil opts
// uses deckexport.DefaultOptions with one font cache for the process.
func NewHandler(opts *deckexport.Options) *Handler {
	if opts == nil {
		opts = deckexport.DefaultOptions()
	}
	cp := *opts
	if cp.FontCache == nil {
		cp.FontCache = deckexport.NewFontCache(cp.FontDirs...)
	}
	return &Handler{opts: &cp}
}

// Router registers the handler routes on a new router.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/formats", h.Formats).Methods(http.MethodGet)
	r.HandleFunc("/export/{format}", h.Export).Methods(http.MethodPost)
	return r
}

// FormatInfo describes one export format.
type FormatInfo struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	MIMEType  string `json:"mimeType"`
}

// Formats lists the supported formats
// GET /formats
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	var out []FormatInfo
	for _, f := range deckexport.Formats() {
		out = append(out, FormatInfo{Name: string(f), Extension: f.Extension(), MIMEType: f.MIMEType()})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Export converts the snapshot in the request body and returns the
// artifact as an attachment
// POST /export/{format}?slides=1,3
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := deckexport.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxSnapshotBytes))
	if err != nil {
		http.Error(w, "Failed to read snapshot: "+err.Error(), http.StatusBadRequest)
		return
	}
	p, err := deckexport.DecodePresentation(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var slides []deckexport.Slide
	if q := r.URL.Query().Get("slides"); q != "" {
		slides, err = selectSlides(p.Slides, q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	e, err := deckexport.NewExporter(format, h.opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var a *deckexport.Artifact
	if slides != nil {
		a, err = deckexport.ExportSelectedSlides(r.Context(), e, p.Settings, slides)
	} else {
		a, err = e.Export(r.Context(), p)
	}
	if err != nil {
		h.logError("export %s failed: %v", format, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := a.Bytes()
	if err != nil {
		h.logError("bundle %s failed: %v", a.Filename, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", a.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Export-Pages", strconv.Itoa(a.Pages))
	w.Header().Set("X-Export-Warnings", strconv.Itoa(len(a.Warnings)))
	w.Write(data)
}

// selectSlides picks slides by a comma-separated list of 1-based numbers.
func selectSlides(all []deckexport.Slide, list string) ([]deckexport.Slide, error) {
	var out []deckexport.Slide
	for _, part := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid slide number %q", part)
		}
		if n < 1 || n > len(all) {
			return nil, fmt.Errorf("slide %d out of range (1-%d)", n, len(all))
		}
		out = append(out, all[n-1])
	}
	return out, nil
}

func (h *Handler) logError(f string, a ...any) {
	if h.opts.Logger != nil {
		h.opts.Logger.Errorf(f, a...)
	}
}
