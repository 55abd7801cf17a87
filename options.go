package deckexport

import (
	"fmt"
	"strings"
)

// Format identifies an export target.
type Format string

const (
	FormatPDF    Format = "pdf"
	FormatHTML   Format = "html"
	FormatPPTX   Format = "pptx"
	FormatImages Format = "images"
)

// Formats lists every supported format in a stable order.
func Formats() []Format {
	return []Format{FormatPDF, FormatHTML, FormatPPTX, FormatImages}
}

// ParseFormat resolves a format name. A few common aliases are accepted.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pdf":
		return FormatPDF, nil
	case "html", "reveal", "web":
		return FormatHTML, nil
	case "pptx", "powerpoint", "office":
		return FormatPPTX, nil
	case "images", "image", "png":
		return FormatImages, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Extension is the file extension of the artifact, without the dot. The
// image set is delivered as a zip bundle.
func (f Format) Extension() string {
	if f == FormatImages {
		return "zip"
	}
	return string(f)
}

// MIMEType is the content type of the delivered artifact.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case FormatImages:
		return "application/zip"
	}
	return "application/octet-stream"
}

// DefaultRevealVersion is the reveal.js release referenced by HTML exports.
const DefaultRevealVersion = "5.0.4"

// Options configures an exporter.
type Options struct {
	// Filename overrides the default "<title>.<ext>" artifact name.
	Filename string
	// Scale is the raster oversampling factor. Default: 2.
	Scale float64
	// FontDirs specifies additional directories to search for TrueType/OpenType fonts.
	// System font directories are always searched automatically.
	FontDirs []string
	// FontCache allows sharing a pre-configured FontCache across exports.
	// If nil, a new FontCache is created using FontDirs.
	FontCache *FontCache
	// Resolver loads image references. Default: NewResolver(nil).
	Resolver ImageResolver
	// Logger receives progress messages. Nil means silent.
	Logger Logger
	// RevealVersion selects the reveal.js CDN release. Default: 5.0.4.
	RevealVersion string
	// PageFormat is the PDF page size name understood by gofpdf. Default: A4.
	PageFormat string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		Scale:         2,
		RevealVersion: DefaultRevealVersion,
		PageFormat:    "A4",
	}
}

// withDefaults returns a copy of o with zero fields filled in.
func (o *Options) withDefaults() *Options {
	d := DefaultOptions()
	if o == nil {
		o = d
	}
	cp := *o
	if cp.Scale <= 0 {
		cp.Scale = d.Scale
	}
	if cp.RevealVersion == "" {
		cp.RevealVersion = d.RevealVersion
	}
	if cp.PageFormat == "" {
		cp.PageFormat = d.PageFormat
	}
	if cp.Resolver == nil {
		cp.Resolver = NewResolver(nil)
	}
	return &cp
}

// fontCache returns the shared cache or a fresh one for this export.
func (o *Options) fontCache() *FontCache {
	if o.FontCache != nil {
		return o.FontCache
	}
	return NewFontCache(o.FontDirs...)
}

// filename returns the artifact name for a presentation.
func (o *Options) filename(p *Presentation, f Format) string {
	if o.Filename != "" {
		return o.Filename
	}
	return DefaultFilename(p.Settings.Title, f)
}

// DefaultFilename is "<title>.<ext>", or "presentation.<ext>" for an empty
// title. Path separators in the title are replaced.
func DefaultFilename(title string, f Format) string {
	base := strings.TrimSpace(title)
	if base == "" {
		base = "presentation"
	}
	base = strings.NewReplacer("/", "-", "\\", "-").Replace(base)
	return base + "." + f.Extension()
}
