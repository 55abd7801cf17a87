package deckexport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// revealThemes are the theme stylesheets shipped with reveal.js.
var revealThemes = map[string]bool{
	"black": true, "white": true, "league": true, "beige": true, "sky": true, "night": true,
	"serif": true, "simple": true, "solarized": true, "moon": true, "dracula": true, "blood": true,
}

// HTMLExporter writes a self-contained reveal.js slideshow.
type HTMLExporter struct {
	opts *Options
}

func (e *HTMLExporter) Format() Format { return FormatHTML }

// Export renders one <section> per slide with elements positioned in
// literal canvas pixels.
func (e *HTMLExporter) Export(ctx context.Context, p *Presentation) (*Artifact, error) {
	snap, err := begin(ctx, FormatHTML, p)
	if err != nil {
		return nil, err
	}
	e.opts.logInfo("Exporting %d slide(s) to HTML...", len(snap.Slides))

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	rep := &report{opts: e.opts}
	t := target{format: FormatHTML, defaultRect: Rect{Width: 200, Height: 50}, notes: true, bgImages: true}

	title := strings.TrimSpace(snap.Settings.Title)
	if title == "" {
		title = defaultPPTXTitle
	}
	doc := htmlDocument{
		Title:  title,
		CDN:    "https://cdnjs.cloudflare.com/ajax/libs/reveal.js/" + e.opts.RevealVersion,
		Theme:  revealTheme(snap.Settings.Theme),
		Config: revealConfig(snap.Settings),
	}
	for i := range snap.Slides {
		if err := ctx.Err(); err != nil {
			return nil, wrapExportError(FormatHTML, "build", err)
		}
		s := &snap.Slides[i]
		b := &htmlBuilder{md: md, section: htmlSection{ID: s.ID, Transition: s.Transition}}
		assemble(ctx, i+1, s, snap.Settings, t, b, rep)
		if b.err != nil {
			return nil, wrapExportError(FormatHTML, "render notes for", b.err)
		}
		doc.Sections = append(doc.Sections, b.section)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, doc); err != nil {
		return nil, wrapExportError(FormatHTML, "write", err)
	}

	name := e.opts.filename(snap, FormatHTML)
	e.opts.logInfo("HTML export finished: %s (%d bytes)", name, buf.Len())
	return &Artifact{
		Format:   FormatHTML,
		Filename: name,
		MIMEType: FormatHTML.MIMEType(),
		Files:    []File{{Name: name, Data: buf.Bytes()}},
		Pages:    len(doc.Sections),
		Warnings: rep.warnings,
	}, nil
}

func revealTheme(theme string) string {
	t := strings.ToLower(strings.TrimSpace(theme))
	if revealThemes[t] {
		return t
	}
	return "black"
}

type htmlDocument struct {
	Title    string
	CDN      string
	Theme    string
	Config   []revealOption
	Sections []htmlSection
}

// revealOption is one Reveal.initialize key, pre-rendered as a JS literal.
type revealOption struct {
	Key   template.JS
	Value template.JS
}

// revealConfig copies the slideshow settings 1:1 in reveal.js key order.
func revealConfig(s Settings) []revealOption {
	b := func(k string, v bool) revealOption {
		return revealOption{Key: template.JS(k), Value: template.JS(strconv.FormatBool(v))}
	}
	return []revealOption{
		b("controls", s.Controls),
		b("progress", s.Progress),
		b("center", s.Center),
		b("touch", s.Touch),
		b("loop", s.Loop),
		b("rtl", s.RTL),
		b("shuffle", s.Shuffle),
		b("fragments", s.Fragments),
		b("embedded", s.Embedded),
		b("help", s.Help),
		b("showNotes", s.ShowNotes),
		{Key: "autoSlide", Value: template.JS(strconv.Itoa(s.AutoSlide))},
		b("autoSlideStoppable", s.AutoSlideStoppable),
		b("mouseWheel", s.MouseWheel),
		b("hideAddressBar", s.HideAddressBar),
		b("previewLinks", s.PreviewLinks),
		{Key: "transition", Value: jsString(s.Transition)},
		b("hash", s.Hash),
		b("respondToHashChanges", s.RespondToHashChanges),
		b("jumpToSlide", s.JumpToSlide),
		b("history", s.History),
	}
}

// jsString quotes s as a JSON string; json escapes <, > and & so the
// literal cannot close the script element.
func jsString(s string) template.JS {
	b, _ := json.Marshal(s)
	return template.JS(b)
}

type htmlSection struct {
	ID              string
	Transition      string
	BackgroundColor string
	Gradient        string
	Image           string
	Elements        []htmlElement
	Notes           template.HTML
}

type htmlElement struct {
	Kind  ContentType
	ID    string
	Style template.CSS
	Lines []string
	Src   template.URL
}

// htmlBuilder renders slide layers as DOM fragments.
type htmlBuilder struct {
	md      goldmark.Markdown
	section htmlSection
	err     error
}

func (b *htmlBuilder) background(bg BackgroundSpec) {
	if g := bg.Gradient; g != nil {
		b.section.Gradient = fmt.Sprintf("linear-gradient(%ddeg, #%s, #%s)", g.Angle, g.From, g.To)
	} else {
		b.section.BackgroundColor = "#" + bg.Color
	}
	b.section.Image = bg.Image
}

// boxStyle positions an element in canvas pixels. Later elements stack
// above earlier ones.
func boxStyle(el *element) *strings.Builder {
	r := ToTargetRect(el.rect, WebPixels)
	var sb strings.Builder
	fmt.Fprintf(&sb, "position: absolute; left: %spx; top: %spx; width: %spx; height: %spx; z-index: %d;",
		cssNumber(r.X), cssNumber(r.Y), cssNumber(r.Width), cssNumber(r.Height), el.index+1)
	return &sb
}

func (b *htmlBuilder) text(el *element) {
	sb := boxStyle(el)
	family := cssFontFamily(el.family)
	if family == "" {
		family = DefaultFontFamily
	}
	fmt.Fprintf(sb, " font-size: %spx; font-family: %s; color: #%s; text-align: %s;",
		cssNumber(el.fontPx), family, el.color, el.align)
	if el.bold != nil {
		fmt.Fprintf(sb, " font-weight: %s;", cssFlag(*el.bold, "bold"))
	}
	if el.italic != nil {
		fmt.Fprintf(sb, " font-style: %s;", cssFlag(*el.italic, "italic"))
	}
	if el.fill != "" {
		fmt.Fprintf(sb, " background-color: #%s;", el.fill)
	}
	b.section.Elements = append(b.section.Elements, htmlElement{
		Kind:  ContentText,
		ID:    el.src.ID,
		Style: template.CSS(sb.String()),
		Lines: el.lines,
	})
}

// image references the source directly; the browser resolves it. Schemes a
// browser would not load as an image are rejected.
func (b *htmlBuilder) image(_ context.Context, el *element) error {
	ref := strings.TrimSpace(el.src.Content)
	if ref == "" {
		return fmt.Errorf("%w: empty image reference", ErrImageUnresolvable)
	}
	src, ok := safeImageURL(ref)
	if !ok {
		scheme, _, _ := strings.Cut(ref, ":")
		return fmt.Errorf("%w: %s: scheme not allowed in a web page", ErrImageUnresolvable, scheme)
	}
	sb := boxStyle(el)
	sb.WriteString(" object-fit: contain;")
	b.section.Elements = append(b.section.Elements, htmlElement{
		Kind:  ContentImage,
		ID:    el.src.ID,
		Style: template.CSS(sb.String()),
		Src:   src,
	})
	return nil
}

func (b *htmlBuilder) shape(el *element) {
	sb := boxStyle(el)
	if el.fill != "" {
		fmt.Fprintf(sb, " background-color: #%s;", el.fill)
	}
	fmt.Fprintf(sb, " border: 1px solid #%s; box-sizing: border-box;", el.color)
	b.section.Elements = append(b.section.Elements, htmlElement{
		Kind:  ContentShape,
		ID:    el.src.ID,
		Style: template.CSS(sb.String()),
	})
}

func (b *htmlBuilder) notes(text string) {
	var buf bytes.Buffer
	if err := b.md.Convert([]byte(normalizeText(text)), &buf); err != nil {
		b.err = err
		return
	}
	// goldmark omits raw HTML unless WithUnsafe is set
	b.section.Notes = template.HTML(buf.String())
}

// safeImageURL accepts http(s), data:image and relative references.
func safeImageURL(ref string) (template.URL, bool) {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		!strings.Contains(lower, ":"):
		return template.URL(ref), true
	}
	return "", false
}

// cssFontFamily keeps only characters that are valid in a font-family list.
func cssFontFamily(family string) string {
	var sb strings.Builder
	for _, r := range family {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == ' ', r == ',', r == '-', r == '_', r == '\'', r == '"':
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

func cssFlag(on bool, value string) string {
	if on {
		return value
	}
	return "normal"
}

func cssNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

var htmlTemplate = template.Must(template.New("reveal").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="{{.CDN}}/reveal.min.css">
    <link rel="stylesheet" href="{{.CDN}}/theme/{{.Theme}}.min.css">
</head>
<body>
    <div class="reveal">
        <div class="slides">
{{- range .Sections}}
            <section{{with .ID}} data-id="{{.}}"{{end}}{{with .Transition}} data-transition="{{.}}"{{end}}{{with .BackgroundColor}} data-background-color="{{.}}"{{end}}{{with .Gradient}} data-background-gradient="{{.}}"{{end}}{{with .Image}} data-background-image="{{.}}"{{end}}>
{{- range .Elements}}
{{- if eq .Kind "image"}}
                <img class="element" data-id="{{.ID}}" src="{{.Src}}" alt="" style="{{.Style}}">
{{- else}}
                <div class="element {{.Kind}}" data-id="{{.ID}}" style="{{.Style}}">{{range $i, $l := .Lines}}{{if $i}}<br>{{end}}{{$l}}{{end}}</div>
{{- end}}
{{- end}}
{{- with .Notes}}
                <aside class="notes">{{.}}</aside>
{{- end}}
            </section>
{{- end}}
        </div>
    </div>

    <script src="{{.CDN}}/reveal.min.js"></script>
    <script>
        Reveal.initialize({
{{- range $i, $o := .Config}}{{if $i}},{{end}}
            {{$o.Key}}: {{$o.Value}}
{{- end}}
        });
    </script>
</body>
</html>
`))
