package deckexport

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// surface is an off-screen RGBA canvas for one slide, drawn at an
// oversampling factor of the 800×450 canvas. It implements slideBuilder for
// the raster targets. A surface belongs to a single export call.
type surface struct {
	img      *image.RGBA
	space    UnitSpace
	scale    float64
	fonts    *FontCache
	faces    map[faceKey]font.Face
	resolver ImageResolver
	speaker  string // notes collected for the page
}

type faceKey struct {
	family string
	sizePx float64
	bold   bool
	italic bool
}

func newSurface(scale float64, fonts *FontCache, resolver ImageResolver) *surface {
	space := RasterPixels(scale)
	w, h := int(math.Round(space.Width)), int(math.Round(space.Height))
	return &surface{
		img:      image.NewRGBA(image.Rect(0, 0, w, h)),
		space:    space,
		scale:    space.Width / CanvasWidth,
		fonts:    fonts,
		faces:    make(map[faceKey]font.Face),
		resolver: resolver,
	}
}

// release drops the pixel buffer and closes cached faces.
func (s *surface) release() {
	for k, f := range s.faces {
		f.Close()
		delete(s.faces, k)
	}
	s.img = nil
}

// capture encodes the surface as PNG.
func (s *surface) capture() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// bounds converts a canvas rectangle to device pixels.
func (s *surface) bounds(r Rect) image.Rectangle {
	d := ToTargetRect(r, s.space)
	x0, y0 := int(math.Round(d.X)), int(math.Round(d.Y))
	return image.Rect(x0, y0, x0+int(math.Round(d.Width)), y0+int(math.Round(d.Height)))
}

func (s *surface) background(bg BackgroundSpec) {
	if bg.Gradient == nil {
		draw.Draw(s.img, s.img.Bounds(), image.NewUniform(hexRGBA(bg.Color)), image.Point{}, draw.Src)
		return
	}
	s.fillGradient(*bg.Gradient)
}

// fillGradient paints a two-stop CSS linear gradient over the whole
// surface. 0deg points up and angles grow clockwise.
func (s *surface) fillGradient(g Gradient) {
	from, to := hexRGBA(g.From), hexRGBA(g.To)
	b := s.img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rad := float64(g.Angle) * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	length := math.Abs(w*dx) + math.Abs(h*dy)
	if length == 0 {
		length = 1
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px, py := float64(x)+0.5-w/2, float64(y)+0.5-h/2
			t := (px*dx+py*dy)/length + 0.5
			s.img.SetRGBA(x, y, lerpRGBA(from, to, t))
		}
	}
}

func (s *surface) text(el *element) {
	box := s.bounds(el.rect)
	if el.fill != "" {
		draw.Draw(s.img, box, image.NewUniform(hexRGBA(el.fill)), image.Point{}, draw.Over)
	}

	face := s.face(el.family, el.fontPx*s.scale, isSet(el.bold), isSet(el.italic))
	if face == nil {
		return
	}
	src := image.NewUniform(hexRGBA(el.color))
	m := face.Metrics()
	lineH := m.Height.Ceil()
	if lineH <= 0 {
		lineH = int(math.Ceil(el.fontPx * s.scale * 1.2))
	}

	y := box.Min.Y + m.Ascent.Ceil()
	for _, line := range el.lines {
		for _, seg := range wrapLine(face, line, box.Dx()) {
			x := box.Min.X
			switch el.align {
			case AlignCenter:
				x += (box.Dx() - font.MeasureString(face, seg).Ceil()) / 2
			case AlignRight:
				x += box.Dx() - font.MeasureString(face, seg).Ceil()
			}
			d := &font.Drawer{Dst: s.img, Src: src, Face: face, Dot: fixed.P(x, y)}
			d.DrawString(seg)
			y += lineH
		}
	}
}

// face returns a cached face for this surface.
func (s *surface) face(family string, sizePx float64, bold, italic bool) font.Face {
	key := faceKey{family: strings.ToLower(family), sizePx: sizePx, bold: bold, italic: italic}
	if f, ok := s.faces[key]; ok {
		return f
	}
	f, err := s.fonts.NewFace(family, sizePx, bold, italic)
	if err != nil {
		return nil
	}
	s.faces[key] = f
	return f
}

// wrapLine breaks a line at spaces so every segment fits maxWidth. A single
// word wider than maxWidth stays on its own segment. An empty line yields one
// empty segment so blank lines keep their height.
func wrapLine(face font.Face, line string, maxWidth int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var out []string
	cur := words[0]
	for _, w := range words[1:] {
		next := cur + " " + w
		if font.MeasureString(face, next).Ceil() > maxWidth {
			out = append(out, cur)
			cur = w
			continue
		}
		cur = next
	}
	return append(out, cur)
}

func (s *surface) image(ctx context.Context, el *element) error {
	ri, err := s.resolver.Resolve(ctx, el.src.Content)
	if err != nil {
		return err
	}
	b := ri.Image.Bounds()
	dst := s.bounds(fitContain(el.rect, b.Dx(), b.Dy()))
	if dst.Empty() {
		return nil
	}
	draw.CatmullRom.Scale(s.img, dst, ri.Image, b, draw.Over, nil)
	return nil
}

func (s *surface) shape(el *element) {
	box := s.bounds(el.rect)
	if el.fill != "" {
		draw.Draw(s.img, box, image.NewUniform(hexRGBA(el.fill)), image.Point{}, draw.Over)
	}
	width := int(math.Max(1, math.Round(s.scale)))
	s.drawRect(box, hexRGBA(el.color), width)
}

func (s *surface) notes(text string) {
	s.speaker = normalizeText(text)
}

// drawRect strokes the inside edge of rect.
func (s *surface) drawRect(rect image.Rectangle, c color.RGBA, width int) {
	for i := 0; i < width; i++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			s.setPixel(x, rect.Min.Y+i, c)
			s.setPixel(x, rect.Max.Y-1-i, c)
		}
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			s.setPixel(rect.Min.X+i, y, c)
			s.setPixel(rect.Max.X-1-i, y, c)
		}
	}
}

func (s *surface) setPixel(x, y int, c color.RGBA) {
	if (image.Point{X: x, Y: y}).In(s.img.Bounds()) {
		s.img.SetRGBA(x, y, c)
	}
}

// hexRGBA converts a normalized RRGGBB string. Malformed input is black.
func hexRGBA(hex string) color.RGBA {
	var v [3]uint8
	if len(hex) == 6 {
		for i := range v {
			hi, ok1 := hexNibble(hex[2*i])
			lo, ok2 := hexNibble(hex[2*i+1])
			if !ok1 || !ok2 {
				return color.RGBA{A: 0xff}
			}
			v[i] = hi<<4 | lo
		}
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xff}
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
