package deckexport

import (
	"context"
	"fmt"
	"image"
)

// rasterPage is one captured slide.
type rasterPage struct {
	slide  int // 1-based
	png    []byte
	bounds image.Rectangle
	notes  string
}

// rasterize renders slides one at a time, each on a fresh surface that is
// released before the next one is created. A slide that fails to render is
// reported and skipped. Cancellation is checked between slides.
func rasterize(ctx context.Context, snap *Presentation, opts *Options, t target, rep *report, emit func(rasterPage) error) error {
	fonts := opts.fontCache()
	for i := range snap.Slides {
		if err := ctx.Err(); err != nil {
			return wrapExportError(t.format, "render", err)
		}
		page, err := renderSlide(ctx, i+1, &snap.Slides[i], snap.Settings, t, opts, fonts, rep)
		if err != nil {
			rep.warn(Warning{Slide: i + 1, Kind: WarnSlideSkipped, Err: err})
			continue
		}
		if err := emit(page); err != nil {
			opts.logError("slide %d: failed to write page: %v", page.slide, err)
			return wrapExportError(t.format, "write", err)
		}
	}
	return nil
}

func renderSlide(ctx context.Context, n int, slide *Slide, settings Settings, t target, opts *Options, fonts *FontCache, rep *report) (page rasterPage, err error) {
	s := newSurface(opts.Scale, fonts, opts.Resolver)
	defer s.release()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("slide %d: render panic: %v", n, r)
		}
	}()

	assemble(ctx, n, slide, settings, t, s, rep)
	data, err := s.capture()
	if err != nil {
		return rasterPage{}, fmt.Errorf("slide %d: failed to capture surface: %w", n, err)
	}
	return rasterPage{slide: n, png: data, bounds: s.img.Bounds(), notes: s.speaker}, nil
}
