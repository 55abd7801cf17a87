package deckexport

import (
	"context"
	"fmt"
)

// ImagesExporter writes one PNG per slide. The files are named slide-N.png
// and bundle into <title>.zip.
type ImagesExporter struct {
	opts *Options
}

func (e *ImagesExporter) Format() Format { return FormatImages }

func (e *ImagesExporter) Export(ctx context.Context, p *Presentation) (*Artifact, error) {
	snap, err := begin(ctx, FormatImages, p)
	if err != nil {
		return nil, err
	}
	e.opts.logInfo("Exporting %d slide(s) to images...", len(snap.Slides))

	rep := &report{opts: e.opts}
	t := target{format: FormatImages, defaultRect: Rect{Width: 200, Height: 50}}
	var files []File
	err = rasterize(ctx, snap, e.opts, t, rep, func(page rasterPage) error {
		files = append(files, File{Name: fmt.Sprintf("slide-%d.png", page.slide), Data: page.png})
		return nil
	})
	if err != nil {
		return nil, err
	}

	name := e.opts.filename(snap, FormatImages)
	e.opts.logInfo("Image export finished: %s (%d image(s))", name, len(files))
	return &Artifact{
		Format:   FormatImages,
		Filename: name,
		MIMEType: FormatImages.MIMEType(),
		Files:    files,
		Pages:    len(files),
		Warnings: rep.warnings,
	}, nil
}
