package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/VantageDataChat/GoDeckExport/pptx"
)

// inspect prints a summary of pres: metadata, layout and, per slide, the
// background and shape counts.
func inspect(w io.Writer, pres *pptx.Presentation) {
	props := pres.GetDocumentProperties()
	layout := pres.GetLayout()
	fmt.Fprintf(w, "title:   %s\n", props.Title)
	fmt.Fprintf(w, "author:  %s\n", props.Creator)
	fmt.Fprintf(w, "layout:  %.4gin x %.4gin (%.4gpt x %.4gpt)\n",
		pptx.EMUToInch(layout.CX), pptx.EMUToInch(layout.CY),
		pptx.EMUToPoint(layout.CX), pptx.EMUToPoint(layout.CY))
	fmt.Fprintf(w, "slides:  %d\n", pres.GetSlideCount())

	for i, s := range pres.GetAllSlides() {
		shapes := s.GetShapes()
		bg := describeFill(s.GetBackground())
		// a gradient background is exported as the first, full-bleed shape
		if len(shapes) > 0 && shapes[0].GetName() == "Background" {
			if r, ok := shapes[0].(*pptx.Rect); ok {
				bg = describeFill(r.GetFill()) + " (shape)"
				shapes = shapes[1:]
			}
		}

		counts := map[string]int{}
		for _, sh := range shapes {
			counts[sh.GetType().String()]++
		}
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		parts := make([]string, 0, len(kinds))
		for _, k := range kinds {
			parts = append(parts, fmt.Sprintf("%d %s", counts[k], k))
		}
		summary := strings.Join(parts, ", ")
		if summary == "" {
			summary = "no shapes"
		}

		notes := ""
		if s.GetNotes() != "" {
			notes = ", notes"
		}
		fmt.Fprintf(w, "  %2d. background %s; %s%s\n", i+1, bg, summary, notes)
	}
}

func describeFill(f *pptx.Fill) string {
	if f == nil {
		return "none"
	}
	switch f.Type {
	case pptx.FillSolid:
		return "#" + f.Color.RGB
	case pptx.FillGradientLinear:
		return fmt.Sprintf("gradient #%s → #%s %d°", f.Color.RGB, f.EndColor.RGB, f.Rotation)
	}
	return "none"
}
