package pptx

import (
	"fmt"
	"strings"
)

// Validate checks the presentation for structural issues and returns an error
// describing all problems found, or nil if the presentation can be written.
// An empty presentation is valid.
func (p *Presentation) Validate() error {
	var errs []string

	if p.properties == nil {
		errs = append(errs, "document properties are nil")
	}
	if p.layout == nil {
		errs = append(errs, "document layout is nil")
	} else {
		if p.layout.CX <= 0 {
			errs = append(errs, "layout width (CX) must be positive")
		}
		if p.layout.CY <= 0 {
			errs = append(errs, "layout height (CY) must be positive")
		}
	}

	for i, slide := range p.slides {
		prefix := fmt.Sprintf("slide %d", i+1)
		if slide == nil {
			errs = append(errs, prefix+": slide is nil")
			continue
		}
		for _, e := range validateSlide(slide) {
			errs = append(errs, prefix+": "+e)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func validateSlide(s *Slide) []string {
	var errs []string
	for j, shape := range s.shapes {
		prefix := fmt.Sprintf("shape %d", j+1)
		if shape == nil {
			errs = append(errs, prefix+": shape is nil")
			continue
		}
		if shape.GetWidth() < 0 {
			errs = append(errs, prefix+": width is negative")
		}
		if shape.GetHeight() < 0 {
			errs = append(errs, prefix+": height is negative")
		}

		switch sh := shape.(type) {
		case *Picture:
			if len(sh.data) == 0 {
				errs = append(errs, prefix+": picture has no image data")
			}
			if !isValidImageMime(sh.mimeType) {
				errs = append(errs, prefix+": unsupported image MIME type: "+sh.mimeType)
			}
		case *TextBox:
			if len(sh.paragraphs) == 0 {
				errs = append(errs, prefix+": text box has no paragraphs")
			}
			for k, para := range sh.paragraphs {
				for m, elem := range para.elements {
					if tr, ok := elem.(*TextRun); ok && tr.font == nil {
						errs = append(errs, fmt.Sprintf("%s: paragraph %d run %d has nil font", prefix, k+1, m+1))
					}
				}
			}
		}
	}
	return errs
}

// isValidImageMime checks if a MIME type can be embedded as a picture part.
func isValidImageMime(mime string) bool {
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/bmp":
		return true
	}
	return false
}
