package pptx

import (
	"archive/zip"
	"fmt"
	"strings"
)

const spTreeHeader = `      <p:nvGrpSpPr>
        <p:cNvPr id="1" name=""/>
        <p:cNvGrpSpPr/>
        <p:nvPr/>
      </p:nvGrpSpPr>
      <p:grpSpPr>
        <a:xfrm>
          <a:off x="0" y="0"/>
          <a:ext cx="0" cy="0"/>
          <a:chOff x="0" y="0"/>
          <a:chExt cx="0" cy="0"/>
        </a:xfrm>
      </p:grpSpPr>
`

// pictureRelIDs maps each embedded picture on a slide to its relationship ID.
// rId1 is the slide layout; pictures follow in z-order.
func pictureRelIDs(slide *Slide, media map[*Picture]string) map[*Picture]string {
	ids := make(map[*Picture]string)
	next := 2
	for _, shape := range slide.shapes {
		if pic, ok := shape.(*Picture); ok {
			if _, embedded := media[pic]; embedded {
				ids[pic] = fmt.Sprintf("rId%d", next)
				next++
			}
		}
	}
	return ids
}

func (w *Writer) writeSlide(zw *zip.Writer, slide *Slide, slideNum int) error {
	relIDs := pictureRelIDs(slide, w.media)

	var shapesXML strings.Builder
	shapeID := 2 // 1 is the group shape
	for _, shape := range slide.shapes {
		switch s := shape.(type) {
		case *TextBox:
			shapesXML.WriteString(w.writeTextBoxXML(s, &shapeID))
		case *Picture:
			if rid, ok := relIDs[s]; ok {
				shapesXML.WriteString(w.writePictureXML(s, &shapeID, rid))
			}
		case *Rect:
			shapesXML.WriteString(w.writeRectXML(s, &shapeID))
		}
	}

	bgXML := ""
	if slide.background != nil && slide.background.Type == FillSolid {
		bgXML = "    <p:bg>\n      <p:bgPr>\n"
		bgXML += w.writeFillXML(slide.background)
		bgXML += "        <a:effectLst/>\n      </p:bgPr>\n    </p:bg>\n"
	}

	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">
  <p:cSld>
%s    <p:spTree>
%s%s    </p:spTree>
  </p:cSld>
  <p:clrMapOvr>
    <a:masterClrMapping/>
  </p:clrMapOvr>
</p:sld>`, nsDrawingML, nsOfficeDocRels, nsPresentationML, bgXML, spTreeHeader, shapesXML.String())

	return writeRawXMLToZip(zw, fmt.Sprintf("ppt/slides/slide%d.xml", slideNum), content)
}

func (w *Writer) writeSlideRels(zw *zip.Writer, slide *Slide, slideNum int) error {
	var rels strings.Builder
	fmt.Fprintf(&rels, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="%s">
  <Relationship Id="rId1" Type="%s" Target="../slideLayouts/slideLayout1.xml"/>`, nsRelationships, relTypeSlideLayout)

	relIdx := 2
	for _, shape := range slide.shapes {
		pic, ok := shape.(*Picture)
		if !ok {
			continue
		}
		name, embedded := w.media[pic]
		if !embedded {
			continue
		}
		fmt.Fprintf(&rels, `
  <Relationship Id="rId%d" Type="%s" Target="../media/%s"/>`, relIdx, relTypeImage, name)
		relIdx++
	}

	if slide.notes != "" {
		fmt.Fprintf(&rels, `
  <Relationship Id="rId%d" Type="%s" Target="../notesSlides/notesSlide%d.xml"/>`,
			relIdx, relTypeNotesSlide, slideNum)
	}

	rels.WriteString(`
</Relationships>`)
	return writeRawXMLToZip(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", slideNum), rels.String())
}

// --- Text box ---

func (w *Writer) writeTextBoxXML(s *TextBox, shapeID *int) string {
	id := *shapeID
	*shapeID++

	name := s.name
	if name == "" {
		name = fmt.Sprintf("TextBox %d", id)
	}

	var paragraphsXML strings.Builder
	for _, para := range s.paragraphs {
		paragraphsXML.WriteString(w.writeParagraphXML(para))
	}

	wrap := "none"
	if s.wordWrap {
		wrap = "square"
	}

	return fmt.Sprintf(`      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="%s"%s/>
          <p:cNvSpPr txBox="1"/>
          <p:nvPr/>
        </p:nvSpPr>
        <p:spPr>
          <a:xfrm>
            <a:off x="%d" y="%d"/>
            <a:ext cx="%d" cy="%d"/>
          </a:xfrm>
          <a:prstGeom prst="rect">
            <a:avLst/>
          </a:prstGeom>
%s%s        </p:spPr>
        <p:txBody>
          <a:bodyPr wrap="%s" lIns="0" tIns="0" rIns="0" bIns="0" rtlCol="0" anchor="t"><a:noAutofit/></a:bodyPr>
          <a:lstStyle/>
%s        </p:txBody>
      </p:sp>
`, id, xmlEscape(name), descrAttr(s.description),
		s.offsetX, s.offsetY, s.width, s.height,
		w.writeFillXML(s.fill), w.writeBorderXML(s.border),
		wrap, paragraphsXML.String())
}

func descrAttr(d string) string {
	if d == "" {
		return ""
	}
	return fmt.Sprintf(` descr="%s"`, xmlEscape(d))
}

func (w *Writer) writeParagraphXML(para *Paragraph) string {
	algn := ""
	if para.alignment != "" {
		algn = fmt.Sprintf(` algn="%s"`, para.alignment)
	}

	var elementsXML strings.Builder
	var lastFont *Font
	for _, elem := range para.elements {
		switch e := elem.(type) {
		case *TextRun:
			elementsXML.WriteString(w.writeTextRunXML(e))
			lastFont = e.font
		case *BreakElement:
			f := e.font
			if f == nil {
				f = lastFont
			}
			elementsXML.WriteString("            <a:br>" + runPropsXML(f, "a:rPr") + "</a:br>\n")
		}
	}

	return fmt.Sprintf(`          <a:p>
            <a:pPr%s/>
%s          </a:p>
`, algn, elementsXML.String())
}

func (w *Writer) writeTextRunXML(tr *TextRun) string {
	return fmt.Sprintf(`            <a:r>
              %s
              <a:t>%s</a:t>
            </a:r>
`, runPropsXML(tr.font, "a:rPr"), xmlEscape(tr.text))
}

// runPropsXML renders character properties. Bold and italic are written only
// when set, so an unset flag inherits from the master text styles.
func runPropsXML(font *Font, tag string) string {
	if font == nil {
		return fmt.Sprintf(`<%s lang="en-US" dirty="0"/>`, tag)
	}
	attrs := ` lang="en-US"`
	if font.Size > 0 {
		attrs += fmt.Sprintf(` sz="%d"`, font.Size*100)
	}
	if font.Bold != nil {
		attrs += ` b="` + boolAttr(*font.Bold) + `"`
	}
	if font.Italic != nil {
		attrs += ` i="` + boolAttr(*font.Italic) + `"`
	}
	attrs += ` dirty="0"`

	var children strings.Builder
	if font.Color.RGB != "" {
		fmt.Fprintf(&children, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, font.Color)
	}
	if font.Name != "" {
		fmt.Fprintf(&children, `<a:latin typeface="%s"/><a:cs typeface="%s"/>`, xmlEscape(font.Name), xmlEscape(font.Name))
	}
	return fmt.Sprintf(`<%s%s>%s</%s>`, tag, attrs, children.String(), tag)
}

func boolAttr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// --- Picture ---

func (w *Writer) writePictureXML(s *Picture, shapeID *int, relID string) string {
	id := *shapeID
	*shapeID++

	name := s.name
	if name == "" {
		name = fmt.Sprintf("Picture %d", id)
	}

	return fmt.Sprintf(`      <p:pic>
        <p:nvPicPr>
          <p:cNvPr id="%d" name="%s" descr="%s"/>
          <p:cNvPicPr>
            <a:picLocks noChangeAspect="1"/>
          </p:cNvPicPr>
          <p:nvPr/>
        </p:nvPicPr>
        <p:blipFill>
          <a:blip r:embed="%s"/>
          <a:stretch>
            <a:fillRect/>
          </a:stretch>
        </p:blipFill>
        <p:spPr>
          <a:xfrm>
            <a:off x="%d" y="%d"/>
            <a:ext cx="%d" cy="%d"/>
          </a:xfrm>
          <a:prstGeom prst="rect">
            <a:avLst/>
          </a:prstGeom>
        </p:spPr>
      </p:pic>
`, id, xmlEscape(name), xmlEscape(s.description),
		relID,
		s.offsetX, s.offsetY, s.width, s.height)
}

// --- Rectangle ---

func (w *Writer) writeRectXML(s *Rect, shapeID *int) string {
	id := *shapeID
	*shapeID++

	name := s.name
	if name == "" {
		name = fmt.Sprintf("Rectangle %d", id)
	}

	lineXML := w.writeBorderXML(s.border)
	if s.border == nil || s.border.Style == BorderNone {
		lineXML = "          <a:ln><a:noFill/></a:ln>\n"
	}

	return fmt.Sprintf(`      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="%s"%s/>
          <p:cNvSpPr/>
          <p:nvPr/>
        </p:nvSpPr>
        <p:spPr>
          <a:xfrm>
            <a:off x="%d" y="%d"/>
            <a:ext cx="%d" cy="%d"/>
          </a:xfrm>
          <a:prstGeom prst="rect">
            <a:avLst/>
          </a:prstGeom>
%s%s        </p:spPr>
      </p:sp>
`, id, xmlEscape(name), descrAttr(s.description),
		s.offsetX, s.offsetY, s.width, s.height,
		w.writeFillXML(s.fill), lineXML)
}

// --- Fill and Border helpers ---

func (w *Writer) writeFillXML(f *Fill) string {
	if f == nil {
		return ""
	}
	switch f.Type {
	case FillSolid:
		return fmt.Sprintf("          <a:solidFill><a:srgbClr val=\"%s\"/></a:solidFill>\n", f.Color)
	case FillGradientLinear:
		return fmt.Sprintf(`          <a:gradFill rotWithShape="1">
            <a:gsLst>
              <a:gs pos="0"><a:srgbClr val="%s"/></a:gs>
              <a:gs pos="100000"><a:srgbClr val="%s"/></a:gs>
            </a:gsLst>
            <a:lin ang="%d" scaled="0"/>
          </a:gradFill>
`, f.Color, f.EndColor, gradientAngle(f.Rotation))
	default:
		return ""
	}
}

// gradientAngle converts a CSS gradient angle (0deg points up, clockwise) into
// a DrawingML lin angle (0 points right, clockwise, 60000ths of a degree).
func gradientAngle(cssDeg int) int {
	deg := ((cssDeg-90)%360 + 360) % 360
	return deg * 60000
}

func (w *Writer) writeBorderXML(b *Border) string {
	if b == nil || b.Style == BorderNone {
		return ""
	}
	return fmt.Sprintf("          <a:ln w=\"%d\"><a:solidFill><a:srgbClr val=\"%s\"/></a:solidFill></a:ln>\n",
		b.Width, b.Color)
}

// --- Media ---

func (w *Writer) writeMedia(zw *zip.Writer) error {
	for _, pic := range w.pictures {
		fw, err := zw.Create("ppt/media/" + w.media[pic])
		if err != nil {
			return fmt.Errorf("failed to create media part: %w", err)
		}
		if _, err := fw.Write(pic.data); err != nil {
			return fmt.Errorf("failed to write media part: %w", err)
		}
	}
	return nil
}

// --- Notes slide ---

func (w *Writer) writeNotesSlide(zw *zip.Writer, slide *Slide, slideNum int) error {
	var paras strings.Builder
	for _, line := range strings.Split(slide.notes, "\n") {
		if line == "" {
			paras.WriteString("          <a:p><a:endParaRPr lang=\"en-US\" dirty=\"0\"/></a:p>\n")
			continue
		}
		fmt.Fprintf(&paras, `          <a:p>
            <a:r>
              <a:rPr lang="en-US" dirty="0"/>
              <a:t>%s</a:t>
            </a:r>
          </a:p>
`, xmlEscape(line))
	}

	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">
  <p:cSld>
    <p:spTree>
%s      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="2" name="Notes Placeholder 1"/>
          <p:cNvSpPr>
            <a:spLocks noGrp="1"/>
          </p:cNvSpPr>
          <p:nvPr>
            <p:ph type="body" idx="1"/>
          </p:nvPr>
        </p:nvSpPr>
        <p:spPr/>
        <p:txBody>
          <a:bodyPr/>
          <a:lstStyle/>
%s        </p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
  <p:clrMapOvr>
    <a:masterClrMapping/>
  </p:clrMapOvr>
</p:notes>`, nsDrawingML, nsOfficeDocRels, nsPresentationML, spTreeHeader, paras.String())

	if err := writeRawXMLToZip(zw, fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", slideNum), content); err != nil {
		return err
	}

	rels := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="%s">
  <Relationship Id="rId1" Type="%s" Target="../notesMasters/notesMaster1.xml"/>
  <Relationship Id="rId2" Type="%s" Target="../slides/slide%d.xml"/>
</Relationships>`, nsRelationships, relTypeNotesMaster, relTypeSlide, slideNum)
	return writeRawXMLToZip(zw, fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", slideNum), rels)
}
