package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// XML namespace constants
const (
	nsRelationships  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsOfficeDocRels  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsDCTerms        = "http://purl.org/dc/terms/"
	nsDC             = "http://purl.org/dc/elements/1.1/"
	nsCoreProperties = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsExtProperties  = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	nsXSI            = "http://www.w3.org/2001/XMLSchema-instance"

	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypePresProps   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps"
	relTypeViewProps   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/viewProps"
	relTypeTableStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/tableStyles"
	relTypeOfficeDoc   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCoreProps   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeExtProps    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeNotesSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relTypeNotesMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"

	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctSlideMaster  = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctSlideLayout  = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctPresProps    = "application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"
	ctViewProps    = "application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"
	ctTableStyles  = "application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"
	ctCoreProps    = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtProps     = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels         = "application/vnd.openxmlformats-package.relationships+xml"
	ctNotesSlide   = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ctNotesMaster  = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"

	// MIMEType is the media type of a .pptx package.
	MIMEType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

func writeXMLToZip(zw *zip.Writer, path string, v interface{}) error {
	fw, err := zw.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s in zip: %w", path, err)
	}
	if _, err := fw.Write([]byte(xml.Header)); err != nil {
		return err
	}
	enc := xml.NewEncoder(fw)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

func writeRawXMLToZip(zw *zip.Writer, path string, content string) error {
	fw, err := zw.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s in zip: %w", path, err)
	}
	_, err = fw.Write([]byte(content))
	return err
}

// --- Content Types ---

type xmlContentTypes struct {
	XMLName   xml.Name      `xml:"Types"`
	Xmlns     string        `xml:"xmlns,attr"`
	Defaults  []xmlDefault  `xml:"Default"`
	Overrides []xmlOverride `xml:"Override"`
}

type xmlDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func (w *Writer) writeContentTypes(zw *zip.Writer) error {
	ct := xmlContentTypes{
		Xmlns: nsContentTypes,
		Defaults: []xmlDefault{
			{Extension: "rels", ContentType: ctRels},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []xmlOverride{
			{PartName: "/ppt/presentation.xml", ContentType: ctPresentation},
			{PartName: "/ppt/presProps.xml", ContentType: ctPresProps},
			{PartName: "/ppt/viewProps.xml", ContentType: ctViewProps},
			{PartName: "/ppt/tableStyles.xml", ContentType: ctTableStyles},
			{PartName: "/ppt/slideMasters/slideMaster1.xml", ContentType: ctSlideMaster},
			{PartName: "/ppt/slideLayouts/slideLayout1.xml", ContentType: ctSlideLayout},
			{PartName: "/ppt/theme/theme1.xml", ContentType: ctTheme},
			{PartName: "/docProps/core.xml", ContentType: ctCoreProps},
			{PartName: "/docProps/app.xml", ContentType: ctExtProps},
		},
	}

	for i, slide := range w.presentation.slides {
		ct.Overrides = append(ct.Overrides, xmlOverride{
			PartName:    fmt.Sprintf("/ppt/slides/slide%d.xml", i+1),
			ContentType: ctSlide,
		})
		if slide.notes != "" {
			ct.Overrides = append(ct.Overrides, xmlOverride{
				PartName:    fmt.Sprintf("/ppt/notesSlides/notesSlide%d.xml", i+1),
				ContentType: ctNotesSlide,
			})
		}
	}

	if w.hasNotes {
		ct.Overrides = append(ct.Overrides,
			xmlOverride{PartName: "/ppt/notesMasters/notesMaster1.xml", ContentType: ctNotesMaster},
			xmlOverride{PartName: "/ppt/theme/theme2.xml", ContentType: ctTheme},
		)
	}

	seen := map[string]bool{}
	for _, pic := range w.pictures {
		ext := imageExtension(pic.mimeType)
		if seen[ext] {
			continue
		}
		seen[ext] = true
		ct.Defaults = append(ct.Defaults, xmlDefault{Extension: ext, ContentType: imageContentType(ext)})
	}

	return writeXMLToZip(zw, "[Content_Types].xml", ct)
}

func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpeg"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	}
	return "png"
}

func imageContentType(ext string) string {
	switch ext {
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	}
	return "image/png"
}

// --- Relationships ---

type xmlRelationships struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Xmlns         string            `xml:"xmlns,attr"`
	Relationships []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

func (w *Writer) writeRootRels(zw *zip.Writer) error {
	rels := xmlRelationships{
		Xmlns: nsRelationships,
		Relationships: []xmlRelationship{
			{ID: "rId1", Type: relTypeOfficeDoc, Target: "ppt/presentation.xml"},
			{ID: "rId2", Type: relTypeCoreProps, Target: "docProps/core.xml"},
			{ID: "rId3", Type: relTypeExtProps, Target: "docProps/app.xml"},
		},
	}
	return writeXMLToZip(zw, "_rels/.rels", rels)
}

// Presentation part relationship layout: rId1 is the master, slides follow
// in order, then the fixed parts.
func slideRelID(slideNum int) string { return fmt.Sprintf("rId%d", slideNum+1) }

func (w *Writer) notesMasterRelID() string {
	return fmt.Sprintf("rId%d", len(w.presentation.slides)+6)
}

func (w *Writer) writePresentationRels(zw *zip.Writer) error {
	rels := xmlRelationships{Xmlns: nsRelationships}
	rels.Relationships = append(rels.Relationships, xmlRelationship{
		ID: "rId1", Type: relTypeSlideMaster, Target: "slideMasters/slideMaster1.xml",
	})
	for i := range w.presentation.slides {
		rels.Relationships = append(rels.Relationships, xmlRelationship{
			ID: slideRelID(i + 1), Type: relTypeSlide, Target: fmt.Sprintf("slides/slide%d.xml", i+1),
		})
	}
	n := len(w.presentation.slides)
	fixed := []struct{ typ, target string }{
		{relTypePresProps, "presProps.xml"},
		{relTypeViewProps, "viewProps.xml"},
		{relTypeTableStyles, "tableStyles.xml"},
		{relTypeTheme, "theme/theme1.xml"},
	}
	for i, f := range fixed {
		rels.Relationships = append(rels.Relationships, xmlRelationship{
			ID: fmt.Sprintf("rId%d", n+2+i), Type: f.typ, Target: f.target,
		})
	}
	if w.hasNotes {
		rels.Relationships = append(rels.Relationships, xmlRelationship{
			ID: w.notesMasterRelID(), Type: relTypeNotesMaster, Target: "notesMasters/notesMaster1.xml",
		})
	}
	return writeXMLToZip(zw, "ppt/_rels/presentation.xml.rels", rels)
}

// --- Document properties ---

func (w *Writer) writeAppProperties(zw *zip.Writer) error {
	props := w.presentation.properties
	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="%s" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">
  <Application>Microsoft Office PowerPoint</Application>
  <PresentationFormat>On-screen Show (16:9)</PresentationFormat>
  <Slides>%d</Slides>
  <Notes>%d</Notes>
  <Company>%s</Company>
  <AppVersion>16.0000</AppVersion>
</Properties>`, nsExtProperties, len(w.presentation.slides), w.notesCount(), xmlEscape(props.Company))
	return writeRawXMLToZip(zw, "docProps/app.xml", content)
}

func (w *Writer) notesCount() int {
	n := 0
	for _, s := range w.presentation.slides {
		if s.notes != "" {
			n++
		}
	}
	return n
}

func (w *Writer) writeCoreProperties(zw *zip.Writer) error {
	props := w.presentation.properties
	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="%s" xmlns:dc="%s" xmlns:dcterms="%s" xmlns:xsi="%s">
  <dc:title>%s</dc:title>
  <dc:subject>%s</dc:subject>
  <dc:creator>%s</dc:creator>
  <dc:description>%s</dc:description>
  <cp:lastModifiedBy>%s</cp:lastModifiedBy>
  <cp:revision>1</cp:revision>
  <dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>
  <dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>
</cp:coreProperties>`,
		nsCoreProperties, nsDC, nsDCTerms, nsXSI,
		xmlEscape(props.Title),
		xmlEscape(props.Subject),
		xmlEscape(props.Creator),
		xmlEscape(props.Description),
		xmlEscape(props.LastModifiedBy),
		props.Created.UTC().Format("2006-01-02T15:04:05Z"),
		props.Modified.UTC().Format("2006-01-02T15:04:05Z"),
	)
	return writeRawXMLToZip(zw, "docProps/core.xml", content)
}

// xmlEscape escapes special XML characters using the standard library.
func xmlEscape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
