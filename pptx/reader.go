package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// maxZipEntrySize is the maximum allowed size for a single file extracted from a ZIP.
const maxZipEntrySize = 50 << 20 // 50 MB

// maxZipTotalSize is the size limit for a whole package.
const maxZipTotalSize = 200 << 20 // 200 MB

// maxZipEntries is the maximum number of files allowed in a ZIP archive.
const maxZipEntries = 10000

// Open reads a presentation from a file path.
func Open(path string) (*Presentation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return Read(f, info.Size())
}

// ReadBytes reads a presentation from an in-memory package.
func ReadBytes(data []byte) (*Presentation, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read reads a presentation from an io.ReaderAt. Only the parts this package
// writes are interpreted; anything else is ignored.
func Read(reader io.ReaderAt, size int64) (*Presentation, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid reader size: %d", size)
	}
	if size > int64(maxZipTotalSize) {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", size, maxZipTotalSize)
	}

	zr, err := zip.NewReader(reader, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	if len(zr.File) > maxZipEntries {
		return nil, fmt.Errorf("zip archive contains too many entries (%d > %d)", len(zr.File), maxZipEntries)
	}

	r := &packageReader{files: zipIndex(zr)}
	pres := New()

	// missing properties are acceptable
	props := NewDocumentProperties()
	_ = r.readProperties(props)
	pres.SetDocumentProperties(props)

	slideTargets, err := r.readPresentation(pres)
	if err != nil {
		return nil, err
	}
	for _, target := range slideTargets {
		slide, err := r.readSlide(target)
		if err != nil {
			return nil, fmt.Errorf("failed to read slide %s: %w", target, err)
		}
		pres.slides = append(pres.slides, slide)
	}
	return pres, nil
}

type packageReader struct {
	files map[string]*zip.File
}

// zipIndex builds a map from file name to *zip.File for O(1) lookups.
func zipIndex(zr *zip.Reader) map[string]*zip.File {
	m := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		m[f.Name] = f
	}
	return m
}

func (r *packageReader) readFile(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("file not found in zip: %s", name)
	}
	if f.UncompressedSize64 > maxZipEntrySize {
		return nil, fmt.Errorf("file %s exceeds maximum allowed size (%d bytes)", name, maxZipEntrySize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in zip: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, int64(maxZipEntrySize)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from zip: %w", name, err)
	}
	if int64(len(data)) > int64(maxZipEntrySize) {
		return nil, fmt.Errorf("file %s actual size exceeds maximum allowed size", name)
	}
	return data, nil
}

func (r *packageReader) decode(name string, v interface{}) error {
	data, err := r.readFile(name)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// --- Relationships ---

type xmlRelsForRead struct {
	Relationships []xmlRelationship `xml:"Relationship"`
}

// readRelationships returns relationship ID -> package path for the part at partPath.
func (r *packageReader) readRelationships(partPath string) (map[string]xmlRelationship, error) {
	relsPath := path.Join(path.Dir(partPath), "_rels", path.Base(partPath)+".rels")
	var rels xmlRelsForRead
	if err := r.decode(relsPath, &rels); err != nil {
		return nil, err
	}
	m := make(map[string]xmlRelationship, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		rel.Target = path.Join(path.Dir(partPath), rel.Target)
		m[rel.ID] = rel
	}
	return m, nil
}

// --- Properties and presentation ---

type xmlCoreForRead struct {
	Title          string `xml:"title"`
	Subject        string `xml:"subject"`
	Creator        string `xml:"creator"`
	Description    string `xml:"description"`
	LastModifiedBy string `xml:"lastModifiedBy"`
}

type xmlAppForRead struct {
	Company string `xml:"Company"`
}

func (r *packageReader) readProperties(props *DocumentProperties) error {
	var core xmlCoreForRead
	if err := r.decode("docProps/core.xml", &core); err != nil {
		return err
	}
	props.Title = core.Title
	props.Subject = core.Subject
	props.Creator = core.Creator
	props.Description = core.Description
	props.LastModifiedBy = core.LastModifiedBy

	var app xmlAppForRead
	if err := r.decode("docProps/app.xml", &app); err != nil {
		return err
	}
	props.Company = app.Company
	return nil
}

type xmlPresentationForRead struct {
	SldIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
	SldSz struct {
		CX   int64  `xml:"cx,attr"`
		CY   int64  `xml:"cy,attr"`
		Type string `xml:"type,attr"`
	} `xml:"sldSz"`
}

func (r *packageReader) readPresentation(pres *Presentation) ([]string, error) {
	const presPath = "ppt/presentation.xml"
	var xp xmlPresentationForRead
	if err := r.decode(presPath, &xp); err != nil {
		return nil, err
	}
	pres.SetLayout(&DocumentLayout{Name: xp.SldSz.Type, CX: xp.SldSz.CX, CY: xp.SldSz.CY})

	rels, err := r.readRelationships(presPath)
	if err != nil {
		return nil, err
	}
	targets := make([]string, 0, len(xp.SldIDs))
	for _, id := range xp.SldIDs {
		if rel, ok := rels[id.RID]; ok {
			targets = append(targets, rel.Target)
		}
	}
	return targets, nil
}

// --- Slides ---

type xmlSolidFillForRead struct {
	SrgbClr struct {
		Val string `xml:"val,attr"`
	} `xml:"srgbClr"`
}

type xmlSpPrForRead struct {
	Xfrm struct {
		Off struct {
			X int64 `xml:"x,attr"`
			Y int64 `xml:"y,attr"`
		} `xml:"off"`
		Ext struct {
			CX int64 `xml:"cx,attr"`
			CY int64 `xml:"cy,attr"`
		} `xml:"ext"`
	} `xml:"xfrm"`
	SolidFill *xmlSolidFillForRead `xml:"solidFill"`
	GradFill  *struct {
		Stops []struct {
			Pos   int `xml:"pos,attr"`
			Color struct {
				Val string `xml:"val,attr"`
			} `xml:"srgbClr"`
		} `xml:"gsLst>gs"`
		Lin struct {
			Ang int `xml:"ang,attr"`
		} `xml:"lin"`
	} `xml:"gradFill"`
	Ln *struct {
		W         int64                `xml:"w,attr"`
		NoFill    *struct{}            `xml:"noFill"`
		SolidFill *xmlSolidFillForRead `xml:"solidFill"`
	} `xml:"ln"`
}

type xmlRPrForRead struct {
	Sz        int                  `xml:"sz,attr"`
	B         string               `xml:"b,attr"`
	I         string               `xml:"i,attr"`
	SolidFill *xmlSolidFillForRead `xml:"solidFill"`
	Latin     struct {
		Typeface string `xml:"typeface,attr"`
	} `xml:"latin"`
}

type xmlParaChildForRead struct {
	XMLName xml.Name
	RPr     *xmlRPrForRead `xml:"rPr"`
	T       string         `xml:"t"`
}

type xmlParaForRead struct {
	PPr struct {
		Algn string `xml:"algn,attr"`
	} `xml:"pPr"`
	Children []xmlParaChildForRead `xml:",any"`
}

type xmlCNvPrForRead struct {
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"`
}

type xmlShapeForRead struct {
	XMLName xml.Name
	NvSpPr  *struct {
		CNvPr xmlCNvPrForRead `xml:"cNvPr"`
	} `xml:"nvSpPr"`
	NvPicPr *struct {
		CNvPr xmlCNvPrForRead `xml:"cNvPr"`
	} `xml:"nvPicPr"`
	SpPr   xmlSpPrForRead `xml:"spPr"`
	TxBody *struct {
		BodyPr struct {
			Wrap string `xml:"wrap,attr"`
		} `xml:"bodyPr"`
		Paras []xmlParaForRead `xml:"p"`
	} `xml:"txBody"`
	BlipFill *struct {
		Blip struct {
			Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
		} `xml:"blip"`
	} `xml:"blipFill"`
}

type xmlSlideForRead struct {
	CSld struct {
		Bg *struct {
			BgPr *struct {
				SolidFill *xmlSolidFillForRead `xml:"solidFill"`
			} `xml:"bgPr"`
		} `xml:"bg"`
		SpTree struct {
			Shapes []xmlShapeForRead `xml:",any"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

func (r *packageReader) readSlide(target string) (*Slide, error) {
	var xs xmlSlideForRead
	if err := r.decode(target, &xs); err != nil {
		return nil, err
	}
	rels, err := r.readRelationships(target)
	if err != nil {
		return nil, err
	}

	slide := &Slide{}
	if bg := xs.CSld.Bg; bg != nil && bg.BgPr != nil && bg.BgPr.SolidFill != nil {
		slide.background = NewFill().SetSolid(NewColor(bg.BgPr.SolidFill.SrgbClr.Val))
	}

	for _, xsh := range xs.CSld.SpTree.Shapes {
		switch xsh.XMLName.Local {
		case "sp":
			slide.shapes = append(slide.shapes, readSp(xsh))
		case "pic":
			pic := &Picture{}
			readBase(&pic.BaseShape, xsh)
			if xsh.BlipFill != nil {
				if rel, ok := rels[xsh.BlipFill.Blip.Embed]; ok && rel.Type == relTypeImage {
					if data, err := r.readFile(rel.Target); err == nil {
						pic.SetImageData(data, imageContentType(strings.TrimPrefix(path.Ext(rel.Target), ".")))
					}
				}
			}
			slide.shapes = append(slide.shapes, pic)
		}
	}

	for _, rel := range rels {
		if rel.Type == relTypeNotesSlide {
			slide.notes = r.readNotes(rel.Target)
		}
	}
	return slide, nil
}

func readBase(b *BaseShape, xsh xmlShapeForRead) {
	switch {
	case xsh.NvSpPr != nil:
		b.SetName(xsh.NvSpPr.CNvPr.Name)
		b.SetDescription(xsh.NvSpPr.CNvPr.Descr)
	case xsh.NvPicPr != nil:
		b.SetName(xsh.NvPicPr.CNvPr.Name)
		b.SetDescription(xsh.NvPicPr.CNvPr.Descr)
	}
	x := xsh.SpPr.Xfrm
	b.SetPosition(x.Off.X, x.Off.Y)
	b.SetSize(x.Ext.CX, x.Ext.CY)

	switch {
	case xsh.SpPr.SolidFill != nil:
		b.SetFill(NewFill().SetSolid(NewColor(xsh.SpPr.SolidFill.SrgbClr.Val)))
	case xsh.SpPr.GradFill != nil && len(xsh.SpPr.GradFill.Stops) >= 2:
		g := xsh.SpPr.GradFill
		first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
		b.SetFill(&Fill{
			Type:     FillGradientLinear,
			Color:    NewColor(first.Color.Val),
			EndColor: NewColor(last.Color.Val),
			Rotation: (g.Lin.Ang/60000 + 90) % 360,
		})
	}

	if ln := xsh.SpPr.Ln; ln != nil && ln.NoFill == nil && ln.SolidFill != nil {
		b.SetBorder(NewBorder().SetSolid(NewColor(ln.SolidFill.SrgbClr.Val), ln.W))
	}
}

func readSp(xsh xmlShapeForRead) Shape {
	if xsh.TxBody == nil {
		rect := &Rect{}
		readBase(&rect.BaseShape, xsh)
		return rect
	}
	tb := &TextBox{wordWrap: xsh.TxBody.BodyPr.Wrap != "none"}
	readBase(&tb.BaseShape, xsh)
	for _, xp := range xsh.TxBody.Paras {
		para := tb.CreateParagraph()
		if xp.PPr.Algn != "" {
			para.alignment = HorizontalAlignment(xp.PPr.Algn)
		}
		for _, child := range xp.Children {
			switch child.XMLName.Local {
			case "r":
				para.CreateTextRun(child.T).SetFont(readFont(child.RPr))
			case "br":
				if br := para.CreateBreak(); child.RPr != nil {
					br.SetFont(readFont(child.RPr))
				}
			}
		}
	}
	return tb
}

func readFont(rpr *xmlRPrForRead) *Font {
	f := &Font{}
	if rpr == nil {
		return f
	}
	f.Size = rpr.Sz / 100
	f.Name = rpr.Latin.Typeface
	if rpr.SolidFill != nil {
		f.Color = NewColor(rpr.SolidFill.SrgbClr.Val)
	}
	if rpr.B != "" {
		f.SetBold(rpr.B == "1" || rpr.B == "true")
	}
	if rpr.I != "" {
		f.SetItalic(rpr.I == "1" || rpr.I == "true")
	}
	return f
}

// readNotes returns the text of the notes body placeholder, one line per paragraph.
func (r *packageReader) readNotes(target string) string {
	var xs xmlSlideForRead
	if err := r.decode(target, &xs); err != nil {
		return ""
	}
	var lines []string
	for _, xsh := range xs.CSld.SpTree.Shapes {
		if xsh.XMLName.Local != "sp" || xsh.TxBody == nil {
			continue
		}
		for _, xp := range xsh.TxBody.Paras {
			var b strings.Builder
			for _, child := range xp.Children {
				if child.XMLName.Local == "r" {
					b.WriteString(child.T)
				}
			}
			lines = append(lines, b.String())
		}
	}
	return strings.Join(lines, "\n")
}
