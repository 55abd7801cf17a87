package pptx

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func buildSample(t *testing.T) *Presentation {
	t.Helper()
	p := New()
	props := p.GetDocumentProperties()
	props.Title = "Quarterly <Review>"
	props.Creator = "Ada"
	props.Company = "Acme"
	props.Subject = "Numbers"

	s1 := p.CreateSlide()
	s1.SetBackground(NewFill().SetSolid(NewColor("#112233")))
	tb := s1.CreateTextBox()
	tb.SetPosition(Inch(0.625), Inch(0.625))
	tb.SetSize(Inch(8.75), Inch(1))
	para := tb.GetActiveParagraph()
	para.SetAlignment(HorizontalCenter)
	run := para.CreateTextRun("Hello & welcome")
	run.GetFont().SetSize(43).SetBold(true).SetColor(NewColor("ff0000")).SetName("Arial")
	para.CreateBreak()
	para.CreateTextRun("second line")

	pic := s1.CreatePicture()
	pic.SetPosition(Inch(1), Inch(2))
	pic.SetSize(Inch(2), Inch(2))
	pic.SetImageData(tinyPNG(t), "image/png")

	rect := s1.CreateRect()
	rect.SetPosition(Inch(4), Inch(2))
	rect.SetSize(Inch(1), Inch(1))
	rect.GetFill().SetSolid(NewColor("CCCCCC"))
	rect.GetBorder().SetSolid(ColorBlack, Point(1))
	s1.SetNotes("first line\nsecond line")

	s2 := p.CreateSlide()
	bg := s2.CreateRect()
	bg.SetSize(p.GetLayout().CX, p.GetLayout().CY)
	bg.GetFill().SetGradientLinear(NewColor("1E293B"), NewColor("1E3A8A"), 135)
	return p
}

func TestWriteReadRoundTrip(t *testing.T) {
	p := buildSample(t)
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var buf bytes.Buffer
	n, err := NewWriter(p).WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo reported %d bytes, buffer has %d", n, buf.Len())
	}

	got, err := ReadBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}

	props := got.GetDocumentProperties()
	if props.Title != "Quarterly <Review>" || props.Creator != "Ada" || props.Company != "Acme" || props.Subject != "Numbers" {
		t.Errorf("unexpected properties: %+v", props)
	}
	if got.GetLayout().CX != 9144000 || got.GetLayout().CY != 5143500 {
		t.Errorf("unexpected layout: %+v", got.GetLayout())
	}
	if got.GetSlideCount() != 2 {
		t.Fatalf("expected 2 slides, got %d", got.GetSlideCount())
	}

	s1, _ := got.GetSlide(0)
	if bg := s1.GetBackground(); bg == nil || bg.Color.RGB != "112233" {
		t.Errorf("expected flat background 112233, got %+v", bg)
	}
	if s1.GetNotes() != "first line\nsecond line" {
		t.Errorf("unexpected notes %q", s1.GetNotes())
	}

	shapes := s1.GetShapes()
	if len(shapes) != 3 {
		t.Fatalf("expected 3 shapes, got %d", len(shapes))
	}
	wantTypes := []ShapeType{ShapeTypeTextBox, ShapeTypePicture, ShapeTypeRect}
	for i, sh := range shapes {
		if sh.GetType() != wantTypes[i] {
			t.Errorf("shape %d: expected %v, got %v", i, wantTypes[i], sh.GetType())
		}
	}

	tb := shapes[0].(*TextBox)
	if tb.GetText() != "Hello & welcome\nsecond line" {
		t.Errorf("unexpected text %q", tb.GetText())
	}
	if tb.GetOffsetX() != Inch(0.625) || tb.GetWidth() != Inch(8.75) {
		t.Errorf("unexpected geometry x=%d w=%d", tb.GetOffsetX(), tb.GetWidth())
	}
	para := tb.GetParagraphs()[0]
	if para.GetAlignment() != HorizontalCenter {
		t.Errorf("expected centered paragraph, got %q", para.GetAlignment())
	}
	font := para.GetElements()[0].(*TextRun).GetFont()
	if font.Size != 43 || font.Name != "Arial" || font.Color.RGB != "FF0000" {
		t.Errorf("unexpected font %+v", font)
	}
	if font.Bold == nil || !*font.Bold {
		t.Error("expected explicit bold")
	}
	if font.Italic != nil {
		t.Error("italic should be inherited, not written")
	}

	pic := shapes[1].(*Picture)
	if pic.GetMimeType() != "image/png" || len(pic.GetImageData()) == 0 {
		t.Errorf("picture data not restored: %q, %d bytes", pic.GetMimeType(), len(pic.GetImageData()))
	}

	rect := shapes[2].(*Rect)
	if rect.GetFill().Type != FillSolid || rect.GetFill().Color.RGB != "CCCCCC" {
		t.Errorf("unexpected rect fill %+v", rect.GetFill())
	}
	if rect.GetBorder().Style != BorderSolid || rect.GetBorder().Width != 12700 {
		t.Errorf("unexpected rect border %+v", rect.GetBorder())
	}

	s2, _ := got.GetSlide(1)
	if s2.GetBackground() != nil {
		t.Error("gradient slide must not carry a native background")
	}
	bg := s2.GetShapes()[0].(*Rect)
	fill := bg.GetFill()
	if fill.Type != FillGradientLinear || fill.Color.RGB != "1E293B" || fill.EndColor.RGB != "1E3A8A" || fill.Rotation != 135 {
		t.Errorf("unexpected gradient fill %+v", fill)
	}
	if bg.GetBorder().Style != BorderNone {
		t.Errorf("gradient rect must be borderless, got %+v", bg.GetBorder())
	}
}

func TestWriteNotesMasterOnlyWhenNeeded(t *testing.T) {
	p := New()
	p.CreateSlide()

	var buf bytes.Buffer
	if _, err := NewWriter(p).WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	names := zipNames(t, buf.Bytes())
	if names["ppt/notesMasters/notesMaster1.xml"] {
		t.Error("notes master written for a deck without notes")
	}
	for _, want := range []string{
		"[Content_Types].xml", "ppt/presentation.xml", "ppt/slides/slide1.xml",
		"ppt/slideMasters/slideMaster1.xml", "ppt/slideLayouts/slideLayout1.xml", "ppt/theme/theme1.xml",
	} {
		if !names[want] {
			t.Errorf("missing part %s", want)
		}
	}

	p.GetAllSlides()[0].SetNotes("speaker")
	buf.Reset()
	if _, err := NewWriter(p).WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	names = zipNames(t, buf.Bytes())
	for _, want := range []string{"ppt/notesMasters/notesMaster1.xml", "ppt/theme/theme2.xml", "ppt/notesSlides/notesSlide1.xml"} {
		if !names[want] {
			t.Errorf("missing part %s", want)
		}
	}
}

func TestWriteEmptyPresentation(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewWriter(New()).WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := ReadBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if got.GetSlideCount() != 0 {
		t.Errorf("expected 0 slides, got %d", got.GetSlideCount())
	}
}

func TestSaveAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "deck.pptx")
	if err := NewWriter(buildSample(t)).Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.GetSlideCount() != 2 {
		t.Errorf("expected 2 slides, got %d", got.GetSlideCount())
	}
}

func TestSlideXMLDrawOrder(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewWriter(buildSample(t)).WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	xmlText := readPart(t, buf.Bytes(), "ppt/slides/slide1.xml")
	txt := strings.Index(xmlText, `txBox="1"`)
	pic := strings.Index(xmlText, "<p:pic>")
	rect := strings.Index(xmlText, `name="Rectangle`)
	if !(txt >= 0 && txt < pic && pic < rect) {
		t.Errorf("shapes out of order: text=%d pic=%d rect=%d", txt, pic, rect)
	}
	if !strings.Contains(xmlText, "<a:br>") {
		t.Error("expected a native line break")
	}
}

func TestBreakFont(t *testing.T) {
	p := New()
	para := p.CreateSlide().CreateTextBox().GetActiveParagraph()
	font := NewFont().SetSize(30).SetName("Georgia")
	para.CreateBreak().SetFont(font)
	para.CreateTextRun("after").SetFont(font)

	var buf bytes.Buffer
	if _, err := NewWriter(p).WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	xmlText := readPart(t, buf.Bytes(), "ppt/slides/slide1.xml")
	if !strings.Contains(xmlText, `<a:br><a:rPr lang="en-US" sz="3000"`) {
		t.Errorf("leading break lacks the font size:\n%s", xmlText)
	}

	got, err := ReadBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	s, _ := got.GetSlide(0)
	br := s.GetShapes()[0].(*TextBox).GetParagraphs()[0].GetElements()[0].(*BreakElement)
	if f := br.GetFont(); f == nil || f.Size != 30 || f.Name != "Georgia" {
		t.Errorf("break font = %+v", f)
	}
}

func TestValidateRejectsBadShapes(t *testing.T) {
	p := New()
	s := p.CreateSlide()
	s.CreatePicture().SetImageData(nil, "image/webp")
	s.CreateRect().SetSize(-1, 10)

	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"no image data", "unsupported image MIME type", "width is negative"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestNewColor(t *testing.T) {
	cases := map[string]string{
		"#ff8800":  "FF8800",
		"FFFF8800": "FF8800",
		"nope":     "000000",
		"":         "000000",
	}
	for in, want := range cases {
		if got := NewColor(in).RGB; got != want {
			t.Errorf("NewColor(%q) = %q, want %q", in, got, want)
		}
	}
}

func zipNames(t *testing.T, data []byte) map[string]bool {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}
