package deckexport

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontCache loads TrueType and OpenType fonts from disk for the raster
// renderer. Families that are not installed fall back to common sans-serif
// fonts and finally to the bundled Go fonts, so a face is always available.
// Parsed fonts are shared; faces are not, because a font.Face must not be
// used from more than one goroutine.
type FontCache struct {
	mu      sync.RWMutex
	dirs    []string
	fonts   map[string]*opentype.Font // lowercase name -> parsed font
	scanned bool
}

// NewFontCache creates a FontCache that searches the OS font directories
// plus extraDirs. Directories are scanned lazily on first use.
func NewFontCache(extraDirs ...string) *FontCache {
	return &FontCache{
		dirs:  append(systemFontDirs(), extraDirs...),
		fonts: make(map[string]*opentype.Font),
	}
}

// fallbackFamilies are tried, in order, when no authored family is installed.
var fallbackFamilies = []string{"arial", "helvetica", "liberation sans", "dejavu sans", "noto sans"}

// NewFace returns a new face for a CSS font-family list at a pixel size.
// The size is in device pixels, so faces are created at 72 DPI.
func (fc *FontCache) NewFace(family string, sizePx float64, bold, italic bool) (font.Face, error) {
	fc.ensureScanned()
	return opentype.NewFace(fc.lookup(family, bold, italic), &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// lookup walks the family list, then its office mapping, then the
// fallbacks. It never returns nil.
func (fc *FontCache) lookup(family string, bold, italic bool) *opentype.Font {
	var names []string
	for _, part := range strings.Split(family, ",") {
		if n := strings.ToLower(strings.Trim(strings.TrimSpace(part), `"'`)); n != "" {
			names = append(names, n)
		}
	}
	names = append(names, strings.ToLower(MapFont(family)))
	names = append(names, fallbackFamilies...)

	fc.mu.RLock()
	for _, n := range names {
		if f := fc.styled(n, bold, italic); f != nil {
			fc.mu.RUnlock()
			return f
		}
	}
	fc.mu.RUnlock()

	if MapFont(family) == "Courier New" {
		return goFont("go mono", gomono.TTF)
	}
	switch {
	case bold && italic:
		return goFont("go bold italic", gobolditalic.TTF)
	case bold:
		return goFont("go bold", gobold.TTF)
	case italic:
		return goFont("go italic", goitalic.TTF)
	}
	return goFont("go regular", goregular.TTF)
}

var styleSuffixes = struct{ boldItalic, bold, italic []string }{
	boldItalic: []string{" bold italic", "bi", " bolditalic", "z"},
	bold:       []string{" bold", "bd", "b"},
	italic:     []string{" italic", "i", " it"},
}

// styled finds a font by lowercase name, preferring style variants.
// Windows names them "arialbd", "arialbi" and so on. Caller holds mu.
func (fc *FontCache) styled(name string, bold, italic bool) *opentype.Font {
	var suffixes []string
	switch {
	case bold && italic:
		suffixes = styleSuffixes.boldItalic
	case bold:
		suffixes = styleSuffixes.bold
	case italic:
		suffixes = styleSuffixes.italic
	}
	for _, s := range suffixes {
		if f, ok := fc.fonts[name+s]; ok {
			return f
		}
	}
	return fc.fonts[name]
}

var (
	goFontsMu sync.Mutex
	goFonts   = map[string]*opentype.Font{}
)

// goFont parses a bundled Go font once.
func goFont(name string, ttf []byte) *opentype.Font {
	goFontsMu.Lock()
	defer goFontsMu.Unlock()
	if f, ok := goFonts[name]; ok {
		return f
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("bundled font %s is corrupt: %v", name, err))
	}
	goFonts[name] = f
	return f
}

// LoadFont registers a font file under name. Files larger than
// maxFontFileSize are rejected.
func (fc *FontCache) LoadFont(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > maxFontFileSize {
		return fmt.Errorf("font file too large: %d bytes (max %d)", info.Size(), maxFontFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return fc.LoadFontData(name, data)
}

// LoadFontData registers a font from raw bytes under name and under its
// internal family name.
func (fc *FontCache) LoadFontData(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font %q: %w", name, err)
	}
	fc.mu.Lock()
	fc.fonts[strings.ToLower(name)] = f
	fc.registerByFamilyName(f)
	fc.mu.Unlock()
	return nil
}

func (fc *FontCache) ensureScanned() {
	fc.mu.RLock()
	scanned := fc.scanned
	fc.mu.RUnlock()
	if scanned {
		return
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.scanned {
		return
	}
	fc.scanned = true
	for _, dir := range fc.dirs {
		fc.scanDir(dir, 0)
	}
}

const (
	maxFontScanDepth = 3
	maxFontFileSize  = 20 << 20
)

func (fc *FontCache) scanDir(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			fc.scanDir(filepath.Join(dir, entry.Name()), depth+1)
			continue
		}
		lower := strings.ToLower(entry.Name())
		ext := filepath.Ext(lower)
		if ext != ".ttf" && ext != ".otf" && ext != ".ttc" && ext != ".otc" {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		base := strings.TrimSuffix(lower, ext)
		if ext == ".ttc" || ext == ".otc" {
			fc.loadCollection(data, base)
		} else if f, err := opentype.Parse(data); err == nil {
			fc.fonts[base] = f
			fc.registerByFamilyName(f)
		}
	}
}

// loadCollection registers every font of a collection by family name and
// the first one by file name too.
func (fc *FontCache) loadCollection(data []byte, base string) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return
	}
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			continue
		}
		if i == 0 {
			fc.fonts[base] = f
		}
		fc.registerByFamilyName(f)
	}
}

// registerByFamilyName indexes f by its full name and, unless a regular
// variant already holds it, by its family name. Every style of a family
// shares the family name. Caller holds mu.
func (fc *FontCache) registerByFamilyName(f *opentype.Font) {
	if n, err := f.Name(nil, sfnt.NameIDFull); err == nil && n != "" {
		fc.fonts[strings.ToLower(n)] = f
	}
	n, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil || n == "" {
		return
	}
	key := strings.ToLower(n)
	if _, taken := fc.fonts[key]; !taken || isRegular(f) {
		fc.fonts[key] = f
	}
}

func isRegular(f *opentype.Font) bool {
	sub, err := f.Name(nil, sfnt.NameIDSubfamily)
	if err != nil {
		return false
	}
	switch strings.ToLower(sub) {
	case "regular", "normal", "book", "roman":
		return true
	}
	return false
}

func systemFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}
