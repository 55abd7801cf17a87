package deckexport

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxImageSize limits how much image data is read for one reference.
const maxImageSize = 32 << 20 // 32 MB

// ResolvedImage is a loaded and decoded image reference.
type ResolvedImage struct {
	Data     []byte
	MIMEType string
	Image    image.Image
}

// ImageResolver loads the image an element references.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (*ResolvedImage, error)
}

// Resolver is the default ImageResolver. It understands data: URIs, http(s)
// URLs, file:// URLs and plain file paths (relative to BaseDir).
type Resolver struct {
	Client  *http.Client
	BaseDir string
}

// NewResolver creates a Resolver. A nil client gets a 30 second timeout.
func NewResolver(client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Resolver{Client: client}
}

// Resolve loads and decodes ref. Every failure wraps ErrImageUnresolvable.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*ResolvedImage, error) {
	data, err := r.load(ctx, strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageUnresolvable, err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageUnresolvable, err)
	}
	return img, nil
}

func (r *Resolver) load(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case ref == "":
		return nil, fmt.Errorf("empty image reference")
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return r.fetch(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid file URL: %w", err)
		}
		return readLimited(u.Path)
	}
	path := ref
	if !filepath.IsAbs(path) && r.BaseDir != "" {
		path = filepath.Join(r.BaseDir, path)
	}
	return readLimited(path)
}

func (r *Resolver) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", ref, resp.Status)
	}
	return readAllLimited(resp.Body)
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readAllLimited(f)
}

func readAllLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}
	return data, nil
}

// decodeDataURI decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 payload: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid data URI payload: %w", err)
	}
	return []byte(s), nil
}

func decodeImage(data []byte) (*ResolvedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &ResolvedImage{Data: data, MIMEType: "image/" + format, Image: img}, nil
}

// embeddable returns image bytes in a format office documents accept,
// re-encoding anything else (such as WebP) as PNG.
func (ri *ResolvedImage) embeddable() ([]byte, string, error) {
	switch ri.MIMEType {
	case "image/png", "image/jpeg", "image/gif", "image/bmp":
		return ri.Data, ri.MIMEType, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, ri.Image); err != nil {
		return nil, "", fmt.Errorf("re-encode %s as PNG: %w", ri.MIMEType, err)
	}
	return buf.Bytes(), "image/png", nil
}
