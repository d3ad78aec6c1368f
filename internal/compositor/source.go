package compositor

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxSourceBytes caps how much is read from a single image source.
	DefaultMaxSourceBytes = 10 << 20
	// DefaultSVGRasterSize is used for SVG sources without a usable size hint.
	DefaultSVGRasterSize = 512
)

// Loader turns an image reference into decoded pixels. sizeHint is the square
// edge a vector source should be rasterized at; raster sources ignore it.
type Loader interface {
	Load(ctx context.Context, ref string, sizeHint int) (image.Image, error)
}

// SourceLoader loads data URIs and, when enabled, remote URLs and local files.
type SourceLoader struct {
	client      *http.Client
	allowRemote bool
	allowFiles  bool
	maxBytes    int64
}

// LoaderOption configures a SourceLoader.
type LoaderOption func(*SourceLoader)

// WithRemoteSources enables http and https references. A nil client gets a
// default one with a 10 second timeout.
func WithRemoteSources(client *http.Client) LoaderOption {
	return func(l *SourceLoader) {
		if client == nil {
			client = &http.Client{Timeout: 10 * time.Second}
		}
		l.client = client
		l.allowRemote = true
	}
}

// WithFileSources enables plain paths and file:// references.
func WithFileSources() LoaderOption {
	return func(l *SourceLoader) { l.allowFiles = true }
}

// WithMaxSourceBytes overrides DefaultMaxSourceBytes.
func WithMaxSourceBytes(n int64) LoaderOption {
	return func(l *SourceLoader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// NewLoader returns a loader that accepts data URIs plus whatever the options enable.
func NewLoader(opts ...LoaderOption) *SourceLoader {
	l := &SourceLoader{maxBytes: DefaultMaxSourceBytes}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load implements Loader.
func (l *SourceLoader) Load(ctx context.Context, ref string, sizeHint int) (image.Image, error) {
	data, contentType, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	return DecodeImage(data, contentType, sizeHint)
}

func (l *SourceLoader) read(ctx context.Context, ref string) ([]byte, string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, "", fmt.Errorf("%w: empty reference", ErrUnsupportedSource)
	case strings.HasPrefix(ref, "data:"):
		du, err := dataurl.DecodeString(ref)
		if err != nil {
			return nil, "", fmt.Errorf("decode data URI: %w", err)
		}
		if int64(len(du.Data)) > l.maxBytes {
			return nil, "", fmt.Errorf("data URI exceeds %d bytes", l.maxBytes)
		}
		return du.Data, du.ContentType(), nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if !l.allowRemote {
			return nil, "", fmt.Errorf("%w: remote references are disabled", ErrUnsupportedSource)
		}
		return l.fetch(ctx, ref)
	default:
		if !l.allowFiles {
			return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedSource, ref)
		}
		return l.readFile(strings.TrimPrefix(ref, "file://"))
	}
}

func (l *SourceLoader) fetch(ctx context.Context, ref string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %d", ref, resp.StatusCode)
	}
	data, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (l *SourceLoader) readFile(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open image file: %w", err)
	}
	defer f.Close()

	data, err := l.readLimited(f)
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

func (l *SourceLoader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image source: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("image source exceeds %d bytes", l.maxBytes)
	}
	return data, nil
}

// DecodeImage decodes PNG, JPEG, GIF, WebP or SVG bytes. SVG is detected from
// the content type or by sniffing the leading markup and is rasterized as a
// sizeHint square.
func DecodeImage(data []byte, contentType string, sizeHint int) (image.Image, error) {
	if isSVG(data, contentType) {
		return RasterizeSVG(string(data), sizeHint)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func isSVG(data []byte, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "image/svg") {
		return true
	}
	return mimetype.Detect(data).Is("image/svg+xml") || rootIsSVG(data)
}

// rootIsSVG reports whether the first element of data is <svg>, skipping the
// prolog, comments and a doctype.
func rootIsSVG(data []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	dec.Strict = false
	for {
		tok, err := dec.RawToken()
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return strings.EqualFold(t.Name.Local, "svg")
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return false
			}
		}
	}
}

// EncodeDataURI wraps data in a base64 data URI. An empty contentType is
// sniffed, with SVG markup recognised ahead of the generic text types.
// Media type parameters are dropped.
func EncodeDataURI(data []byte, contentType string) string {
	if contentType == "" {
		if isSVG(data, "") {
			contentType = "image/svg+xml"
		} else {
			contentType = mimetype.Detect(data).String()
		}
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || strings.Count(mt, "/") != 1 {
		mt = "application/octet-stream"
	}
	return dataurl.New(data, mt).String()
}
