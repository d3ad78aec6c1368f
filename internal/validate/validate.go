// Package validate checks and normalizes user supplied QR content, colours and
// logo uploads before anything is encoded.
package validate

import (
	"errors"
	"fmt"
	"image/color"
	"net/url"
	"strconv"
	"strings"
)

// InputType says how the QR payload should be interpreted.
type InputType string

const (
	InputURL  InputType = "url"
	InputText InputType = "text"
)

const (
	// MaxURLLength caps normalized URLs.
	MaxURLLength = 4096
	// MaxLogoBytes is the default upload limit for logos (5 MiB).
	MaxLogoBytes = 5 << 20
)

var (
	// ErrInvalidInput is wrapped by every payload validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidLogo is wrapped by every logo validation failure.
	ErrInvalidLogo = errors.New("invalid logo")
)

// AllowedLogoTypes lists the accepted logo content types.
var AllowedLogoTypes = []string{"image/png", "image/jpeg", "image/jpg", "image/svg+xml"}

// ParseInputType maps a query value to an InputType, defaulting to URL.
func ParseInputType(s string) InputType {
	if strings.EqualFold(strings.TrimSpace(s), string(InputText)) {
		return InputText
	}
	return InputURL
}

// Input validates data for the given input type and returns the payload to
// encode. URLs are normalized, text is passed through untouched.
func Input(data string, typ InputType) (string, error) {
	if strings.TrimSpace(data) == "" {
		if typ == InputText {
			return "", fmt.Errorf("%w: enter some text", ErrInvalidInput)
		}
		return "", fmt.Errorf("%w: enter a valid URL", ErrInvalidInput)
	}
	if typ == InputText {
		return data, nil
	}
	normalized, err := NormalizeURL(data)
	if err != nil {
		return "", fmt.Errorf("%w: enter a valid URL: %v", ErrInvalidInput, err)
	}
	return normalized, nil
}

// NormalizeURL validates and normalizes a URL string for QR generation.
// It ensures an http/https scheme and a plausible hostname, and returns a
// cleaned absolute URL. A missing scheme defaults to https, and only then
// must the host look like a domain name.
func NormalizeURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", errors.New("URL is required")
	}
	if len(v) > MaxURLLength {
		return "", errors.New("URL is too long")
	}
	prefixed := !strings.Contains(v, "://")
	if prefixed {
		v = "https://" + v
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("only http and https URLs are supported")
	}
	host := u.Hostname()
	if host == "" {
		return "", errors.New("URL must include a valid host")
	}
	if prefixed && !strings.Contains(host, ".") && host != "localhost" && !strings.Contains(host, ":") {
		return "", fmt.Errorf("host %q is not a domain name", host)
	}
	return u.String(), nil
}

// Logo validates an uploaded logo's content type and size. max <= 0 means
// MaxLogoBytes.
func Logo(contentType string, size, max int64) error {
	if max <= 0 {
		max = MaxLogoBytes
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	allowed := false
	for _, t := range AllowedLogoTypes {
		if ct == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: only PNG, JPG and SVG files can be uploaded", ErrInvalidLogo)
	}
	if size > max {
		return fmt.Errorf("%w: file must be %s or smaller", ErrInvalidLogo, byteSize(max))
	}
	return nil
}

func byteSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return strconv.FormatInt(n>>20, 10) + " MB"
	case n >= 1<<10 && n%(1<<10) == 0:
		return strconv.FormatInt(n>>10, 10) + " KB"
	default:
		return strconv.FormatInt(n, 10) + " bytes"
	}
}

// ParseColor parses "#rrggbb", "rrggbb", "#rgb" or "transparent". Anything
// else yields defaultColor.
func ParseColor(param string, defaultColor color.RGBA) color.RGBA {
	param = strings.TrimSpace(param)
	if param == "" {
		return defaultColor
	}
	if strings.EqualFold(param, "transparent") {
		return color.RGBA{0, 0, 0, 0}
	}

	param = strings.TrimPrefix(param, "#")
	if len(param) == 3 {
		param = string([]byte{param[0], param[0], param[1], param[1], param[2], param[2]})
	}
	if len(param) != 6 {
		return defaultColor
	}

	r, err1 := strconv.ParseUint(param[0:2], 16, 8)
	g, err2 := strconv.ParseUint(param[2:4], 16, 8)
	b, err3 := strconv.ParseUint(param[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return defaultColor
	}
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}

// HexColor formats c as "#rrggbb". Alpha is dropped.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
