// Package generator turns a generation request into a finished QR image:
// it validates the payload, encodes it in the requested format and, when a
// logo is attached, runs the matching compositor.
package generator

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vincent-petithory/dataurl"

	"github.com/cristianadrielbraun/qrlogo/internal/compositor"
	"github.com/cristianadrielbraun/qrlogo/internal/geometry"
	"github.com/cristianadrielbraun/qrlogo/internal/logger"
	"github.com/cristianadrielbraun/qrlogo/internal/qrgen"
	"github.com/cristianadrielbraun/qrlogo/internal/validate"
)

// Format is the output representation.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatJPG Format = "jpg"
)

// ParseFormat maps a query value to a Format. "jpeg" is accepted for JPG;
// unknown values mean PNG.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "svg":
		return FormatSVG
	case "jpg", "jpeg":
		return FormatJPG
	default:
		return FormatPNG
	}
}

// ColorModeGradient selects the three stop gradient foreground.
const ColorModeGradient = "gradient"

// Defaults applied to empty request fields.
const (
	DefaultSize       = qrgen.DefaultWidth
	DefaultForeground = "#000000"
	DefaultBackground = "#FFFFFF"
)

// ErrSizeOutOfRange is returned for sizes above the configured maximum.
var ErrSizeOutOfRange = errors.New("size out of range")

// Request describes one generation. Logo is an image reference (data URI,
// or URL/path when the loader allows it); empty means no logo.
type Request struct {
	Data       string             `json:"data"`
	InputType  validate.InputType `json:"type,omitempty"`
	Format     Format             `json:"format,omitempty"`
	Size       int                `json:"size,omitempty"`
	Foreground string             `json:"foreground,omitempty"`
	Background string             `json:"background,omitempty"`
	Shape      qrgen.Shape        `json:"shape,omitempty"`
	Logo       string             `json:"logo,omitempty"`
	LogoScale  float64            `json:"logoScale,omitempty"`

	// ColorMode "gradient" paints the modules with the gradient stops
	// instead of Foreground. Empty stops use qrgen.DefaultGradient.
	ColorMode      string `json:"colorMode,omitempty"`
	GradientStart  string `json:"gradientStart,omitempty"`
	GradientMiddle string `json:"gradientMiddle,omitempty"`
	GradientEnd    string `json:"gradientEnd,omitempty"`
}

// Result is a generated QR image. Content holds a PNG or JPEG data URI or an
// SVG document depending on Format.
type Result struct {
	Format  Format
	Content string
	Size    int
}

// ContentType returns the MIME type of the decoded content.
func (r *Result) ContentType() string {
	switch r.Format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJPG:
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// Bytes returns the file contents for download.
func (r *Result) Bytes() ([]byte, error) {
	if r.Format == FormatSVG {
		return []byte(r.Content), nil
	}
	du, err := dataurl.DecodeString(r.Content)
	if err != nil {
		return nil, fmt.Errorf("decode %s data URI: %w", r.Format, err)
	}
	return du.Data, nil
}

// Filename returns the default download name, qr-code-<unix millis>.<format>.
func (r *Result) Filename(now time.Time) string {
	return "qr-code-" + strconv.FormatInt(now.UnixMilli(), 10) + "." + string(r.Format)
}

// Generator wires the encoder and both compositors together.
type Generator struct {
	encoder *qrgen.Encoder
	raster  *compositor.Raster
	maxSize int
	log     *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRaster replaces the raster compositor.
func WithRaster(r *compositor.Raster) Option {
	return func(g *Generator) { g.raster = r }
}

// WithMaxSize caps the requested size.
func WithMaxSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// New returns a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		encoder: qrgen.New(),
		maxSize: 2000,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.raster == nil {
		g.raster = compositor.NewRaster(compositor.WithLogger(g.log))
	}
	return g
}

// Generate produces a fresh image for req. Nothing is cached between calls.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	inputType := req.InputType
	if inputType == "" {
		inputType = validate.InputURL
	}
	payload, err := validate.Input(req.Data, inputType)
	if err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = FormatPNG
	}
	size := req.Size
	if size == 0 {
		size = DefaultSize
	}
	if size < 0 || size > g.maxSize {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrSizeOutOfRange, size, g.maxSize)
	}

	opts := qrgen.Options{
		Width:  size,
		Dark:   validate.ParseColor(orDefault(req.Foreground, DefaultForeground), color.RGBA{0, 0, 0, 255}),
		Light:  validate.ParseColor(orDefault(req.Background, DefaultBackground), color.RGBA{255, 255, 255, 255}),
		Margin: qrgen.DefaultMargin,
		Shape:  req.Shape,
	}
	if strings.EqualFold(strings.TrimSpace(req.ColorMode), ColorModeGradient) {
		def := qrgen.DefaultGradient()
		opts.Gradient = &qrgen.Gradient{
			Start:  validate.ParseColor(req.GradientStart, def.Start),
			Middle: validate.ParseColor(req.GradientMiddle, def.Middle),
			End:    validate.ParseColor(req.GradientEnd, def.End),
		}
	}

	var content string
	switch format {
	case FormatSVG:
		content, err = g.encoder.SVG(payload, opts)
	default:
		content, err = g.encoder.PNG(payload, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("encode QR code: %w", err)
	}

	if req.Logo != "" {
		scale := geometry.ClampScale(req.LogoScale)
		switch format {
		case FormatSVG:
			content, err = compositor.ComposeSVG(content, req.Logo, float64(size), scale)
		default:
			content, err = g.raster.Compose(ctx, content, req.Logo, size, scale)
		}
		if err != nil {
			return nil, err
		}
	}

	if format == FormatJPG {
		content, err = flattenJPEG(content, opts.Light)
		if err != nil {
			return nil, err
		}
	}

	g.log.InfoContext(ctx, "generated QR code",
		slog.String("format", string(format)),
		slog.Int("size", size),
		slog.Bool("logo", req.Logo != ""),
		logger.Duration(time.Since(start)),
	)
	return &Result{Format: format, Content: content, Size: size}, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
