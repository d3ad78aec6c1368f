// Package qrgen encodes text into QR codes rendered as PNG data URIs or SVG
// documents. It is the base layer the compositor draws logos onto.
package qrgen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"github.com/yeqown/go-qrcode/writer/standard/shapes"
)

// Shape selects how individual modules are drawn.
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeCircle    Shape = "circle"
	ShapeLiquid    Shape = "liquid"
	ShapeChain     Shape = "chain"
	ShapeHStripe   Shape = "hstripe"
	ShapeVStripe   Shape = "vstripe"
)

// stripeRatio is the share of a module the stripe shapes fill across
// their run direction.
const stripeRatio = 0.85

const (
	DefaultWidth  = 300
	DefaultMargin = 1
	// MaxWidth bounds the rendered edge length.
	MaxWidth = 4096
)

// ParseShape maps a query value to a Shape, defaulting to rectangle.
func ParseShape(s string) Shape {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case ShapeCircle:
		return ShapeCircle
	case ShapeLiquid:
		return ShapeLiquid
	case ShapeChain:
		return ShapeChain
	case ShapeHStripe:
		return ShapeHStripe
	case ShapeVStripe:
		return ShapeVStripe
	default:
		return ShapeRectangle
	}
}

// Gradient is a three stop foreground running diagonally from the top left
// corner to the bottom right one.
type Gradient struct {
	Start  color.RGBA
	Middle color.RGBA
	End    color.RGBA
}

// DefaultGradient runs from black through grey to red.
func DefaultGradient() Gradient {
	return Gradient{
		Start:  color.RGBA{0, 0, 0, 255},
		Middle: color.RGBA{128, 128, 128, 255},
		End:    color.RGBA{255, 0, 0, 255},
	}
}

// Options control rendering. Margin is the quiet zone in modules. A non-nil
// Gradient replaces Dark for the modules.
type Options struct {
	Width    int
	Dark     color.RGBA
	Light    color.RGBA
	Margin   int
	Shape    Shape
	Gradient *Gradient
}

// DefaultOptions renders black modules on white with a one module margin.
func DefaultOptions() Options {
	return Options{
		Width:  DefaultWidth,
		Dark:   color.RGBA{0, 0, 0, 255},
		Light:  color.RGBA{255, 255, 255, 255},
		Margin: DefaultMargin,
		Shape:  ShapeRectangle,
	}
}

func (o Options) normalized() (Options, error) {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Width < 0 || o.Width > MaxWidth {
		return o, fmt.Errorf("width %d out of range (1..%d)", o.Width, MaxWidth)
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Shape == "" {
		o.Shape = ShapeRectangle
	}
	return o, nil
}

// Encoder produces QR images with a fixed error correction level.
type Encoder struct {
	level qrcode.EncodeOption
}

// New returns an encoder using error correction level Q, which leaves room
// for a centred logo.
func New() *Encoder {
	return &Encoder{level: qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart)}
}

func (e *Encoder) code(data string) (*qrcode.QRCode, error) {
	if data == "" {
		return nil, fmt.Errorf("QR payload is empty")
	}
	qrc, err := qrcode.NewWith(data, e.level)
	if err != nil {
		return nil, fmt.Errorf("create QR code: %w", err)
	}
	return qrc, nil
}

// PNG renders data as a Width x Width PNG and returns it as a data URI.
func (e *Encoder) PNG(data string, opts Options) (string, error) {
	raw, err := e.PNGBytes(data, opts)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// PNGBytes is PNG without the data URI wrapping.
func (e *Encoder) PNGBytes(data string, opts Options) ([]byte, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	qrc, err := e.code(data)
	if err != nil {
		return nil, err
	}

	// Pick the largest whole module size that fits, then stretch to the
	// exact width.
	modules := qrc.Dimension() + 2*opts.Margin
	block := min(max(opts.Width/modules, 1), 255)

	imgOpts := []standard.ImageOption{
		standard.WithQRWidth(uint8(block)),
		standard.WithBorderWidth(opts.Margin * block),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	}
	if g := opts.Gradient; g != nil {
		imgOpts = append(imgOpts, standard.WithFgGradient(standard.NewGradient(45, []standard.ColorStop{
			{T: 0, Color: g.Start},
			{T: 0.5, Color: g.Middle},
			{T: 1, Color: g.End},
		}...)))
	} else {
		imgOpts = append(imgOpts, standard.WithFgColor(opts.Dark))
	}
	if opts.Light.A == 0 {
		imgOpts = append(imgOpts, standard.WithBgTransparent())
	} else {
		imgOpts = append(imgOpts, standard.WithBgColor(opts.Light))
	}
	switch opts.Shape {
	case ShapeCircle:
		imgOpts = append(imgOpts, standard.WithCircleShape())
	case ShapeLiquid:
		imgOpts = append(imgOpts, standard.WithCustomShape(&customShape{drawFunc: shapes.LiquidBlock()}))
	case ShapeChain:
		imgOpts = append(imgOpts, standard.WithCustomShape(&customShape{drawFunc: shapes.ChainBlock()}))
	case ShapeHStripe:
		imgOpts = append(imgOpts, standard.WithCustomShape(&customShape{drawFunc: shapes.HStripeBlock(stripeRatio)}))
	case ShapeVStripe:
		imgOpts = append(imgOpts, standard.WithCustomShape(&customShape{drawFunc: shapes.VStripeBlock(stripeRatio)}))
	}

	var buf bytes.Buffer
	w := standard.NewWithWriter(nopCloser{&buf}, imgOpts...)
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("render QR code image: %w", err)
	}
	_ = w.Close()

	img, _, err := image.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode rendered QR code: %w", err)
	}
	if b := img.Bounds(); b.Dx() != opts.Width || b.Dy() != opts.Width {
		img = imaging.Resize(img, opts.Width, opts.Width, imaging.NearestNeighbor)
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode QR png: %w", err)
	}
	return out.Bytes(), nil
}

// SVG renders data as a vector document whose viewBox is 0 0 Width Width, so
// pixel coordinates and SVG user units coincide.
func (e *Encoder) SVG(data string, opts Options) (string, error) {
	opts, err := opts.normalized()
	if err != nil {
		return "", err
	}
	qrc, err := e.code(data)
	if err != nil {
		return "", err
	}

	capture := &matrixCapture{}
	if err := qrc.Save(capture); err != nil {
		return "", fmt.Errorf("capture QR matrix: %w", err)
	}
	if !capture.ok {
		return "", fmt.Errorf("QR matrix was not produced")
	}
	return renderSVG(capture.bitmap(), opts), nil
}

// matrixCapture is a qrcode.Writer that keeps the module matrix.
type matrixCapture struct {
	mat qrcode.Matrix
	ok  bool
}

func (m *matrixCapture) Write(mat qrcode.Matrix) error {
	m.mat = mat
	m.ok = true
	return nil
}

func (m *matrixCapture) Close() error { return nil }

func (m *matrixCapture) bitmap() [][]bool {
	bitmap := make([][]bool, m.mat.Height())
	for y := range bitmap {
		bitmap[y] = make([]bool, m.mat.Width())
	}
	m.mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		bitmap[y][x] = v.IsSet()
	})
	return bitmap
}

// customShape implements the IShape interface by wrapping drawing functions from the shapes package
type customShape struct {
	drawFunc func(ctx *standard.DrawContext)
}

func (cs *customShape) Draw(ctx *standard.DrawContext) {
	cs.drawFunc(ctx)
}

func (cs *customShape) DrawFinder(ctx *standard.DrawContext) {
	cs.drawFunc(ctx)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
