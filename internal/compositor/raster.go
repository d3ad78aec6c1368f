package compositor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"

	"github.com/cristianadrielbraun/qrlogo/internal/geometry"
	"github.com/cristianadrielbraun/qrlogo/internal/logger"
)

// MaxSurfaceSize is the largest square surface the compositors will allocate.
const MaxSurfaceSize = 16384

// PNGDataURIPrefix prefixes every raster result.
const PNGDataURIPrefix = "data:image/png;base64,"

// SurfaceFunc allocates a size x size drawing surface.
type SurfaceFunc func(size int) (*gg.Context, error)

// Raster overlays a logo onto a raster QR code.
type Raster struct {
	loader     Loader
	surface    SurfaceFunc
	sequential bool
	log        *slog.Logger
}

// RasterOption configures a Raster compositor.
type RasterOption func(*Raster)

// WithLoader replaces the default data URI loader.
func WithLoader(l Loader) RasterOption {
	return func(r *Raster) { r.loader = l }
}

// WithSurface replaces the default surface allocator.
func WithSurface(fn SurfaceFunc) RasterOption {
	return func(r *Raster) { r.surface = fn }
}

// WithSequentialDecode decodes the QR image before starting on the logo
// instead of decoding both at once.
func WithSequentialDecode() RasterOption {
	return func(r *Raster) { r.sequential = true }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) RasterOption {
	return func(r *Raster) { r.log = l }
}

// NewRaster returns a raster compositor.
func NewRaster(opts ...RasterOption) *Raster {
	r := &Raster{
		loader:  NewLoader(),
		surface: newSurface,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newSurface(size int) (*gg.Context, error) {
	if size <= 0 || size > MaxSurfaceSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurfaceUnavailable, size, size)
	}
	return gg.NewContext(size, size), nil
}

// Compose draws qrSource stretched to qrSize x qrSize, a white backing plate
// and logoSource cropped to a circle in the middle, and returns the result as
// a PNG data URI. Either every step succeeds or an error is returned and no
// image is produced.
func (r *Raster) Compose(ctx context.Context, qrSource, logoSource string, qrSize int, logoScale float64) (string, error) {
	start := time.Now()

	dc, err := r.surface(qrSize)
	switch {
	case err != nil && errors.Is(err, ErrSurfaceUnavailable):
		return "", err
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	case dc == nil:
		return "", fmt.Errorf("%w: no drawing context", ErrSurfaceUnavailable)
	}

	layout := geometry.Compute(float64(qrSize), logoScale)
	logoPx := logoResampleEdge(layout.LogoSize, qrSize)

	qrImg, logoImg, err := r.decode(ctx, qrSource, logoSource, qrSize, logoPx)
	if err != nil {
		return "", err
	}

	drawQR(dc, qrImg, qrSize)
	drawLogo(dc, logoImg, layout, logoPx)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encode composited png: %w", err)
	}

	r.log.DebugContext(ctx, "composited raster logo",
		slog.Int("qr_size", qrSize),
		slog.Float64("logo_size", layout.LogoSize),
		logger.Duration(time.Since(start)),
	)
	return PNGDataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decode loads both bitmaps. When both fail the QR error is reported.
func (r *Raster) decode(ctx context.Context, qrSource, logoSource string, qrSize, logoPx int) (image.Image, image.Image, error) {
	var (
		qrImg, logoImg image.Image
		qrErr, logoErr error
	)
	loadQR := func(ctx context.Context) error {
		img, err := r.loader.Load(ctx, qrSource, qrSize)
		if err != nil {
			qrErr = &ImageLoadError{Subject: SubjectQR, Err: err}
			return qrErr
		}
		qrImg = img
		return nil
	}
	loadLogo := func(ctx context.Context) error {
		img, err := r.loader.Load(ctx, logoSource, logoPx*2)
		if err != nil {
			logoErr = &ImageLoadError{Subject: SubjectLogo, Err: err}
			return logoErr
		}
		logoImg = img
		return nil
	}

	if r.sequential {
		if err := loadQR(ctx); err != nil {
			return nil, nil, err
		}
		if err := loadLogo(ctx); err != nil {
			return nil, nil, err
		}
		return qrImg, logoImg, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loadQR(gctx) })
	g.Go(func() error { return loadLogo(gctx) })
	_ = g.Wait()

	switch {
	case qrErr != nil:
		return nil, nil, qrErr
	case logoErr != nil:
		return nil, nil, logoErr
	}
	return qrImg, logoImg, nil
}

// drawQR stretches the QR bitmap over the whole surface. Nearest neighbour
// keeps module edges sharp.
func drawQR(dc *gg.Context, qr image.Image, size int) {
	b := qr.Bounds()
	if b.Dx() != size || b.Dy() != size {
		qr = imaging.Resize(qr, size, size, imaging.NearestNeighbor)
	}
	dc.DrawImage(qr, 0, 0)
}

// logoResampleEdge is the pixel edge the logo is resampled to. It never
// exceeds the surface; anything larger would be clipped away.
func logoResampleEdge(logoSize float64, qrSize int) int {
	return max(min(int(math.Round(logoSize)), qrSize), 1)
}

// drawLogo paints the backing plate, then the logo clipped to a circle.
func drawLogo(dc *gg.Context, logo image.Image, l geometry.Layout, logoPx int) {
	dc.SetColor(color.White)
	dc.DrawCircle(l.CenterX, l.CenterY, l.PlateRadius)
	dc.Fill()

	scaled := imaging.Resize(logo, logoPx, logoPx, imaging.Lanczos)

	dc.Push()
	dc.DrawCircle(l.CenterX, l.CenterY, l.ClipRadius)
	dc.Clip()
	dc.Translate(l.LogoX, l.LogoY)
	dc.Scale(l.LogoSize/float64(logoPx), l.LogoSize/float64(logoPx))
	dc.DrawImage(scaled, 0, 0)
	dc.Pop()
}
