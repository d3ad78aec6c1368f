package compositor

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RasterizeSVG renders an SVG document onto a size x size RGBA image. A
// non-positive size falls back to the document's viewBox width. Elements the
// renderer does not support (image, clipPath, text) are skipped.
func RasterizeSVG(doc string, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(doc), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	if size <= 0 {
		size = int(math.Ceil(icon.ViewBox.W))
	}
	if size <= 0 {
		size = DefaultSVGRasterSize
	}
	if size > MaxSurfaceSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurfaceUnavailable, size, size)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}
