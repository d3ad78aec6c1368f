package generator

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/vincent-petithory/dataurl"
)

const (
	jpegQuality       = 92
	jpegDataURIPrefix = "data:image/jpeg;base64,"
)

// flattenJPEG re-encodes a PNG data URI as JPEG over an opaque bg. A
// transparent bg becomes white.
func flattenJPEG(pngURI string, bg color.RGBA) (string, error) {
	du, err := dataurl.DecodeString(pngURI)
	if err != nil {
		return "", fmt.Errorf("decode png data URI: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(du.Data))
	if err != nil {
		return "", fmt.Errorf("decode png: %w", err)
	}

	fill := color.RGBA{bg.R, bg.G, bg.B, 255}
	if bg.A == 0 {
		fill = color.RGBA{255, 255, 255, 255}
	}
	b := img.Bounds()
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), fill), img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return jpegDataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
