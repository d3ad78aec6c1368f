package generator_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrlogo/internal/compositor"
	"github.com/cristianadrielbraun/qrlogo/internal/generator"
	"github.com/cristianadrielbraun/qrlogo/internal/validate"
)

func redLogo(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestGenerate_PNGDefaults(t *testing.T) {
	t.Parallel()

	res, err := generator.New().Generate(context.Background(), generator.Request{Data: "example.com"})
	require.NoError(t, err)

	assert.Equal(t, generator.FormatPNG, res.Format)
	assert.Equal(t, generator.DefaultSize, res.Size)
	assert.Equal(t, "image/png", res.ContentType())

	raw, err := res.Bytes()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, generator.DefaultSize, img.Bounds().Dx())
}

func TestGenerate_PNGWithLogo(t *testing.T) {
	t.Parallel()

	res, err := generator.New().Generate(context.Background(), generator.Request{
		Data:      "https://example.com/menu",
		Size:      300,
		Logo:      redLogo(t),
		LogoScale: 1,
	})
	require.NoError(t, err)

	raw, err := res.Bytes()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	r, g, b, _ := img.At(150, 150).RGBA()
	assert.Greater(t, r>>8, uint32(200))
	assert.Less(t, g>>8, uint32(60))
	assert.Less(t, b>>8, uint32(60))

	// backing plate ring
	r, g, b, _ = img.At(183, 150).RGBA()
	for _, v := range []uint32{r, g, b} {
		assert.GreaterOrEqual(t, v>>8, uint32(245))
	}
}

func TestGenerate_SVGWithLogo(t *testing.T) {
	t.Parallel()

	logo := redLogo(t)
	res, err := generator.New().Generate(context.Background(), generator.Request{
		Data:       "hello there",
		InputType:  validate.InputText,
		Format:     generator.FormatSVG,
		Size:       300,
		Foreground: "#336699",
		Logo:       logo,
		LogoScale:  1.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "image/svg+xml", res.ContentType())
	assert.Contains(t, res.Content, `viewBox="0 0 300 300"`)
	assert.Contains(t, res.Content, `fill="#336699"`)
	assert.Contains(t, res.Content, `href="`+logo+`"`)
	assert.Contains(t, res.Content, `r="50" fill="#FFFFFF"`)
	assert.True(t, strings.HasSuffix(res.Content, "</g></svg>"))

	raw, err := res.Bytes()
	require.NoError(t, err)
	assert.Equal(t, res.Content, string(raw))
}

func TestGenerate_ClampsLogoScale(t *testing.T) {
	t.Parallel()

	res, err := generator.New().Generate(context.Background(), generator.Request{
		Data:      "example.com",
		Format:    generator.FormatSVG,
		Logo:      redLogo(t),
		LogoScale: 9,
	})
	require.NoError(t, err)
	// clamped to 1.5 => logo 90, plate radius 50
	assert.Contains(t, res.Content, `width="90" height="90"`)
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	g := generator.New(generator.WithMaxSize(500))

	_, err := g.Generate(context.Background(), generator.Request{Data: "  "})
	assert.ErrorIs(t, err, validate.ErrInvalidInput)

	_, err = g.Generate(context.Background(), generator.Request{Data: "ftp://example.com"})
	assert.ErrorIs(t, err, validate.ErrInvalidInput)

	_, err = g.Generate(context.Background(), generator.Request{Data: "example.com", Size: 501})
	assert.ErrorIs(t, err, generator.ErrSizeOutOfRange)

	_, err = g.Generate(context.Background(), generator.Request{Data: "example.com", Logo: "data:image/png;base64,AAAA"})
	assert.ErrorIs(t, err, compositor.ErrImageLoad)
	assert.EqualError(t, err, "logo image could not be loaded")
}

func TestResultFilename(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "qr-code-1700000000123.png", (&generator.Result{Format: generator.FormatPNG}).Filename(now))
	assert.Equal(t, "qr-code-1700000000123.svg", (&generator.Result{Format: generator.FormatSVG}).Filename(now))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, generator.FormatSVG, generator.ParseFormat("SVG"))
	assert.Equal(t, generator.FormatJPG, generator.ParseFormat("jpeg"))
	assert.Equal(t, generator.FormatJPG, generator.ParseFormat(" JPG "))
	assert.Equal(t, generator.FormatPNG, generator.ParseFormat("gif"))
}

func TestGenerate_JPG(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name       string
		background string
		want       color.RGBA
	}{
		{name: "solid background", background: "#336699", want: color.RGBA{0x33, 0x66, 0x99, 255}},
		{name: "transparent background", background: "transparent", want: color.RGBA{255, 255, 255, 255}},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res, err := generator.New().Generate(context.Background(), generator.Request{
				Data:       "example.com",
				Format:     generator.FormatJPG,
				Size:       240,
				Background: tc.background,
				Logo:       redLogo(t),
			})
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", res.ContentType())
			assert.Equal(t, "qr-code-1700000000123.jpg", res.Filename(time.UnixMilli(1700000000123)))

			raw, err := res.Bytes()
			require.NoError(t, err)
			img, err := jpeg.Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			require.Equal(t, 240, img.Bounds().Dx())

			r, g, b, _ := img.At(2, 2).RGBA()
			assert.InDelta(t, float64(tc.want.R), float64(r>>8), 12)
			assert.InDelta(t, float64(tc.want.G), float64(g>>8), 12)
			assert.InDelta(t, float64(tc.want.B), float64(b>>8), 12)

			// logo survives the re-encode
			r, g, b, _ = img.At(120, 120).RGBA()
			assert.Greater(t, r>>8, uint32(180))
			assert.Less(t, g>>8, uint32(80))
			assert.Less(t, b>>8, uint32(80))
		})
	}
}

func TestGenerate_Gradient(t *testing.T) {
	t.Parallel()

	req := generator.Request{
		Data:           "example.com",
		Size:           270,
		ColorMode:      "gradient",
		GradientStart:  "#ff0000",
		GradientMiddle: "#ff0000",
		GradientEnd:    "#ff0000",
	}
	res, err := generator.New().Generate(context.Background(), req)
	require.NoError(t, err)
	raw, err := res.Bytes()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	// outer ring of the top left finder pattern, one module in from the edge
	r, g, b, _ := img.At(15, 15).RGBA()
	assert.Greater(t, r>>8, uint32(200))
	assert.Less(t, g>>8, uint32(60))
	assert.Less(t, b>>8, uint32(60))

	req.Format = generator.FormatSVG
	req.GradientEnd = "#0000ff"
	res, err = generator.New().Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, res.Content, `<linearGradient id="qrGradient"`)
	assert.Contains(t, res.Content, `stop-color="#0000ff"`)
	assert.Contains(t, res.Content, `fill="url(#qrGradient)"`)
}
