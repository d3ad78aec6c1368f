package validate_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrlogo/internal/validate"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "example.com", want: "https://example.com"},
		{in: "  https://example.com/path?q=1  ", want: "https://example.com/path?q=1"},
		{in: "http://localhost:8080/x", want: "http://localhost:8080/x"},
		{in: "localhost", want: "https://localhost"},
		{in: "ftp://example.com", wantErr: true},
		{in: "https://", wantErr: true},
		{in: "not a url", wantErr: true},
		{in: "intranet", wantErr: true},
		{in: "http://intranet", want: "http://intranet"},
		{in: "https://wiki/page", want: "https://wiki/page"},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := validate.NormalizeURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestInput(t *testing.T) {
	t.Parallel()

	got, err := validate.Input("example.com", validate.InputURL)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)

	got, err = validate.Input("  hello world ", validate.InputText)
	require.NoError(t, err)
	assert.Equal(t, "  hello world ", got)

	_, err = validate.Input(" ", validate.InputText)
	require.ErrorIs(t, err, validate.ErrInvalidInput)
	assert.Contains(t, err.Error(), "enter some text")

	_, err = validate.Input("", validate.InputURL)
	require.ErrorIs(t, err, validate.ErrInvalidInput)
	assert.Contains(t, err.Error(), "enter a valid URL")

	_, err = validate.Input("mailto:someone", validate.InputURL)
	assert.ErrorIs(t, err, validate.ErrInvalidInput)
}

func TestParseInputType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, validate.InputText, validate.ParseInputType("TEXT"))
	assert.Equal(t, validate.InputURL, validate.ParseInputType("url"))
	assert.Equal(t, validate.InputURL, validate.ParseInputType(""))
}

func TestLogo(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validate.Logo("image/png", 1024, 0))
	assert.NoError(t, validate.Logo("image/svg+xml; charset=utf-8", 1024, 0))
	assert.NoError(t, validate.Logo("IMAGE/JPEG", validate.MaxLogoBytes, 0))
	assert.ErrorIs(t, validate.Logo("image/gif", 10, 0), validate.ErrInvalidLogo)
	assert.ErrorIs(t, validate.Logo("image/png", validate.MaxLogoBytes+1, 0), validate.ErrInvalidLogo)
	assert.ErrorIs(t, validate.Logo("image/png", 2048, 1024), validate.ErrInvalidLogo)
	assert.EqualError(t, validate.Logo("image/png", validate.MaxLogoBytes+1, 0), "invalid logo: file must be 5 MB or smaller")
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	def := color.RGBA{1, 2, 3, 255}
	assert.Equal(t, color.RGBA{0xff, 0x00, 0x80, 255}, validate.ParseColor("#ff0080", def))
	assert.Equal(t, color.RGBA{0xaa, 0xbb, 0xcc, 255}, validate.ParseColor("abc", def))
	assert.Equal(t, color.RGBA{}, validate.ParseColor("Transparent", def))
	assert.Equal(t, def, validate.ParseColor("", def))
	assert.Equal(t, def, validate.ParseColor("#zzzzzz", def))
	assert.Equal(t, def, validate.ParseColor("#12345", def))
}

func TestHexColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#0a0b0c", validate.HexColor(color.RGBA{10, 11, 12, 255}))
}
