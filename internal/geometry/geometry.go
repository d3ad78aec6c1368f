// Package geometry holds the logo placement math shared by the raster and
// vector compositors. Both output formats must place the logo identically, so
// every formula lives here and nowhere else.
package geometry

const (
	// LogoSizeRatio is the logo edge length as a fraction of the QR edge.
	LogoSizeRatio = 0.2
	// PlatePadding is the fixed gap in pixels between the logo clip circle
	// and the edge of the white backing plate. It does not scale.
	PlatePadding = 5.0
	// DefaultLogoScale is used when a caller leaves the scale unset.
	DefaultLogoScale = 1.0

	// MinLogoScale and MaxLogoScale bound what the UI layer offers.
	// The compositors themselves accept any scale.
	MinLogoScale = 0.5
	MaxLogoScale = 1.5
)

// Layout describes where the logo and its backing plate go on a square QR
// code of edge Size.
type Layout struct {
	Size        float64
	LogoSize    float64
	LogoX       float64
	LogoY       float64
	CenterX     float64
	CenterY     float64
	PlateRadius float64
	ClipRadius  float64
}

// Compute returns the layout for a QR code of edge qrSize with the logo scaled
// by logoScale. A zero logoScale means unset and behaves like DefaultLogoScale.
func Compute(qrSize, logoScale float64) Layout {
	if logoScale == 0 {
		logoScale = DefaultLogoScale
	}
	logoSize := qrSize * LogoSizeRatio * logoScale
	offset := (qrSize - logoSize) / 2
	return Layout{
		Size:        qrSize,
		LogoSize:    logoSize,
		LogoX:       offset,
		LogoY:       offset,
		CenterX:     qrSize / 2,
		CenterY:     qrSize / 2,
		PlateRadius: logoSize/2 + PlatePadding,
		ClipRadius:  logoSize / 2,
	}
}

// ClampScale limits a user supplied scale to [MinLogoScale, MaxLogoScale].
// Zero is passed through so Compute can apply the default.
func ClampScale(scale float64) float64 {
	switch {
	case scale == 0:
		return 0
	case scale < MinLogoScale:
		return MinLogoScale
	case scale > MaxLogoScale:
		return MaxLogoScale
	default:
		return scale
	}
}
