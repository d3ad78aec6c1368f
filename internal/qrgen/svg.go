package qrgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cristianadrielbraun/qrlogo/internal/validate"
)

const gradientID = "qrGradient"

func renderSVG(bitmap [][]bool, opts Options) string {
	n := len(bitmap)
	total := n + 2*opts.Margin
	unit := float64(opts.Width) / float64(total)
	size := strconv.Itoa(opts.Width)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`, size, size, size, size)

	fill := validate.HexColor(opts.Dark)
	if g := opts.Gradient; g != nil {
		fmt.Fprintf(&b, `<defs><linearGradient id="%s" x1="0%%" y1="0%%" x2="100%%" y2="100%%">`, gradientID)
		fmt.Fprintf(&b, `<stop offset="0%%" stop-color="%s"/>`, validate.HexColor(g.Start))
		fmt.Fprintf(&b, `<stop offset="50%%" stop-color="%s"/>`, validate.HexColor(g.Middle))
		fmt.Fprintf(&b, `<stop offset="100%%" stop-color="%s"/>`, validate.HexColor(g.End))
		b.WriteString(`</linearGradient></defs>`)
		fill = "url(#" + gradientID + ")"
	}
	if opts.Light.A > 0 {
		fmt.Fprintf(&b, `<rect width="%s" height="%s" fill="%s"/>`, size, size, validate.HexColor(opts.Light))
	}

	// Module (x, y) starts at offset(x), offset(y).
	offset := func(i int) float64 { return float64(i+opts.Margin) * unit }

	switch opts.Shape {
	case ShapeCircle:
		fmt.Fprintf(&b, `<g fill="%s">`, fill)
		r := num(unit / 2)
		for y, row := range bitmap {
			for x, set := range row {
				if !set {
					continue
				}
				fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s"/>`, num(offset(x)+unit/2), num(offset(y)+unit/2), r)
			}
		}
		b.WriteString(`</g>`)
	case ShapeVStripe:
		// One subpath per vertical run, narrowed to the stripe ratio.
		inset := unit * (1 - stripeRatio) / 2
		fmt.Fprintf(&b, `<path fill="%s" d="`, fill)
		for x := 0; x < n; x++ {
			for y := 0; y < n; {
				if !bitmap[y][x] {
					y++
					continue
				}
				start := y
				for y < n && bitmap[y][x] {
					y++
				}
				writeRect(&b, offset(x)+inset, offset(start), offset(x+1)-inset, offset(y))
			}
		}
		b.WriteString(`"/>`)
	default:
		// One subpath per horizontal run of dark modules. Horizontal stripes
		// are the same runs narrowed to the stripe ratio.
		var inset float64
		if opts.Shape == ShapeHStripe {
			inset = unit * (1 - stripeRatio) / 2
		}
		fmt.Fprintf(&b, `<path fill="%s" d="`, fill)
		for y, row := range bitmap {
			for x := 0; x < len(row); {
				if !row[x] {
					x++
					continue
				}
				start := x
				for x < len(row) && row[x] {
					x++
				}
				writeRect(&b, offset(start), offset(y)+inset, offset(x), offset(y+1)-inset)
			}
		}
		b.WriteString(`"/>`)
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func writeRect(b *strings.Builder, x0, y0, x1, y1 float64) {
	fmt.Fprintf(b, "M%s %sH%sV%sH%sZ", num(x0), num(y0), num(x1), num(y1), num(x0))
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
