package compositor

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/cristianadrielbraun/qrlogo/internal/geometry"
)

const clipIDBase = "logoClip"

// ComposeSVG inserts a logo group (white backing circle, circular clip path
// and the clipped logo image) as the last child of the document's root
// element. Documents whose root has no viewBox are returned unchanged.
//
// The root and its closing tag are found with an XML tokenizer, so markup that
// merely looks like a closing tag inside comments or CDATA is ignored. The
// document outside the insertion point is kept byte for byte.
func ComposeSVG(doc, logoRef string, qrSize, logoScale float64) (string, error) {
	root, ok, err := scanRoot(doc)
	if err != nil {
		return "", err
	}
	if !ok {
		return doc, nil
	}

	fragment := logoFragment(geometry.Compute(qrSize, logoScale), logoRef, clipID(root.ids))

	if root.selfClosing {
		// <svg .../> becomes <svg ...>fragment</svg>
		return doc[:root.closeAt-2] + ">" + fragment + "</" + root.name + ">" + doc[root.closeAt:], nil
	}
	return doc[:root.closeAt] + fragment + doc[root.closeAt:], nil
}

type rootElement struct {
	name        string
	closeAt     int
	selfClosing bool
	ids         map[string]bool
}

// scanRoot reports ok=false when the document has no root element or the
// root carries no viewBox.
func scanRoot(doc string) (rootElement, bool, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity

	var (
		root     rootElement
		started  bool
		openedAt int
		depth    int
	)
	for {
		offset := int(dec.InputOffset())
		tok, err := dec.Token()
		if err != nil {
			if !started {
				return root, false, nil
			}
			return root, false, fmt.Errorf("%w: root element <%s> is not closed: %v", ErrMalformedDocument, root.name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !started {
				started = true
				if attrValue(t, "viewBox") == "" {
					return root, false, nil
				}
				root.name = rawName(doc[offset:])
				root.ids = make(map[string]bool)
				openedAt = int(dec.InputOffset())
			}
			if id := attrValue(t, "id"); id != "" {
				root.ids[id] = true
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				root.closeAt = offset
				root.selfClosing = offset == openedAt && !strings.HasPrefix(doc[offset:], "</")
				return root, true, nil
			}
		}
	}
}

func attrValue(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// rawName returns the tag name as written, prefix included, from markup
// starting at '<'.
func rawName(markup string) string {
	name := strings.TrimPrefix(markup, "<")
	if i := strings.IndexAny(name, " \t\r\n/>"); i >= 0 {
		name = name[:i]
	}
	return name
}

// clipID picks the first of logoClip, logoClip-2, ... not already used.
func clipID(taken map[string]bool) string {
	id := clipIDBase
	for n := 2; taken[id]; n++ {
		id = clipIDBase + "-" + strconv.Itoa(n)
	}
	return id
}

func logoFragment(l geometry.Layout, logoRef, id string) string {
	cx, cy := formatNumber(l.CenterX), formatNumber(l.CenterY)

	var b strings.Builder
	b.WriteString("<g>")
	fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="#FFFFFF"/>`, cx, cy, formatNumber(l.PlateRadius))
	fmt.Fprintf(&b, `<defs><clipPath id="%s"><circle cx="%s" cy="%s" r="%s"/></clipPath></defs>`,
		id, cx, cy, formatNumber(l.ClipRadius))
	fmt.Fprintf(&b, `<image x="%s" y="%s" width="%s" height="%s" href="%s" preserveAspectRatio="none" clip-path="url(#%s)"/>`,
		formatNumber(l.LogoX), formatNumber(l.LogoY), formatNumber(l.LogoSize), formatNumber(l.LogoSize),
		escapeAttr(logoRef), id)
	b.WriteString("</g>")
	return b.String()
}

// formatNumber prints the shortest decimal that round-trips, e.g. 150, 37.5.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
