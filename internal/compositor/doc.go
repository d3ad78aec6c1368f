// Package compositor overlays a logo onto an already encoded QR code.
//
// Two independent paths share the placement rules from the geometry package:
//
//   - Raster.Compose draws a raster QR image and a logo onto an offscreen
//     surface and returns a PNG data URI.
//   - ComposeSVG splices a logo group into an SVG QR document.
//
// Both put a white backing circle of radius logoSize/2+5 at the centre and
// crop the logo to a circle of radius logoSize/2, so the two outputs look
// the same for the same inputs.
package compositor
