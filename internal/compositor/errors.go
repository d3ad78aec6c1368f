package compositor

import "errors"

var (
	// ErrSurfaceUnavailable is returned when no drawing surface could be
	// allocated. Nothing has been loaded or drawn when it is returned.
	ErrSurfaceUnavailable = errors.New("drawing surface unavailable")
	// ErrImageLoad matches every *ImageLoadError.
	ErrImageLoad = errors.New("image could not be loaded")
	// ErrMalformedDocument is returned by the vector compositor when the
	// SVG root element is never closed.
	ErrMalformedDocument = errors.New("malformed SVG document")
	// ErrUnsupportedSource is returned by the loader for references it does
	// not know how to open (or is not allowed to).
	ErrUnsupportedSource = errors.New("unsupported image source")
)

// Subjects reported by ImageLoadError.
const (
	SubjectQR   = "QR code"
	SubjectLogo = "logo"
)

// ImageLoadError reports that the QR or logo image failed to decode.
// Err holds the underlying cause.
type ImageLoadError struct {
	Subject string
	Err     error
}

func (e *ImageLoadError) Error() string {
	return e.Subject + " image could not be loaded"
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrImageLoad) match any subject.
func (e *ImageLoadError) Is(target error) bool {
	return target == ErrImageLoad
}
