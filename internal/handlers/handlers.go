package handlers

import (
	"log/slog"
	"time"

	"github.com/cristianadrielbraun/qrlogo/internal/generator"
	"github.com/cristianadrielbraun/qrlogo/internal/validate"
)

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	gen          *generator.Generator
	defaultSize  int
	maxLogoBytes int64
	log          *slog.Logger
	now          func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithDefaultSize sets the size used when a request has none.
func WithDefaultSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.defaultSize = n
		}
	}
}

// WithMaxLogoBytes sets the logo upload limit.
func WithMaxLogoBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxLogoBytes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// WithClock overrides time.Now for download file names.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New returns a new Handler instance.
func New(gen *generator.Generator, opts ...Option) *Handler {
	h := &Handler{
		gen:          gen,
		defaultSize:  generator.DefaultSize,
		maxLogoBytes: validate.MaxLogoBytes,
		log:          slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
