package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrlogo/internal/compositor"
	"github.com/cristianadrielbraun/qrlogo/internal/generator"
	"github.com/cristianadrielbraun/qrlogo/internal/logger"
	"github.com/cristianadrielbraun/qrlogo/internal/qrgen"
	"github.com/cristianadrielbraun/qrlogo/internal/validate"
)

type generateResponse struct {
	Format   generator.Format `json:"format"`
	Content  string           `json:"content"`
	Filename string           `json:"filename"`
}

// QRCodeHandler streams a QR code built from query parameters:
// data (or url), type, format, size, fg, bg, colorMode, gradientStart,
// gradientMiddle, gradientEnd, shape, logo, logoScale, download.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		data = c.Query("url")
	}

	size, err := intParam(c.Query("size"), h.defaultSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be an integer"})
		return
	}
	scale, err := floatParam(c.Query("logoScale"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logoScale must be a number"})
		return
	}

	req := generator.Request{
		Data:       data,
		InputType:  validate.ParseInputType(c.DefaultQuery("type", "url")),
		Format:     generator.ParseFormat(c.DefaultQuery("format", "png")),
		Size:       size,
		Foreground: c.Query("fg"),
		Background: c.Query("bg"),
		Shape:      qrgen.ParseShape(c.DefaultQuery("shape", "rectangle")),
		Logo:       c.Query("logo"),
		LogoScale:  scale,

		ColorMode:      c.Query("colorMode"),
		GradientStart:  c.Query("gradientStart"),
		GradientMiddle: c.Query("gradientMiddle"),
		GradientEnd:    c.Query("gradientEnd"),
	}

	res, err := h.gen.Generate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	body, err := res.Bytes()
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	if download, _ := strconv.ParseBool(c.Query("download")); download {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename(h.now())))
	}
	c.Data(http.StatusOK, res.ContentType(), body)
}

// GenerateJSON accepts a generator.Request body and answers with the image
// inlined as a data URI or SVG string.
func (h *Handler) GenerateJSON(c *gin.Context) {
	var req generator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.Size == 0 {
		req.Size = h.defaultSize
	}
	req.Format = generator.ParseFormat(string(req.Format))
	req.InputType = validate.ParseInputType(string(req.InputType))
	req.Shape = qrgen.ParseShape(string(req.Shape))

	res, err := h.gen.Generate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, generateResponse{
		Format:   res.Format,
		Content:  res.Content,
		Filename: res.Filename(h.now()),
	})
}

// fail maps generation errors to HTTP status codes.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, validate.ErrInvalidInput),
		errors.Is(err, validate.ErrInvalidLogo),
		errors.Is(err, generator.ErrSizeOutOfRange):
		status = http.StatusBadRequest
	case errors.Is(err, compositor.ErrImageLoad),
		errors.Is(err, compositor.ErrUnsupportedSource):
		status = http.StatusUnprocessableEntity
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(c.Request.Context(), "QR generation failed",
			logger.RequestID(c.GetString(requestIDHeader)), logger.Error(err))
		msg = "failed to generate QR code"
	}
	c.JSON(status, gin.H{"error": msg})
}

func intParam(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func floatParam(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
