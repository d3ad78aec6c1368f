package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrlogo/internal/compositor"
	"github.com/cristianadrielbraun/qrlogo/internal/logger"
	"github.com/cristianadrielbraun/qrlogo/internal/validate"
)

// UploadLogo validates a multipart "logo" file and returns it as a data URI
// that can be passed back as the logo of a generation request.
func (h *Handler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo file is required"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if err := validate.Logo(contentType, file.Size, h.maxLogoBytes); err != nil {
		h.fail(c, err)
		return
	}

	f, err := file.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxLogoBytes+1))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := validate.Logo(contentType, int64(len(data)), h.maxLogoBytes); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := compositor.DecodeImage(data, contentType, 64); err != nil {
		h.log.WarnContext(c.Request.Context(), "rejected undecodable logo",
			logger.RequestID(c.GetString(requestIDHeader)), logger.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "logo image could not be loaded"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logo": compositor.EncodeDataURI(data, contentType),
	})
}
