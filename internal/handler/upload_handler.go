package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectsphere/pkg/logger"
	"connectsphere/pkg/response"
	"connectsphere/pkg/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and part headers above the file cap.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	store   storage.Storage
	maxSize int64
}

func NewUploadHandler(store storage.Storage, maxSize int64) *UploadHandler {
	return &UploadHandler{store: store, maxSize: maxSize}
}

// Upload POST /api/upload, multipart field "file"
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			h.rejectSize(c)
			return
		}
		response.BadRequest(c, "file is required")
		return
	}
	if header.Size > h.maxSize {
		h.rejectSize(c)
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	name := storage.ObjectName(header.Filename)
	url, err := h.store.Save(c.Request.Context(), name, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		fail(c, fmt.Errorf("save upload: %w", err))
		return
	}
	logger.Info("file uploaded",
		zap.String("name", name), zap.String("original", header.Filename), zap.Int64("size", header.Size))

	response.Success(c, gin.H{
		"url":          url,
		"originalName": header.Filename,
		"size":         header.Size,
	})
}

func (h *UploadHandler) rejectSize(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxSize))
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}
