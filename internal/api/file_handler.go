package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio/internal/errcode"
	"portfolio/internal/storage"
	"portfolio/internal/upload"
)

// FileHandler 提供已上传图片的只读访问。
type FileHandler struct {
	uploads *upload.Handler
}

// NewFileHandler 基于上传处理器构造文件服务。
func NewFileHandler(uploads *upload.Handler) *FileHandler {
	return &FileHandler{uploads: uploads}
}

// Serve 从存储中读取 /uploads/:name，并附带缓存与 Last-Modified 头。
func (h *FileHandler) Serve(c *gin.Context) {
	obj, err := h.uploads.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			err = errcode.NotFound("File not found")
		}
		respondError(c, err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	headers := map[string]string{"Cache-Control": "public, max-age=86400"}
	if !obj.ModTime.IsZero() {
		headers["Last-Modified"] = obj.ModTime.UTC().Format(http.TimeFormat)
	}
	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Body, headers)
}
