// Package upload 校验并保存请求中携带的单张图片。
package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"portfolio/internal/errcode"
	"portfolio/internal/storage"
)

// FieldName 是承载图片的 multipart 字段名。
const FieldName = "image"

// PublicPrefix 是已存图片对外访问的 URL 前缀。
const PublicPrefix = "/uploads/"

var allowed = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Scanner 在保存前检查文件内容。
type Scanner interface {
	Scan(r io.Reader) error
}

// Handler 负责图片校验与落盘。它不解码也不处理图片内容。
type Handler struct {
	store    storage.Store
	maxBytes int64
	scanner  Scanner
	now      func() time.Time
}

// NewHandler 构造上传处理器，scanner 可以为 nil。
func NewHandler(store storage.Store, maxBytes int64, scanner Scanner) *Handler {
	return &Handler{
		store:    store,
		maxBytes: maxBytes,
		scanner:  scanner,
		now:      time.Now,
	}
}

// MaxBytes 返回允许的最大文件大小。
func (h *Handler) MaxBytes() int64 { return h.maxBytes }

// Validate 检查扩展名、声明的媒体类型与大小，不触碰存储。
func (h *Handler) Validate(file *multipart.FileHeader) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if !allowed[ext] {
		return fmt.Errorf("extension %q: %w", ext, errcode.ErrUnsupportedMediaType)
	}

	mediaType, _, err := mime.ParseMediaType(file.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("media type: %v: %w", err, errcode.ErrUnsupportedMediaType)
	}
	major, minor, _ := strings.Cut(strings.ToLower(mediaType), "/")
	if major != "image" || !allowed[minor] {
		return fmt.Errorf("media type %q: %w", mediaType, errcode.ErrUnsupportedMediaType)
	}

	if file.Size > h.maxBytes {
		return errcode.New(errcode.ErrPayloadTooLarge, "File exceeds %d bytes", h.maxBytes)
	}
	return nil
}

// Save 校验、按需扫描，并以时间戳文件名保存。
func (h *Handler) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := h.Validate(file); err != nil {
		return "", err
	}

	if h.scanner != nil {
		if err := h.scan(file); err != nil {
			return "", err
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d%s", h.now().UnixNano(), strings.ToLower(filepath.Ext(file.Filename)))
	if err := h.store.Put(ctx, name, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return PublicPrefix + name, nil
}

// Remove 删除 Save 返回的引用对应的文件，外部引用直接忽略。
func (h *Handler) Remove(ctx context.Context, ref string) error {
	name, ok := NameFromRef(ref)
	if !ok {
		return nil
	}
	return h.store.Delete(ctx, name)
}

// Open 按文件名打开已存图片。
func (h *Handler) Open(ctx context.Context, name string) (*storage.Object, error) {
	if !ValidName(name) {
		return nil, storage.ErrNotExist
	}
	return h.store.Open(ctx, name)
}

func (h *Handler) scan(file *multipart.FileHeader) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload for scan: %w", err)
	}
	defer src.Close()
	return h.scanner.Scan(src)
}

// NameFromRef 去掉引用中的公开前缀。
func NameFromRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, PublicPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, PublicPrefix)
	return name, ValidName(name)
}

// ValidName 只接受不含路径且扩展名合法的文件名。
func ValidName(name string) bool {
	if name == "" || len(name) > 128 {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || path.Base(name) != name {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return allowed[ext]
}
