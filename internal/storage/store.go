package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotExist 表示请求的对象不存在。
var ErrNotExist = errors.New("object does not exist")

// Object 是已打开的存储文件，调用方负责关闭 Body。
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Store 以扁平文件名保存上传的图片。
type Store interface {
	Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (*Object, error)
	Delete(ctx context.Context, name string) error
}
