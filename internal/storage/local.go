package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalStore 将上传文件保存在本地目录中。
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore 以本地目录 dir 为根构造存储，目录不存在时创建。
func NewLocalStore(dir string) (*LocalStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return NewLocalStoreFs(afero.NewBasePathFs(osFs, dir)), nil
}

// NewLocalStoreFs 包装已有的 afero 文件系统。
func NewLocalStoreFs(fsys afero.Fs) *LocalStore {
	return &LocalStore{fs: fsys}
}

// Put 写入文件。
func (s *LocalStore) Put(_ context.Context, name string, reader io.Reader, _ int64, _ string) error {
	f, err := s.fs.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %q: %w", name, err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(name)
		return fmt.Errorf("write %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(name)
		return fmt.Errorf("close %q: %w", name, err)
	}
	return nil
}

// Open 打开文件并返回大小、类型与修改时间。
func (s *LocalStore) Open(_ context.Context, name string) (*Object, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %q: %w", name, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, ErrNotExist
	}
	return &Object{
		Body:        f,
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		ModTime:     info.ModTime(),
	}, nil
}

// Delete 删除文件，文件不存在视为成功（幂等）。
func (s *LocalStore) Delete(_ context.Context, name string) error {
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	return nil
}
