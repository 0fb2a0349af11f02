package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
)

func TestLocalStore_PutOpenDelete(t *testing.T) {
	s := NewLocalStoreFs(afero.NewMemMapFs())
	ctx := context.Background()

	if err := s.Put(ctx, "1.png", strings.NewReader("png-bytes"), 9, "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}

	obj, err := s.Open(ctx, "1.png")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, _ := io.ReadAll(obj.Body)
	_ = obj.Body.Close()
	if string(body) != "png-bytes" || obj.Size != 9 {
		t.Fatalf("object = %q size %d", body, obj.Size)
	}
	if obj.ContentType != "image/png" {
		t.Fatalf("content type = %q", obj.ContentType)
	}

	if err := s.Delete(ctx, "1.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "1.png"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := s.Open(ctx, "1.png"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("open deleted err = %v", err)
	}
}

func TestLocalStore_PutRefusesOverwrite(t *testing.T) {
	s := NewLocalStoreFs(afero.NewMemMapFs())
	ctx := context.Background()

	if err := s.Put(ctx, "a.jpg", strings.NewReader("one"), 3, "image/jpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "a.jpg", strings.NewReader("two"), 3, "image/jpeg"); err == nil {
		t.Fatal("expected error on name collision")
	}
}

func TestIsNoSuchKey(t *testing.T) {
	if !IsNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}) {
		t.Fatal("minio NoSuchKey not recognised")
	}
	if !IsNoSuchKey(fmt.Errorf("wrapped: %w", minio.ErrorResponse{Code: "NotFound"})) {
		t.Fatal("wrapped NotFound not recognised")
	}
	if IsNoSuchKey(errors.New("connection refused")) || IsNoSuchKey(nil) {
		t.Fatal("unrelated errors must not match")
	}
}
