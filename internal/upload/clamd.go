package upload

import (
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"

	"portfolio/internal/errcode"
)

// ClamdScanner 把上传内容流式发送给 clamd 扫描。
type ClamdScanner struct {
	client *clamd.Clamd
}

// NewClamdScanner 连接 addr 上的 clamd。
func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{client: clamd.NewClamd(addr)}
}

// Scan 扫描上传内容，发现恶意文件时拒绝。
func (s *ClamdScanner) Scan(r io.Reader) error {
	abortChan := make(chan bool)
	defer close(abortChan)

	results, err := s.client.ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("scan file: %w", err)
	}

	for result := range results {
		if result.Status != clamd.RES_OK {
			return errcode.New(errcode.ErrUnsupportedMediaType, "malicious file detected")
		}
	}
	return nil
}
