// Package scan 在保存上传文件之前用 ClamAV 扫描病毒。
package scan

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dutchcoders/go-clamd"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
)

// Scanner 检查一段上传内容是否安全。
type Scanner interface {
	Scan(ctx context.Context, data []byte) error
}

// New 在未配置 clamd 地址时返回不做任何检查的实现。
func New(addr string) Scanner {
	if addr == "" {
		return Nop{}
	}
	return &ClamdScanner{client: clamd.NewClamd(addr)}
}

// Nop 跳过扫描。
type Nop struct{}

func (Nop) Scan(context.Context, []byte) error { return nil }

// ClamdScanner 通过 clamd 的 INSTREAM 命令扫描。
type ClamdScanner struct {
	client *clamd.Clamd
}

func (s *ClamdScanner) Scan(ctx context.Context, data []byte) error {
	abort := make(chan bool)
	defer close(abort)

	results, err := s.client.ScanStream(bytes.NewReader(data), abort)
	if err != nil {
		return apperror.Adapter("failed to scan file", err)
	}
	return evaluate(ctx, results)
}

func evaluate(ctx context.Context, results <-chan *clamd.ScanResult) error {
	for {
		select {
		case <-ctx.Done():
			return apperror.Adapter("failed to scan file", ctx.Err())
		case result, ok := <-results:
			if !ok {
				return nil
			}
			switch result.Status {
			case clamd.RES_OK:
			case clamd.RES_FOUND:
				return apperror.Validation("malicious file detected")
			default:
				return apperror.Adapter("failed to scan file",
					fmt.Errorf("clamd status %s: %s", result.Status, result.Description))
			}
		}
	}
}
