// Package logging 构造进程级的 slog 日志器。
package logging

import (
	"io"
	"log/slog"
	"os"

	"portfolio/internal/config"
)

// New 在生产环境返回 JSON 日志器，其余环境返回文本日志器。
func New(app config.AppConfig) *slog.Logger {
	return NewWithWriter(app, os.Stdout)
}

// NewWithWriter 与 New 相同，但输出到 w。
func NewWithWriter(app config.AppConfig, w io.Writer) *slog.Logger {
	if app.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
