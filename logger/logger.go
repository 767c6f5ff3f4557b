// Package logger 保存全局共享的 slog 日志器，默认不输出任何内容。
package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有记录；Enabled 返回 false，调用方连格式化都会跳过
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger 设置各个子包使用的日志器，传 nil 恢复静默。可并发调用。
//
// 级别约定：
//   - Debug: 每帧/每层的细节（迭代次数、图层像素数）
//   - Info: 阶段进度（抽帧、量化、导出）
//   - Warn: 可以继续的问题（跳过的帧、上传失败后保留本地文件）
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger 返回当前日志器
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
