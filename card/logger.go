package card

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志；Enabled 返回 false，调用方不会格式化消息。
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

// SetLogger 设置包级默认日志，未在 Options.Logger 中指定时使用。传入 nil 恢复静默。
//
// 使用的级别：
//   - [slog.LevelDebug]: 生成过程（画布尺寸、码区域、输出位置）
//   - [slog.LevelWarn]: 被跳过的块与条目，以及找不到的占位符
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger 返回包级默认日志。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
