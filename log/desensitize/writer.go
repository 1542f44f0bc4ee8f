package desensitize

import (
	"io"
)

// Writer 在写入前对每条日志脱敏
type Writer struct {
	w    io.Writer
	hook *Hook
}

// NewWriter 包装 w
func NewWriter(w io.Writer, hook *Hook) *Writer {
	return &Writer{w: w, hook: hook}
}

// Write 实现 io.Writer。返回值按原始长度计算，zerolog 以此判断写入是否完整
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.hook == nil || w.hook.Len() == 0 {
		return w.w.Write(p)
	}
	text := string(p)
	out := w.hook.Desensitize(text)
	if out == text {
		return w.w.Write(p)
	}
	if _, err := io.WriteString(w.w, out); err != nil {
		return 0, err
	}
	return len(p), nil
}
