package writer

import (
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kochabx/hiding/errors"
)

// RotateMode 日志轮转模式
type RotateMode int

const (
	RotateModeTime RotateMode = iota
	RotateModeSize
)

// ParseRotateMode 解析配置中的轮转模式
func ParseRotateMode(s string) (RotateMode, error) {
	switch s {
	case "time":
		return RotateModeTime, nil
	case "size", "":
		return RotateModeSize, nil
	default:
		return 0, errors.InvalidConfig("unknown rotate mode %q", s)
	}
}

func (m RotateMode) String() string {
	switch m {
	case RotateModeTime:
		return "time"
	case RotateModeSize:
		return "size"
	default:
		return "unknown"
	}
}

func timeRotateWriter(c RotateConfig) (io.WriteCloser, error) {
	w, err := rotatelogs.New(
		c.path("%Y%m%d%H%M"),
		rotatelogs.WithLinkName(c.path("")),
		rotatelogs.WithMaxAge(time.Duration(c.Time.MaxAge)*time.Hour),
		rotatelogs.WithRotationTime(time.Duration(c.Time.RotationTime)*time.Hour),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "create time rotate writer")
	}
	return w, nil
}

func sizeRotateWriter(c RotateConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   c.path(""),
		MaxSize:    c.Size.MaxSize,
		MaxBackups: c.Size.MaxBackups,
		MaxAge:     c.Size.MaxAge,
		Compress:   c.Size.Compress,
	}
}
