package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/hiding/core/tag"
	"github.com/kochabx/hiding/errors"
	"github.com/kochabx/hiding/log/desensitize"
	"github.com/kochabx/hiding/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	hook   *desensitize.Hook
	closer io.Closer
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// Hook 返回脱敏钩子，未启用时为 nil
func (l *Logger) Hook() *desensitize.Hook {
	return l.hook
}

// Close 关闭底层文件
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// newLogger 先收集选项，脱敏 writer 必须包在最外层，因此在构建 zerolog.Logger 之前确定
func newLogger(w io.Writer, opts ...Option) *Logger {
	o := &options{level: zerolog.InfoLevel}
	for _, opt := range opts {
		opt(o)
	}

	if o.hook != nil {
		w = desensitize.NewWriter(w, o.hook)
	}

	ctx := zerolog.New(w).Level(o.level).With().Timestamp()
	if o.caller {
		ctx = ctx.CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + o.callerSkip)
	}
	return &Logger{Logger: ctx.Logger(), hook: o.hook}
}

// New 创建输出到控制台的 Logger
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), opts...)
}

// NewWriter 创建输出到任意 writer 的 JSON Logger
func NewWriter(w io.Writer, opts ...Option) *Logger {
	return newLogger(w, opts...)
}

// NewFile 创建输出到轮转文件的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := openFile(&c)
	if err != nil {
		return nil, err
	}
	l := newLogger(fw, opts...)
	l.closer = fw
	return l, nil
}

// NewMulti 创建同时输出到文件和控制台的 Logger
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := openFile(&c)
	if err != nil {
		return nil, err
	}
	l := newLogger(zerolog.MultiLevelWriter(fw, writer.Console()), opts...)
	l.closer = fw
	return l, nil
}

// NewFromConfig 按配置创建 Logger
func NewFromConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "apply log defaults")
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "parse log level")
	}

	opts := []Option{WithLevel(level)}
	if c.Caller {
		opts = append(opts, WithCaller())
	}
	if c.Desensitize {
		opts = append(opts, WithDesensitize(desensitize.Default()))
	}

	switch c.Output {
	case OutputFile:
		return NewFile(c.File, opts...)
	case OutputMulti:
		return NewMulti(c.File, opts...)
	case OutputConsole, "":
		return New(opts...), nil
	default:
		return nil, errors.InvalidConfig("unknown log output %q", c.Output)
	}
}

func openFile(c *FileConfig) (io.WriteCloser, error) {
	if err := tag.ApplyDefaults(c); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "apply log file defaults")
	}
	wc, err := c.toWriterConfig()
	if err != nil {
		return nil, err
	}
	return writer.File(wc)
}
