package writer

import (
	"io"
	"os"
	"path/filepath"

	"github.com/kochabx/hiding/errors"
)

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Mode     RotateMode
	Filepath string
	Filename string
	FileExt  string
	Time     TimeRotateConfig
	Size     SizeRotateConfig
}

// TimeRotateConfig 按时间轮转配置
type TimeRotateConfig struct {
	MaxAge       int // 保留时长(小时)
	RotationTime int // 轮转间隔(小时)
}

// SizeRotateConfig 按大小轮转配置
type SizeRotateConfig struct {
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // 天
	Compress   bool
}

// File 创建文件输出 writer，返回值同时实现 io.Closer
func File(c RotateConfig) (io.WriteCloser, error) {
	if c.Filename == "" {
		return nil, errors.InvalidConfig("log filename is empty")
	}
	if err := os.MkdirAll(c.Filepath, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "create log dir %s", c.Filepath)
	}

	switch c.Mode {
	case RotateModeTime:
		return timeRotateWriter(c)
	case RotateModeSize:
		return sizeRotateWriter(c), nil
	default:
		return nil, errors.InvalidConfig("unsupported rotate mode %v", c.Mode)
	}
}

// path 返回日志文件路径，pattern 非空时插入文件名与扩展名之间
func (c *RotateConfig) path(pattern string) string {
	name := c.Filename
	if pattern != "" {
		name += "." + pattern
	}
	return filepath.Join(c.Filepath, name+"."+c.FileExt)
}
