package log

import (
	"github.com/kochabx/hiding/log/writer"
)

// 输出目标
const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputMulti   = "multi"
)

// Config 日志配置
type Config struct {
	Level       string     `mapstructure:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Output      string     `mapstructure:"output" default:"console" validate:"oneof=console file multi"`
	Caller      bool       `mapstructure:"caller"`
	Desensitize bool       `mapstructure:"desensitize"`
	File        FileConfig `mapstructure:"file"`
}

// FileConfig 日志文件配置
type FileConfig struct {
	Filepath   string           `mapstructure:"filepath" default:"log"`
	Filename   string           `mapstructure:"filename" default:"hiding"`
	FileExt    string           `mapstructure:"file_ext" default:"log"`
	RotateMode string           `mapstructure:"rotate_mode" default:"size" validate:"oneof=time size"`
	Time       TimeRotateConfig `mapstructure:"time"`
	Size       SizeRotateConfig `mapstructure:"size"`
}

// TimeRotateConfig 按时间轮转，单位小时
type TimeRotateConfig struct {
	MaxAge       int `mapstructure:"max_age" default:"168"`
	RotationTime int `mapstructure:"rotation_time" default:"24"`
}

// SizeRotateConfig 按大小轮转
type SizeRotateConfig struct {
	MaxSize    int  `mapstructure:"max_size" default:"100"`
	MaxBackups int  `mapstructure:"max_backups" default:"7"`
	MaxAge     int  `mapstructure:"max_age" default:"30"`
	Compress   bool `mapstructure:"compress"`
}

func (c *FileConfig) toWriterConfig() (writer.RotateConfig, error) {
	mode, err := writer.ParseRotateMode(c.RotateMode)
	if err != nil {
		return writer.RotateConfig{}, err
	}
	return writer.RotateConfig{
		Mode:     mode,
		Filepath: c.Filepath,
		Filename: c.Filename,
		FileExt:  c.FileExt,
		Time: writer.TimeRotateConfig{
			MaxAge:       c.Time.MaxAge,
			RotationTime: c.Time.RotationTime,
		},
		Size: writer.SizeRotateConfig{
			MaxSize:    c.Size.MaxSize,
			MaxBackups: c.Size.MaxBackups,
			MaxAge:     c.Size.MaxAge,
			Compress:   c.Size.Compress,
		},
	}, nil
}
