package config

import (
	"github.com/spf13/viper"

	"github.com/kochabx/hiding/core/validator"
)

// Option 配置选项
type Option func(*Config)

// WithViper 使用外部 viper 实例
func WithViper(v *viper.Viper) Option {
	return func(c *Config) {
		c.viper = v
	}
}

// WithValidator 替换校验器，传 nil 关闭校验
func WithValidator(v validator.Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

// WithLoader 替换加载器
func WithLoader(l Loader) Option {
	return func(c *Config) {
		c.loader = l
	}
}

// WithFile 设置配置文件路径，默认 config.yaml
func WithFile(file string) Option {
	return func(c *Config) {
		c.file = file
	}
}

// WithEnvPrefix 设置环境变量前缀，默认 HIDING
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}
