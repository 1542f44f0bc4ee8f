package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/kochabx/hiding/core/tag"
	"github.com/kochabx/hiding/core/validator"
	"github.com/kochabx/hiding/errors"
)

// FileLoader 从单个文件读取配置，格式由扩展名决定。
// 环境变量 PREFIX_SECTION_KEY 覆盖文件中已有的键。
type FileLoader struct {
	viper    *viper.Viper
	validate validator.Validator
	file     string
}

// NewFileLoader 创建文件加载器，envPrefix 为空时不读取环境变量
func NewFileLoader(file, envPrefix string, v *viper.Viper, validate validator.Validator) *FileLoader {
	v.SetConfigFile(file)
	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	return &FileLoader{viper: v, validate: validate, file: file}
}

// Load 依次执行：默认值、读取文件、解码、再次补齐默认值、校验
func (l *FileLoader) Load(target any) error {
	if err := tag.ApplyDefaults(target); err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "apply defaults")
	}
	if err := l.viper.ReadInConfig(); err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "read %s", l.file)
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.viper.Unmarshal(target, hook); err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "decode %s", l.file)
	}
	// 文件中显式写出的空值会覆盖默认值
	if err := tag.ApplyDefaults(target); err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "apply defaults")
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "validate %s", l.file)
		}
	}
	return nil
}

// Watch 监听文件变化
func (l *FileLoader) Watch(callback func()) error {
	l.viper.OnConfigChange(func(fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})
	l.viper.WatchConfig()
	return nil
}
