package config

import (
	"reflect"
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/hiding/core/validator"
	"github.com/kochabx/hiding/errors"
	"github.com/kochabx/hiding/log"
)

// Config 管理一个指针类型的配置目标
type Config struct {
	mu        sync.RWMutex
	viper     *viper.Viper
	validate  validator.Validator
	target    any
	loader    Loader
	file      string
	envPrefix string
	listeners []func()
}

// New 创建配置管理器，target 必须是结构体指针
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:     viper.New(),
		validate:  validator.Validate,
		target:    target,
		file:      "config.yaml",
		envPrefix: "HIDING",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.loader == nil {
		c.loader = NewFileLoader(c.file, c.envPrefix, c.viper, c.validate)
	}
	return c
}

// Load 首次加载
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loader.Load(c.target)
}

// Reload 解码到新实例，成功后整体替换目标并通知监听者。失败时保留旧配置
func (c *Config) Reload() error {
	t := reflect.TypeOf(c.target)
	if t == nil || t.Kind() != reflect.Pointer {
		return errors.InvalidConfig("config target must be a pointer")
	}
	next := reflect.New(t.Elem())
	if err := c.loader.Load(next.Interface()); err != nil {
		return err
	}

	c.mu.Lock()
	reflect.ValueOf(c.target).Elem().Set(next.Elem())
	listeners := append([]func(){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// OnChange 注册重新加载成功后的回调
func (c *Config) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Read 在读锁内访问配置
func (c *Config) Read(fn func(target any)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.target)
}

// Watch 监听配置变化并自动重新加载
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		log.Info().Msg("config change detected")
		if err := c.Reload(); err != nil {
			log.Error().Err(err).Msg("config reload failed, keeping previous config")
			return
		}
		log.Info().Msg("config reloaded")
	})
}

// Viper 返回底层 viper 实例
func (c *Config) Viper() *viper.Viper {
	return c.viper
}
