package service

import (
	"time"

	"github.com/kochabx/hiding/core/rate"
	"github.com/kochabx/hiding/log"
	"github.com/kochabx/hiding/store/redis"
	khttp "github.com/kochabx/hiding/transport/http"
)

// Config 服务配置，对应 config.yaml
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        log.Config       `mapstructure:"log"`
	Redis      redis.Config     `mapstructure:"redis"`
	Rate       rate.Config      `mapstructure:"rate"`
	Number     NumberConfig     `mapstructure:"number"`
	TimeLong   TimeLongConfig   `mapstructure:"timelong"`
	TimeNumber TimeNumberConfig `mapstructure:"timenumber"`
	Activation ActivationConfig `mapstructure:"activation"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Batch      BatchConfig      `mapstructure:"batch"`
}

type ServerConfig struct {
	Addr    string              `mapstructure:"addr" default:":8080" validate:"hostname_port"`
	Metrics khttp.MetricsOption `mapstructure:"metrics"`
	Health  khttp.HealthOption  `mapstructure:"health"`
	Timeout khttp.TimeoutOption `mapstructure:"timeout"`
}

// 各编码器相互独立，未配置 key 的编码器不启用

type NumberConfig struct {
	Key       string `mapstructure:"key" validate:"omitempty,chachakey"`
	Nonce     string `mapstructure:"nonce" validate:"required_with=Key,omitempty,chachanonce"`
	Counter   uint32 `mapstructure:"counter"`
	Alphabets string `mapstructure:"alphabets" validate:"required_with=Key,alphabets=decimal"`
}

func (c NumberConfig) Enabled() bool {
	return c.Key != ""
}

type TimeLongConfig struct {
	Key       string `mapstructure:"key" validate:"omitempty,chachakey"`
	Nonce     string `mapstructure:"nonce" validate:"required_with=Key,omitempty,chachanonce"`
	Counter   uint32 `mapstructure:"counter"`
	Alphabets string `mapstructure:"alphabets" validate:"required_with=Key,alphabets=base32"`
}

func (c TimeLongConfig) Enabled() bool {
	return c.Key != ""
}

type TimeNumberConfig struct {
	Key       string `mapstructure:"key" validate:"omitempty,chachakey"`
	Nonce     string `mapstructure:"nonce" validate:"required_with=Key,omitempty,chachanonce"`
	Counter   uint32 `mapstructure:"counter"`
	Alphabets string `mapstructure:"alphabets" validate:"required_with=Key,alphabets=decimal"`
}

func (c TimeNumberConfig) Enabled() bool {
	return c.Key != ""
}

type ActivationConfig struct {
	Key       string `mapstructure:"key" validate:"omitempty,chachakey"`
	Nonce     string `mapstructure:"nonce" validate:"required_with=Key,omitempty,chachanonce"`
	Counter   uint32 `mapstructure:"counter"`
	Alphabets string `mapstructure:"alphabets" validate:"required_with=Key,alphabets=base32"`
	// SequenceKey 配置 redis 时保存序号计数器的键
	SequenceKey string `mapstructure:"sequence_key" default:"hiding:activation:serial"`
}

func (c ActivationConfig) Enabled() bool {
	return c.Key != ""
}

// AdminConfig Secret 为空时不注册管理接口
type AdminConfig struct {
	Secret     string        `mapstructure:"secret" validate:"omitempty,min=16"`
	Expiration time.Duration `mapstructure:"expiration" default:"5m"`
}

type BatchConfig struct {
	PoolSize int `mapstructure:"pool_size" default:"8" validate:"gte=1,lte=256"`
	MaxCards int `mapstructure:"max_cards" default:"1000" validate:"gte=1"`
}
