package http

import (
	"context"
	"time"

	"github.com/kochabx/hiding/core/tag"
)

type Options struct {
	Metrics MetricsOption
	Health  HealthOption
	Timeout TimeoutOption
}

type MetricsOption struct {
	Enabled                   bool   `mapstructure:"enabled"`
	Path                      string `mapstructure:"path" default:"/metrics"`
	EnabledGoCollector        bool   `mapstructure:"enabled_go_collector"`
	EnabledBuildInfoCollector bool   `mapstructure:"enabled_build_info_collector"`
}

func (m *MetricsOption) init() error {
	return tag.ApplyDefaults(m)
}

// CheckFunc 健康检查项，返回的值写入响应的 checks 字段
type CheckFunc func(ctx context.Context) (any, error)

type HealthOption struct {
	Enabled bool                 `mapstructure:"enabled"`
	Path    string               `mapstructure:"path" default:"/health"`
	Checks  map[string]CheckFunc `mapstructure:"-"`
}

func (h *HealthOption) init() error {
	return tag.ApplyDefaults(h)
}

type TimeoutOption struct {
	ReadHeader time.Duration `mapstructure:"read_header" default:"5s"`
	Read       time.Duration `mapstructure:"read" default:"15s"`
	Write      time.Duration `mapstructure:"write" default:"15s"`
	Idle       time.Duration `mapstructure:"idle" default:"60s"`
}

func (t *TimeoutOption) init() error {
	return tag.ApplyDefaults(t)
}
