package redis

import (
	"time"
)

// Config Redis 配置，单机/集群/哨兵由 Addrs 与 MasterName 决定
//
//	单机: addrs: [localhost:6379]
//	集群: addrs: [node1:6379, node2:6379, node3:6379]
//	哨兵: addrs: [sentinel1:26379], master_name: mymaster
type Config struct {
	Addrs      []string `mapstructure:"addrs" validate:"omitempty,dive,hostname_port"`
	MasterName string   `mapstructure:"master_name"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	// DB 集群模式下忽略
	DB       int `mapstructure:"db" validate:"gte=0,lte=15"`
	Protocol int `mapstructure:"protocol" default:"3" validate:"oneof=2 3"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" default:"3s"`

	// PoolSize 为 0 时使用 10 * GOMAXPROCS
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxIdleTime  time.Duration `mapstructure:"max_idle_time" default:"5m"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout" default:"4s"`
	MaxRetries   int           `mapstructure:"max_retries"`

	// SlowThreshold 超过该耗时的命令记录告警，0 关闭
	SlowThreshold time.Duration `mapstructure:"slow_threshold" default:"100ms"`
	Debug         bool          `mapstructure:"debug"`
	Tracing       bool          `mapstructure:"tracing"`
	Metrics       bool          `mapstructure:"metrics"`
}

// Enabled 是否配置了 redis
func (c *Config) Enabled() bool {
	return len(c.Addrs) > 0
}

// Mode 返回 single、cluster 或 sentinel
func (c *Config) Mode() string {
	switch {
	case c.MasterName != "":
		return "sentinel"
	case len(c.Addrs) > 1:
		return "cluster"
	default:
		return "single"
	}
}
