package redis

import (
	"context"
	"runtime"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/hiding/core/tag"
	"github.com/kochabx/hiding/errors"
	"github.com/kochabx/hiding/log"
)

// Client 封装 redis.UniversalClient
type Client struct {
	client redis.UniversalClient
	config Config
	logger *log.Logger
}

// Option 客户端选项
type Option func(*Client)

// WithLogger 设置日志记录器，默认使用全局实例
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New 创建客户端并 PING 一次，失败时关闭连接
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrEmptyAddrs
	}
	if err := tag.ApplyDefaults(&cfg); err != nil {
		return nil, err
	}

	c := &Client{
		client: redis.NewUniversalClient(universalOptions(&cfg)),
		config: cfg,
		logger: log.G(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.instrument(); err != nil {
		_ = c.client.Close()
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.client.Close()
		return nil, errors.ServiceUnavailable("redis unreachable").WithCause(err).WithField("addrs", cfg.Addrs)
	}

	c.logger.Info().Str("mode", cfg.Mode()).Strs("addrs", cfg.Addrs).Msg("redis connected")
	return c, nil
}

func universalOptions(cfg *Config) *redis.UniversalOptions {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = 10 * runtime.GOMAXPROCS(0)
	}
	return &redis.UniversalOptions{
		Addrs:           cfg.Addrs,
		MasterName:      cfg.MasterName,
		Username:        cfg.Username,
		Password:        cfg.Password,
		DB:              cfg.DB,
		Protocol:        cfg.Protocol,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        poolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxIdleTime: cfg.MaxIdleTime,
		PoolTimeout:     cfg.PoolTimeout,
		MaxRetries:      cfg.MaxRetries,
	}
}

func (c *Client) instrument() error {
	if c.config.Debug || c.config.SlowThreshold > 0 {
		c.client.AddHook(NewDebugHook(c.logger, c.config.Debug, c.config.SlowThreshold))
	}
	// 使用全局 OpenTelemetry provider，未设置时为空操作
	if c.config.Tracing {
		if err := redisotel.InstrumentTracing(c.client); err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "redis tracing")
		}
	}
	if c.config.Metrics {
		if err := redisotel.InstrumentMetrics(c.client); err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "redis metrics")
		}
	}
	return nil
}

// Universal 返回底层客户端
func (c *Client) Universal() redis.UniversalClient {
	return c.client
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 关闭客户端，签名满足 app 的关闭函数
func (c *Client) Close(context.Context) error {
	return c.client.Close()
}
