package redis

import (
	"context"
	"time"
)

// Status 一次健康检查的结果
type Status struct {
	Healthy    bool          `json:"healthy"`
	Latency    time.Duration `json:"latency"`
	TotalConns uint32        `json:"total_conns"`
	IdleConns  uint32        `json:"idle_conns"`
	Timeouts   uint32        `json:"timeouts"`
	Error      string        `json:"error,omitempty"`
}

// Check 执行 PING 并附带连接池统计
func (c *Client) Check(ctx context.Context) Status {
	start := time.Now()
	err := c.Ping(ctx)
	s := Status{Healthy: err == nil, Latency: time.Since(start)}
	if err != nil {
		s.Error = err.Error()
		c.logger.Warn().Err(err).Dur("latency", s.Latency).Msg("redis health check failed")
		return s
	}

	stats := c.client.PoolStats()
	s.TotalConns = stats.TotalConns
	s.IdleConns = stats.IdleConns
	s.Timeouts = stats.Timeouts
	return s
}
