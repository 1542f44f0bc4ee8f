package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/hiding/log"
)

// DebugHook 记录慢命令，verbose 时记录每条命令
type DebugHook struct {
	logger  *log.Logger
	verbose bool
	slow    time.Duration
}

// NewDebugHook 创建 Hook，slow 为 0 时不检测慢命令
func NewDebugHook(logger *log.Logger, verbose bool, slow time.Duration) *DebugHook {
	return &DebugHook{logger: logger, verbose: verbose, slow: slow}
}

func (h *DebugHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Warn().Str("addr", addr).Err(err).Msg("redis dial failed")
		}
		return conn, err
	}
}

func (h *DebugHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(cmd.FullName(), 1, time.Since(start), err)
		return err
	}
}

func (h *DebugHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observe("pipeline", len(cmds), time.Since(start), err)
		return err
	}
}

func (h *DebugHook) observe(name string, n int, d time.Duration, err error) {
	switch {
	case err != nil && err != redis.Nil:
		h.logger.Warn().Str("cmd", name).Int("count", n).Dur("duration", d).Err(err).Msg("redis command failed")
	case h.slow > 0 && d > h.slow:
		h.logger.Warn().Str("cmd", name).Int("count", n).Dur("duration", d).Dur("threshold", h.slow).Msg("slow redis command")
	case h.verbose:
		h.logger.Debug().Str("cmd", name).Int("count", n).Dur("duration", d).Msg("redis command")
	}
}
