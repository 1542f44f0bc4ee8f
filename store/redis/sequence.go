package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/hiding/core/util/id"
	"github.com/kochabx/hiding/errors"
)

var _ id.Sequence = (*Sequence)(nil)

// 计数器保存下一个待分配序号，超出上限时回滚本次预留
var reserveScript = redis.NewScript(`
local next = redis.call('INCRBY', KEYS[1], ARGV[1])
if next > tonumber(ARGV[2]) then
  redis.call('DECRBY', KEYS[1], ARGV[1])
  return -1
end
return next - tonumber(ARGV[1])
`)

// Sequence 基于 INCRBY 的跨实例序号，取值范围 [0, limit)
type Sequence struct {
	client redis.UniversalClient
	key    string
	limit  uint64
}

// NewSequence 创建序号，key 为计数器键
func NewSequence(c *Client, key string, limit uint64) *Sequence {
	return &Sequence{client: c.Universal(), key: key, limit: limit}
}

// Reserve 实现 id.Sequence
func (s *Sequence) Reserve(ctx context.Context, n uint64) (uint64, error) {
	if n == 0 {
		return 0, errors.BadRequest("reserve at least one serial")
	}
	first, err := reserveScript.Run(ctx, s.client, []string{s.key}, n, s.limit).Int64()
	if err != nil {
		return 0, errors.ServiceUnavailable("reserve serials").WithCause(err)
	}
	if first < 0 {
		return 0, errors.OutOfRange("sequence exhausted").WithField("key", s.key).WithField("want", n)
	}
	return uint64(first), nil
}
