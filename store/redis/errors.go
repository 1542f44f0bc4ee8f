package redis

import (
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/hiding/errors"
)

var (
	// ErrNil key 不存在
	ErrNil = redis.Nil

	ErrEmptyAddrs = errors.InvalidConfig("redis addrs cannot be empty")
)
