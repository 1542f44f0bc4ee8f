package redis

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/hiding/core/util/id"
	"github.com/kochabx/hiding/errors"
)

// newTestClient 本地没有 redis 时跳过
func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c, err := New(ctx, Config{Addrs: []string{"localhost:6379"}, DialTimeout: 500 * time.Millisecond})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestConfigMode(t *testing.T) {
	assert.Equal(t, "single", (&Config{Addrs: []string{"a:1"}}).Mode())
	assert.Equal(t, "cluster", (&Config{Addrs: []string{"a:1", "b:1"}}).Mode())
	assert.Equal(t, "sentinel", (&Config{Addrs: []string{"a:1"}, MasterName: "m"}).Mode())
	assert.False(t, (&Config{}).Enabled())
}

func TestNewWithoutAddrs(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrEmptyAddrs)
}

func TestNewUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, Config{Addrs: []string{"127.0.0.1:1"}, DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, errors.Code(err))
}

func TestCheck(t *testing.T) {
	c := newTestClient(t)
	s := c.Check(context.Background())
	assert.True(t, s.Healthy)
	assert.Empty(t, s.Error)
}

func TestSequence(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "hiding:test:seq:" + id.RequestID()
	t.Cleanup(func() { c.Universal().Del(context.Background(), key) })

	s := NewSequence(c, key, 10)
	first, err := s.Reserve(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), first)

	first, err = s.Reserve(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), first)

	_, err = s.Reserve(ctx, 1)
	assert.Equal(t, errors.CodeOutOfRange, errors.Code(err))

	// 失败的预留不占用序号
	n, err := c.Universal().Get(ctx, key).Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)
}
