package id

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kochabx/hiding/errors"
)

// RequestID 生成请求 id
func RequestID() string {
	return uuid.NewString()
}

// Sequence 分配连续序号
type Sequence interface {
	// Reserve 预留 n 个序号，返回第一个
	Reserve(ctx context.Context, n uint64) (uint64, error)
}

// Memory 进程内序号，取值范围 [next, limit)
type Memory struct {
	mu    sync.Mutex
	next  uint64
	limit uint64
}

// NewMemory 创建进程内序号
func NewMemory(start, limit uint64) *Memory {
	return &Memory{next: start, limit: limit}
}

// Reserve 实现 Sequence，序号耗尽时返回 OutOfRange
func (m *Memory) Reserve(_ context.Context, n uint64) (uint64, error) {
	if n == 0 {
		return 0, errors.BadRequest("reserve at least one serial")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if n > m.limit || m.next > m.limit-n {
		return 0, errors.OutOfRange("sequence exhausted").
			WithField("next", m.next).
			WithField("want", n)
	}
	first := m.next
	m.next += n
	return first, nil
}

// Next 返回下一个待分配的序号
func (m *Memory) Next() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next
}
