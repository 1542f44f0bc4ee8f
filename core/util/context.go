package util

import (
	"context"

	"github.com/kochabx/hiding/errors"
)

type ctxKey int

const requestIDKey ctxKey = iota

// CtxValue 取出 key 对应的值，不存在或类型不符时返回错误
func CtxValue[T any](ctx context.Context, key any) (T, error) {
	var zero T
	if ctx == nil {
		return zero, errors.Internal("context is nil, key: %v", key)
	}
	val := ctx.Value(key)
	if val == nil {
		return zero, errors.Internal("context value not found, key: %v", key)
	}
	v, ok := val.(T)
	if !ok {
		return zero, errors.Internal("context value type mismatch, key: %v, expected: %T, got: %T", key, zero, val)
	}
	return v, nil
}

// WithRequestID 写入请求 id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID 读取请求 id，不存在时返回空串
func RequestID(ctx context.Context) string {
	id, _ := CtxValue[string](ctx, requestIDKey)
	return id
}
