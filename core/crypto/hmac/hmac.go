package hmac

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/kochabx/hiding/errors"
)

// 管理接口请求签名: HMAC-SHA256(secret, timestamp + "\n" + payload)

// SignResult 签名结果
type SignResult struct {
	Signature string
	Timestamp int64
}

// Option 签名和验证选项
type Option struct {
	payload    []byte
	expiration time.Duration
	now        func() time.Time
}

// WithPayload 设置参与签名的请求体
func WithPayload(payload []byte) func(*Option) {
	return func(o *Option) {
		o.payload = payload
	}
}

// WithExpiration 设置签名有效期，默认为 5 分钟
func WithExpiration(d time.Duration) func(*Option) {
	return func(o *Option) {
		o.expiration = d
	}
}

// WithClock 设置时间来源
func WithClock(fn func() time.Time) func(*Option) {
	return func(o *Option) {
		o.now = fn
	}
}

func newOption(opts ...func(*Option)) *Option {
	opt := &Option{
		expiration: 5 * time.Minute,
		now:        time.Now,
	}
	for _, o := range opts {
		o(opt)
	}
	return opt
}

// Sign 生成请求签名
func Sign(secret string, opts ...func(*Option)) (*SignResult, error) {
	if secret == "" {
		return nil, errors.InvalidConfig("signing secret cannot be empty")
	}

	opt := newOption(opts...)
	timestamp := opt.now().Unix()

	return &SignResult{
		Signature: hex.EncodeToString(signature(secret, timestamp, opt.payload)),
		Timestamp: timestamp,
	}, nil
}

// Verify 验证请求签名，签名使用十六进制编码
func Verify(secret, sig string, timestamp int64, opts ...func(*Option)) error {
	if secret == "" {
		return errors.InvalidConfig("signing secret cannot be empty")
	}
	if sig == "" {
		return errors.Unauthorized("signature cannot be empty")
	}
	if timestamp <= 0 {
		return errors.Unauthorized("invalid timestamp")
	}

	opt := newOption(opts...)

	elapsed := opt.now().Unix() - timestamp
	if elapsed > int64(opt.expiration.Seconds()) {
		return errors.Unauthorized("signature expired")
	}
	if elapsed < 0 {
		return errors.Unauthorized("timestamp is in the future")
	}

	got, err := hex.DecodeString(sig)
	if err != nil {
		return errors.Unauthorized("invalid signature format")
	}

	// 常量时间比较
	if !hmac.Equal(got, signature(secret, timestamp, opt.payload)) {
		return errors.Unauthorized("signature mismatch")
	}

	return nil
}

func signature(secret string, timestamp int64, payload []byte) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(strconv.AppendInt(nil, timestamp, 10))
	h.Write([]byte{'\n'})
	h.Write(payload)
	return h.Sum(nil)
}
