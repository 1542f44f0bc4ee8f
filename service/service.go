// Package service 组合三种编码器，提供批量发码与 HTTP 接口
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kochabx/hiding/codec"
	"github.com/kochabx/hiding/codec/activation"
	"github.com/kochabx/hiding/codec/number"
	"github.com/kochabx/hiding/codec/timelong"
	"github.com/kochabx/hiding/codec/timenumber"
	"github.com/kochabx/hiding/core/tag"
	"github.com/kochabx/hiding/core/util/id"
	"github.com/kochabx/hiding/errors"
	"github.com/kochabx/hiding/log"
)

var (
	ErrNumberDisabled     = errors.NotFound("number codec is not configured")
	ErrTimeLongDisabled   = errors.NotFound("timelong codec is not configured")
	ErrTimeNumberDisabled = errors.NotFound("timenumber codec is not configured")
	ErrActivationDisabled = errors.NotFound("activation codec is not configured")
)

// codecs 一次配置加载生成的编码器，重载时整体替换
type codecs struct {
	number     *number.Generator
	timelong   *timelong.Generator
	timenumber *timenumber.Generator
	activation *activation.Generator
}

type Service struct {
	codecs   atomic.Pointer[codecs]
	opts     *options
	metrics  *codec.Metrics
	sequence id.Sequence
	pool     *ants.Pool
	maxCards int
}

type options struct {
	registerer prometheus.Registerer
	sequence   id.Sequence
	source     codec.Source
	now        func() time.Time
}

type Option func(*options)

// WithRegisterer 在 reg 上注册编码器指标
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithSequence 设置激活码序号来源，默认为进程内序号
func WithSequence(seq id.Sequence) Option {
	return func(o *options) {
		o.sequence = seq
	}
}

// WithSource 设置随机选择编码行的随机源
func WithSource(src codec.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithClock 设置 timelong 与 timenumber 的时间来源
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New 按配置创建服务，cfg 中未配置的编码器不启用
func New(cfg Config, opts ...Option) (*Service, error) {
	if err := tag.ApplyDefaults(&cfg); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	s := &Service{
		opts:     o,
		sequence: o.sequence,
		maxCards: cfg.Batch.MaxCards,
	}
	if o.registerer != nil {
		s.metrics = codec.NewMetrics("hiding", o.registerer)
	}
	if s.sequence == nil {
		s.sequence = id.NewMemory(0, uint64(activation.MaxSerial))
	}

	cs, err := s.build(cfg)
	if err != nil {
		return nil, err
	}
	s.codecs.Store(cs)

	s.pool, err = ants.NewPool(cfg.Batch.PoolSize, ants.WithPanicHandler(func(p any) {
		log.Error().Any("panic", p).Msg("batch worker panic")
	}))
	if err != nil {
		return nil, errors.InvalidConfig("create batch pool").WithCause(err)
	}

	log.Info().
		Bool("number", cs.number != nil).
		Bool("timelong", cs.timelong != nil).
		Bool("timenumber", cs.timenumber != nil).
		Bool("activation", cs.activation != nil).
		Msg("codecs ready")
	return s, nil
}

func (s *Service) build(cfg Config) (*codecs, error) {
	cs := &codecs{}

	if c := cfg.Number; c.Enabled() {
		opts := []number.Option{number.WithMetrics(s.metrics)}
		if s.opts.source != nil {
			opts = append(opts, number.WithSource(s.opts.source))
		}
		g, err := number.New(c.Key, c.Nonce, c.Counter, c.Alphabets, opts...)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "number codec")
		}
		cs.number = g
	}

	if c := cfg.TimeLong; c.Enabled() {
		opts := []timelong.Option{timelong.WithMetrics(s.metrics)}
		if s.opts.source != nil {
			opts = append(opts, timelong.WithSource(s.opts.source))
		}
		if s.opts.now != nil {
			opts = append(opts, timelong.WithClock(s.opts.now))
		}
		g, err := timelong.New(c.Key, c.Nonce, c.Counter, c.Alphabets, opts...)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "timelong codec")
		}
		cs.timelong = g
	}

	if c := cfg.TimeNumber; c.Enabled() {
		opts := []timenumber.Option{timenumber.WithMetrics(s.metrics)}
		if s.opts.source != nil {
			opts = append(opts, timenumber.WithSource(s.opts.source))
		}
		if s.opts.now != nil {
			opts = append(opts, timenumber.WithClock(s.opts.now))
		}
		g, err := timenumber.New(c.Key, c.Nonce, c.Counter, c.Alphabets, opts...)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "timenumber codec")
		}
		cs.timenumber = g
	}

	if c := cfg.Activation; c.Enabled() {
		g, err := activation.New(c.Key, c.Nonce, c.Counter, c.Alphabets, activation.WithMetrics(s.metrics))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "activation codec")
		}
		cs.activation = g
	}

	return cs, nil
}

// Reload 用新配置重建编码器，失败时保留原有编码器。批量与序号配置不随重载变化
func (s *Service) Reload(cfg Config) error {
	if err := tag.ApplyDefaults(&cfg); err != nil {
		return err
	}
	cs, err := s.build(cfg)
	if err != nil {
		return err
	}
	s.codecs.Store(cs)
	log.Info().Msg("codecs reloaded")
	return nil
}

// Number 返回 number 编码器，未配置时返回 nil
func (s *Service) Number() *number.Generator {
	return s.codecs.Load().number
}

// TimeLong 返回 timelong 编码器，未配置时返回 nil
func (s *Service) TimeLong() *timelong.Generator {
	return s.codecs.Load().timelong
}

// TimeNumber 返回 timenumber 编码器，未配置时返回 nil
func (s *Service) TimeNumber() *timenumber.Generator {
	return s.codecs.Load().timenumber
}

// Activation 返回 activation 编码器，未配置时返回 nil
func (s *Service) Activation() *activation.Generator {
	return s.codecs.Load().activation
}

// Issued 批量发放的一张激活码
type Issued struct {
	CardID uint64 `json:"card_id"`
	Serial uint32 `json:"serial"`
	Code   string `json:"code"`
}

// IssueActivationBatch 为 cardIDs 预留连续序号并并发生成激活码，结果顺序与 cardIDs 一致
func (s *Service) IssueActivationBatch(ctx context.Context, shopID string, cardIDs []uint64) ([]Issued, error) {
	g := s.Activation()
	if g == nil {
		return nil, ErrActivationDisabled
	}
	if len(cardIDs) == 0 {
		return nil, errors.BadRequest("card ids cannot be empty")
	}
	if len(cardIDs) > s.maxCards {
		return nil, errors.BadRequest("at most %d cards per batch", s.maxCards).WithField("cards", len(cardIDs))
	}
	if _, err := activation.NormalizeShop(shopID); err != nil {
		return nil, err
	}

	first, err := s.sequence.Reserve(ctx, uint64(len(cardIDs)))
	if err != nil {
		return nil, err
	}

	out := make([]Issued, len(cardIDs))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() { firstErr = err })
	}

	for i, card := range cardIDs {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		serial := uint32(first) + uint32(i)
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			code, err := g.Generate(shopID, card, serial)
			if err != nil {
				fail(err)
				return
			}
			out[i] = Issued{CardID: card, Serial: serial, Code: code}
		})
		if err != nil {
			wg.Done()
			fail(errors.ServiceUnavailable("submit batch task").WithCause(err))
			break
		}
	}
	wg.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		log.Warn().Err(firstErr).Str("shop_id", shopID).Uint64("first_serial", first).Int("cards", len(cardIDs)).Msg("activation batch aborted")
		return nil, firstErr
	}
	return out, nil
}

// Close 释放批量任务池
func (s *Service) Close(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		s.pool.Release()
		return nil
	}
	return s.pool.ReleaseTimeout(time.Until(deadline))
}
