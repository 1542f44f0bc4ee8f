// Package timelong obfuscates 64-bit integers into 20-character base-32 codes
// that stay valid for the minute they were issued in and the next one.
//
// Code layout: 1 selector symbol + 19 body symbols carrying a 95-bit payload:
//
//	| 64 bit number | 20 bit tag | 11 bit minute of day |
//
// The tag covers the full minute stamp (minutes since 2018-01-01 UTC), so a
// code cannot be replayed on another day even though only the minute of day
// travels in the payload.
package timelong

import (
	"encoding/binary"
	"time"

	"github.com/kochabx/hiding/codec"
	"github.com/kochabx/hiding/core/alphabet"
	"github.com/kochabx/hiding/core/bitpack"
	"github.com/kochabx/hiding/core/crypto/hmac"
	"github.com/kochabx/hiding/errors"
)

const (
	NumberBits = 64
	TagBits    = 20
	MinuteBits = 11
	BodyLen    = 19
	CodeLen    = BodyLen + 1

	MinutesPerDay = codec.MinutesPerDay

	name  = "timelong"
	radix = 32
)

// Epoch is the origin of full minute stamps.
var Epoch = codec.Epoch

// Layout is the payload wire format.
var Layout = codec.Layout{
	{Name: "number", Width: NumberBits},
	{Name: "tag", Width: TagBits},
	{Name: "minute", Width: MinuteBits},
}

// Generator encodes and decodes numbers with a validity window. Safe for concurrent use.
type Generator struct {
	secret   codec.Secret
	table    *alphabet.Table
	selector codec.Selector
	observer codec.Observer
	now      func() time.Time
}

type options struct {
	selector codec.Selector
	metrics  *codec.Metrics
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*options)

// WithSelector replaces the default randomized coder selection.
func WithSelector(s codec.Selector) Option {
	return func(o *options) {
		o.selector = s
	}
}

// WithSource keeps randomized selection but draws from src.
func WithSource(src codec.Source) Option {
	return func(o *options) {
		o.selector = codec.Randomized{Source: src}
	}
}

// WithMetrics records generate and parse outcomes.
func WithMetrics(m *codec.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock sets the time source, time.Now by default.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New builds a Generator. alphabets must hold 32 comma-separated permutations of alphabet.Base32.
func New(key, nonce string, counter uint32, alphabets string, opts ...Option) (*Generator, error) {
	secret, err := codec.NewSecret(key, nonce, counter)
	if err != nil {
		return nil, err
	}
	table, err := alphabet.Parse(alphabet.Base32, alphabets)
	if err != nil {
		return nil, err
	}

	o := &options{
		selector: codec.Randomized{Source: codec.DefaultSource()},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Generator{
		secret:   secret,
		table:    table,
		selector: o.selector,
		observer: codec.NewObserver(name, o.metrics),
		now:      o.now,
	}, nil
}

// Generate encodes n together with the current minute.
func (g *Generator) Generate(n uint64) (string, error) {
	stamp := codec.MinuteStamp(g.now())
	ks := g.secret.Derive(n)

	payload := bitpack.Concat(
		bitpack.MustUint64(n, NumberBits),
		tag(ks, n, stamp),
		bitpack.MustUint64(stamp%MinutesPerDay, MinuteBits),
	)

	digits, err := payload.Digits(radix, BodyLen)
	if err != nil {
		return "", err
	}

	g.observer.Generated()
	return g.table.Encode(g.selector.Select(ks, g.table.Radix()), digits), nil
}

type parseOptions struct {
	checkExpiry bool
}

// ParseOption adjusts a single Parse call.
type ParseOption func(*parseOptions)

// CheckExpiry toggles the validity window check. Authenticity is always checked.
func CheckExpiry(check bool) ParseOption {
	return func(o *parseOptions) {
		o.checkExpiry = check
	}
}

// Parse decodes code. Every failure returns errors.ErrInvalidCode.
func (g *Generator) Parse(code string, opts ...ParseOption) (uint64, error) {
	o := &parseOptions{checkExpiry: true}
	for _, opt := range opts {
		opt(o)
	}

	_, digits, err := g.table.Decode(code, BodyLen)
	if err != nil {
		return 0, g.observer.Reject(err)
	}

	payload, err := bitpack.FromDigits(digits, radix, Layout.Width())
	if err != nil {
		return 0, g.observer.Reject(err)
	}

	n := payload.Slice(0, NumberBits).Uint64()
	got := payload.Slice(NumberBits, NumberBits+TagBits)
	origin := payload.Slice(NumberBits+TagBits, Layout.Width()).Uint64()
	if origin >= MinutesPerDay {
		return 0, g.observer.Reject(errors.Malformed("minute of day %d", origin))
	}

	now := codec.MinuteStamp(g.now())
	if o.checkExpiry && !codec.WithinWindow(origin, now%MinutesPerDay) {
		return 0, g.observer.Reject(errors.Expired("issued at minute %d", origin))
	}

	ks := g.secret.Derive(n)
	valid := func(stamp uint64) bool { return tag(ks, n, stamp).Equal(got) }
	if _, err := codec.MatchStamp(origin, now, o.checkExpiry, valid); err != nil {
		return 0, g.observer.Reject(err)
	}
	g.observer.Accepted()
	return n, nil
}

// Alphabets returns the configured table.
func (g *Generator) Alphabets() string {
	return g.table.String()
}

func tag(ks codec.Keystream, n, stamp uint64) bitpack.Bits {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], stamp*codec.StampShift+n)
	return hmac.TagBits(TagBits, ks.MACKey(), ks.Salt(), b[:])
}

// GenerateAlphabets returns a fresh random table for New.
func GenerateAlphabets() string {
	return alphabet.Generate(alphabet.Base32, len(alphabet.Base32))
}
