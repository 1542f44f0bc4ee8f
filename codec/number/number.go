// Package number obfuscates integers below 2^37 into 18-character decimal codes.
//
// Code layout: 1 selector digit + 17 body digits. The body is the decimal
// rendering of a 56-bit payload:
//
//	| 37 bit number | 19 bit tag |
//
// rendered through the alphabet row named by the selector.
package number

import (
	"encoding/binary"

	"github.com/kochabx/hiding/codec"
	"github.com/kochabx/hiding/core/alphabet"
	"github.com/kochabx/hiding/core/bitpack"
	"github.com/kochabx/hiding/core/crypto/hmac"
	"github.com/kochabx/hiding/errors"
)

const (
	NumberBits = 37
	TagBits    = 19
	BodyLen    = 17
	CodeLen    = BodyLen + 1

	// Max is the exclusive upper bound of encodable numbers.
	Max uint64 = 1 << NumberBits

	name  = "number"
	radix = 10
)

// Layout is the payload wire format.
var Layout = codec.Layout{
	{Name: "number", Width: NumberBits},
	{Name: "tag", Width: TagBits},
}

// Generator encodes and decodes numbers. It is safe for concurrent use.
type Generator struct {
	secret   codec.Secret
	table    *alphabet.Table
	selector codec.Selector
	observer codec.Observer
}

type options struct {
	selector codec.Selector
	metrics  *codec.Metrics
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

// New builds a Generator. alphabets must hold 10 comma-separated permutations of 0-9.
func New(key, nonce string, counter uint32, alphabets string, opts ...Option) (*Generator, error) {
	secret, err := codec.NewSecret(key, nonce, counter)
	if err != nil {
		return nil, err
	}
	table, err := alphabet.Parse(alphabet.Decimal, alphabets)
	if err != nil {
		return nil, err
	}

	o := &options{selector: codec.Randomized{Source: codec.DefaultSource()}}
	for _, opt := range opts {
		opt(o)
	}

	return &Generator{
		secret:   secret,
		table:    table,
		selector: o.selector,
		observer: codec.NewObserver(name, o.metrics),
	}, nil
}

// Generate encodes n. Two calls with the same n usually return different codes.
func (g *Generator) Generate(n uint64) (string, error) {
	number, err := bitpack.FromUint64(n, NumberBits)
	if err != nil {
		return "", errors.OutOfRange("number must be below 2^%d", NumberBits).WithField("number", n)
	}

	ks := g.secret.Derive(n)
	payload := number.Append(tag(ks, n))

	digits, err := payload.Digits(radix, BodyLen)
	if err != nil {
		return "", err
	}

	g.observer.Generated()
	return g.table.Encode(g.selector.Select(ks, g.table.Radix()), digits), nil
}

// Parse decodes code. Every failure returns errors.ErrInvalidCode.
func (g *Generator) Parse(code string) (uint64, error) {
	_, digits, err := g.table.Decode(code, BodyLen)
	if err != nil {
		return 0, g.observer.Reject(err)
	}

	payload, err := bitpack.FromDigits(digits, radix, Layout.Width())
	if err != nil {
		return 0, g.observer.Reject(err)
	}

	n := payload.Slice(0, NumberBits).Uint64()
	if !payload.Slice(NumberBits, NumberBits+TagBits).Equal(tag(g.secret.Derive(n), n)) {
		return 0, g.observer.Reject(errors.Tampered("tag mismatch"))
	}

	g.observer.Accepted()
	return n, nil
}

// Alphabets returns the configured table.
func (g *Generator) Alphabets() string {
	return g.table.String()
}

func tag(ks codec.Keystream, n uint64) bitpack.Bits {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return hmac.TagBits(TagBits, ks.MACKey(), ks.Salt(), b[:])
}

// GenerateAlphabets returns a fresh random table for New.
func GenerateAlphabets() string {
	return alphabet.Generate(alphabet.Decimal, len(alphabet.Decimal))
}
