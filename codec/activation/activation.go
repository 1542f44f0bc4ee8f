// Package activation issues 16-character base-32 activation codes bound to a
// shop id and a card id.
//
// Code layout: 1 selector symbol + 15 body symbols carrying a 75-bit payload:
//
//	| 30 bit serial | 45 bit masked (27 bit shop id | 18 bit tag) |
//
// The mask is the leading 45 bits of the tag message, which starts with the
// secret salt derived from the serial. The selector is chosen from the card id
// alone, so ValidateCard can reject a code without touching the payload.
package activation

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/kochabx/hiding/codec"
	"github.com/kochabx/hiding/core/alphabet"
	"github.com/kochabx/hiding/core/bitpack"
	"github.com/kochabx/hiding/core/crypto/hmac"
	"github.com/kochabx/hiding/errors"
)

const (
	SerialBits   = 30
	ShopBits     = 27
	TagBits      = 18
	MaskedBits   = ShopBits + TagBits
	SelectorBits = 5
	BodyLen      = 15
	CodeLen      = BodyLen + 1

	// MaxSerial is the exclusive upper bound of serial numbers.
	MaxSerial uint32 = 1 << SerialBits

	maxShop = 1<<ShopBits - 1
	name    = "activation"
	radix   = 32
)

// Layout is the payload wire format.
var Layout = codec.Layout{
	{Name: "serial", Width: SerialBits},
	{Name: "masked", Width: MaskedBits},
}

// Generator issues and checks activation codes. Safe for concurrent use.
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

// WithSelector replaces the default card-derived coder selection.
func WithSelector(s codec.Selector) Option {
	return func(o *options) {
		o.selector = s
	}
}

// WithMetrics records generate and validate outcomes.
func WithMetrics(m *codec.Metrics) Option {
	return func(o *options) {
		o.metrics = m
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

	o := &options{selector: codec.Deterministic{}}
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

// Generate issues the code for serial in shopID, with its selector derived from cardID.
func (g *Generator) Generate(shopID string, cardID uint64, serial uint32) (string, error) {
	if serial >= MaxSerial {
		return "", errors.OutOfRange("serial must be below 2^%d", SerialBits).WithField("serial", serial)
	}
	shop, err := NormalizeShop(shopID)
	if err != nil {
		return "", err
	}

	ks := g.secret.Derive32(serial)
	mask, tag := seal(ks, serial, shopID)
	plain := bitpack.Concat(bitpack.MustUint64(shop, ShopBits), tag)

	payload := bitpack.Concat(bitpack.MustUint64(uint64(serial), SerialBits), plain.Xor(mask))
	digits, err := payload.Digits(radix, BodyLen)
	if err != nil {
		return "", err
	}

	g.observer.Generated()
	return g.table.Encode(g.row(cardID), digits), nil
}

// Parse checks that code was issued for shopID and returns its serial.
// Every failure returns errors.ErrInvalidCode.
func (g *Generator) Parse(shopID, code string) (uint32, error) {
	shop, err := NormalizeShop(shopID)
	if err != nil {
		return 0, g.observer.Reject(errors.Malformed("shop id %q", shopID))
	}

	_, digits, err := g.table.Decode(code, BodyLen)
	if err != nil {
		return 0, g.observer.Reject(err)
	}
	payload, err := bitpack.FromDigits(digits, radix, Layout.Width())
	if err != nil {
		return 0, g.observer.Reject(err)
	}

	serial := uint32(payload.Slice(0, SerialBits).Uint64())
	ks := g.secret.Derive32(serial)
	mask, tag := seal(ks, serial, shopID)
	plain := payload.Slice(SerialBits, Layout.Width()).Xor(mask)

	if plain.Slice(0, ShopBits).Uint64() != shop {
		return 0, g.observer.Reject(errors.Tampered("shop id mismatch"))
	}
	if !plain.Slice(ShopBits, MaskedBits).Equal(tag) {
		return 0, g.observer.Reject(errors.Tampered("tag mismatch"))
	}

	g.observer.Accepted()
	return serial, nil
}

// Validate reports whether code was issued for shopID.
func (g *Generator) Validate(shopID, code string) bool {
	_, err := g.Parse(shopID, code)
	return err == nil
}

// ValidateCard only checks that the selector of code matches cardID.
// It is a cheap pre-filter and proves nothing about the payload.
func (g *Generator) ValidateCard(code string, cardID uint64) bool {
	if len(code) != CodeLen {
		return false
	}
	return code[0] == g.table.Selector(g.row(cardID))
}

// Alphabets returns the configured table.
func (g *Generator) Alphabets() string {
	return g.table.String()
}

func (g *Generator) row(cardID uint64) int {
	return g.selector.Select(g.secret.Derive(cardID), g.table.Radix())
}

// seal returns the 45-bit mask and the 18-bit tag for serial in shopID.
// The tag message is salt ++ serial ++ shop id bytes.
func seal(ks codec.Keystream, serial uint32, shopID string) (mask, tag bitpack.Bits) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], serial)

	mask = bitpack.FromBytes(ks.Salt()).Slice(0, MaskedBits)
	tag = hmac.TagBits(TagBits, ks.MACKey(), ks.Salt(), b[:], []byte(shopID))
	return mask, tag
}

// NormalizeShop maps a shop id to its 27-bit field value. An optional leading
// 'A' is dropped. Ids above 2^27-1 keep their last 8 digits.
func NormalizeShop(shopID string) (uint64, error) {
	s := shopID
	if strings.HasPrefix(s, "A") || strings.HasPrefix(s, "a") {
		s = s[1:]
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.OutOfRange("shop id must be decimal").WithField("shop_id", shopID)
	}
	if v > maxShop {
		v, _ = strconv.ParseUint(s[len(s)-8:], 10, 64)
	}
	return v, nil
}

// GenerateAlphabets returns a fresh random table for New.
func GenerateAlphabets() string {
	return alphabet.Generate(alphabet.Base32, len(alphabet.Base32))
}
