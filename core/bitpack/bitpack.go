// Package bitpack converts between fixed-width unsigned integers, byte buffers,
// bit strings and fixed-length digit strings. Bit order is big-endian throughout:
// bit 0 is the most significant bit of the first byte or field.
package bitpack

import (
	"math/big"
	"strings"

	"github.com/kochabx/hiding/errors"
)

// Bits is an immutable bit string of a fixed width.
type Bits struct {
	v *big.Int
	n int
}

// Empty returns a zero-width bit string.
func Empty() Bits {
	return Bits{v: new(big.Int)}
}

// FromUint64 returns v as a width-bit string, zero-padded on the left.
func FromUint64(v uint64, width int) (Bits, error) {
	return FromBig(new(big.Int).SetUint64(v), width)
}

// FromBig returns v as a width-bit string. v must be non-negative.
func FromBig(v *big.Int, width int) (Bits, error) {
	if width < 0 || v.Sign() < 0 || v.BitLen() > width {
		return Bits{}, errors.ValueTooWide("value does not fit in %d bits", width).WithField("bitlen", v.BitLen())
	}
	return Bits{v: new(big.Int).Set(v), n: width}, nil
}

// MustUint64 is FromUint64 for values known to fit. It panics otherwise.
func MustUint64(v uint64, width int) Bits {
	b, err := FromUint64(v, width)
	if err != nil {
		panic(err)
	}
	return b
}

// FromBytes returns the 8*len(p) bits of p, most significant byte first.
func FromBytes(p []byte) Bits {
	return Bits{v: new(big.Int).SetBytes(p), n: 8 * len(p)}
}

// Len returns the width in bits.
func (b Bits) Len() int {
	return b.n
}

// Big returns a copy of the value.
func (b Bits) Big() *big.Int {
	if b.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.v)
}

// Uint64 returns the value. Only meaningful for widths up to 64.
func (b Bits) Uint64() uint64 {
	if b.v == nil {
		return 0
	}
	return b.v.Uint64()
}

// Append returns b followed by others.
func (b Bits) Append(others ...Bits) Bits {
	v := b.Big()
	n := b.n
	for _, o := range others {
		v.Lsh(v, uint(o.n))
		if o.v != nil {
			v.Or(v, o.v)
		}
		n += o.n
	}
	return Bits{v: v, n: n}
}

// Concat joins parts in order.
func Concat(parts ...Bits) Bits {
	return Empty().Append(parts...)
}

// Slice returns bits [i, j). It panics if the range is out of bounds.
func (b Bits) Slice(i, j int) Bits {
	if i < 0 || j < i || j > b.n {
		panic("bitpack: slice out of range")
	}

	v := b.Big()
	v.Rsh(v, uint(b.n-j))
	mask := new(big.Int).Lsh(big.NewInt(1), uint(j-i))
	mask.Sub(mask, big.NewInt(1))
	v.And(v, mask)
	return Bits{v: v, n: j - i}
}

// Xor returns b XOR o. Both must have the same width.
func (b Bits) Xor(o Bits) Bits {
	if b.n != o.n {
		panic("bitpack: xor of different widths")
	}
	return Bits{v: new(big.Int).Xor(b.Big(), o.Big()), n: b.n}
}

// Equal reports whether b and o have the same width and value.
func (b Bits) Equal(o Bits) bool {
	return b.n == o.n && b.Big().Cmp(o.Big()) == 0
}

// String renders b as a string of '0' and '1' of exactly Len characters.
func (b Bits) String() string {
	if b.n == 0 {
		return ""
	}
	s := b.Big().Text(2)
	return strings.Repeat("0", b.n-len(s)) + s
}

// Digits renders the value as exactly length digits in radix, most significant first.
func (b Bits) Digits(radix, length int) ([]int, error) {
	v := b.Big()
	limit := new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(length)), nil)
	if v.Cmp(limit) >= 0 {
		return nil, errors.ValueTooWide("value does not fit in %d base-%d digits", length, radix)
	}

	out := make([]int, length)
	r := big.NewInt(int64(radix))
	var rem big.Int
	for i := length - 1; i >= 0; i-- {
		v.DivMod(v, r, &rem)
		out[i] = int(rem.Int64())
	}
	return out, nil
}

// FromDigits parses digits in radix, most significant first, into a width-bit string.
// It fails if a digit is outside the radix or the number needs more than width bits.
func FromDigits(digits []int, radix, width int) (Bits, error) {
	v := new(big.Int)
	r := big.NewInt(int64(radix))
	for _, d := range digits {
		if d < 0 || d >= radix {
			return Bits{}, errors.Malformed("digit %d outside radix %d", d, radix)
		}
		v.Mul(v, r)
		v.Add(v, big.NewInt(int64(d)))
	}
	return FromBig(v, width)
}

// Capacity returns the largest bit width every value of which fits in length radix digits.
func Capacity(radix, length int) int {
	limit := new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(length)), nil)
	return limit.BitLen() - 1
}
