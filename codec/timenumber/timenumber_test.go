package timenumber

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/hiding/core/alphabet"
	"github.com/kochabx/hiding/core/bitpack"
	"github.com/kochabx/hiding/errors"
)

const (
	testKey   = "KKKKKKKKKKKKKKKKKKKKKKKKKKKKKKKK"
	testNonce = "NNNNNNNNNNNN"
)

var testAlphabets = alphabet.GenerateRand(rand.New(rand.NewPCG(2018, 9)), alphabet.Decimal, 10)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func newTestGenerator(t *testing.T, at time.Time, opts ...Option) (*Generator, *clock) {
	t.Helper()
	c := &clock{t: at}
	g, err := New(testKey, testNonce, 0, testAlphabets, append([]Option{WithClock(c.now)}, opts...)...)
	require.NoError(t, err)
	return g, c
}

func TestLayoutWidth(t *testing.T) {
	assert.Equal(t, 63, Layout.Width())
	assert.Equal(t, bitpack.Capacity(radix, BodyLen), Layout.Width())
	assert.Equal(t, 52, Layout.Offset("minute"))
	assert.Less(t, Max, uint64(1)<<NumberBits)
}

func TestRoundTrip(t *testing.T) {
	g, _ := newTestGenerator(t, time.Date(2026, 3, 1, 10, 0, 30, 0, time.UTC))

	for _, n := range []uint64{0, 1, 13800138000, Max - 1} {
		code, err := g.Generate(n)
		require.NoError(t, err)
		got, err := g.Parse(code)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	r := rand.New(rand.NewPCG(7, 7))
	for range 10000 {
		n := r.Uint64N(Max)
		code, err := g.Generate(n)
		require.NoError(t, err)
		require.Len(t, code, CodeLen)
		for i := 0; i < len(code); i++ {
			require.True(t, strings.IndexByte(alphabet.Decimal, code[i]) >= 0, "code %s", code)
		}

		got, err := g.Parse(code)
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestGenerateOutOfRange(t *testing.T) {
	g, _ := newTestGenerator(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	for _, n := range []uint64{Max, 1 << NumberBits, 1<<64 - 1} {
		_, err := g.Generate(n)
		require.Error(t, err)
		assert.Equal(t, errors.CodeOutOfRange, errors.Code(err))
	}
}

func TestExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	g, c := newTestGenerator(t, issued)

	code, err := g.Generate(42)
	require.NoError(t, err)

	tests := []struct {
		at    time.Duration
		valid bool
	}{
		{0, true},
		{54 * time.Second, true},
		{time.Minute + 54*time.Second, true},
		{time.Minute + 55*time.Second, false},
		{10 * time.Minute, false},
		{-time.Minute, false},
		{24 * time.Hour, false},
	}
	for _, tt := range tests {
		c.t = issued.Add(tt.at)
		n, err := g.Parse(code)
		if tt.valid {
			require.NoError(t, err, "at %v", tt.at)
			assert.Equal(t, uint64(42), n)
		} else {
			assert.ErrorIs(t, err, errors.ErrInvalidCode, "at %v", tt.at)
		}
	}
}

func TestExpiryAcrossMidnight(t *testing.T) {
	issued := time.Date(2026, 3, 1, 23, 59, 10, 0, time.UTC)
	g, c := newTestGenerator(t, issued)

	code, err := g.Generate(7)
	require.NoError(t, err)

	c.t = time.Date(2026, 3, 2, 0, 0, 40, 0, time.UTC)
	n, err := g.Parse(code)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	c.t = time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)
	_, err = g.Parse(code)
	assert.ErrorIs(t, err, errors.ErrInvalidCode)
}

func TestTamperDetection(t *testing.T) {
	g, _ := newTestGenerator(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	r := rand.New(rand.NewPCG(15, 15))

	accepted := 0
	for range 200 {
		code, err := g.Generate(r.Uint64N(Max))
		require.NoError(t, err)

		for pos := 1; pos < len(code); pos++ {
			b := []byte(code)
			b[pos] = '0' + (b[pos]-'0'+byte(1+r.IntN(9)))%10
			if _, err := g.Parse(string(b)); err == nil {
				accepted++
			}
		}
	}
	// 3800 次篡改，15 位标签下期望误接受约 0.1
	assert.LessOrEqual(t, accepted, 3)
}

func TestParseRejectsMalformed(t *testing.T) {
	g, _ := newTestGenerator(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	code, err := g.Generate(1)
	require.NoError(t, err)

	for _, in := range []string{"", code[1:], code + "0", "A" + code[1:], "0" + strings.Repeat("9", BodyLen)} {
		_, err := g.Parse(in)
		assert.ErrorIs(t, err, errors.ErrInvalidCode, "input %q", in)
	}
}

func TestNewInvalid(t *testing.T) {
	_, err := New(testKey, testNonce, 0, alphabet.Generate(alphabet.Base32, 32))
	assert.Error(t, err)
	_, err = New(testKey[:31], testNonce, 0, testAlphabets)
	assert.Error(t, err)
	_, err = New(testKey, testNonce, 0, GenerateAlphabets())
	assert.NoError(t, err)
}
