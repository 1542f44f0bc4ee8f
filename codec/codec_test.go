package codec

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/hiding/errors"
)

const (
	testKey   = "KKKKKKKKKKKKKKKKKKKKKKKKKKKKKKKK"
	testNonce = "NNNNNNNNNNNN"
)

func TestNewSecret(t *testing.T) {
	_, err := NewSecret(testKey, testNonce, 0)
	require.NoError(t, err)
	_, err = NewSecret(testKey, testNonce[:8], 7)
	require.NoError(t, err)

	tests := []struct {
		name  string
		key   string
		nonce string
	}{
		{"31 byte key", testKey[:31], testNonce},
		{"33 byte key", testKey + "K", testNonce},
		{"non printable key", strings.Repeat("K", 31) + "\x01", testNonce},
		{"7 byte nonce", testKey, testNonce[:7]},
		{"11 byte nonce", testKey, testNonce[:11]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSecret(tt.key, tt.nonce, 0)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidConfig, errors.Code(err))
		})
	}
}

func TestKeystream(t *testing.T) {
	s, err := NewSecret(testKey, testNonce, 0)
	require.NoError(t, err)

	ks := s.Derive(6)
	assert.Len(t, ks, KeystreamSize)
	assert.Len(t, ks.MACKey(), 256)
	assert.Len(t, ks.Salt(), 256)
	assert.Equal(t, []byte(ks[:256]), ks.MACKey())
	assert.Equal(t, []byte(ks[256:]), ks.Salt())

	assert.Equal(t, ks, s.Derive(6))
	assert.NotEqual(t, ks, s.Derive32(6))
}

func TestKeystreamSum(t *testing.T) {
	assert.Equal(t, 0, Keystream{}.Sum())
	assert.Equal(t, -1+127-128+1, Keystream{0xff, 0x7f, 0x80, 0x01}.Sum())
}

func TestSelectors(t *testing.T) {
	s, err := NewSecret(testKey, testNonce, 0)
	require.NoError(t, err)
	src := rand.New(rand.NewPCG(1, 1))

	for v := range uint64(2000) {
		ks := s.Derive(v)

		r := Randomized{Source: src}.Select(ks, 10)
		assert.GreaterOrEqual(t, r, 1)
		assert.LessOrEqual(t, r, 9)

		r32 := Randomized{}.Select(ks, 32)
		assert.GreaterOrEqual(t, r32, 1)
		assert.LessOrEqual(t, r32, 31)

		d := Deterministic{}.Select(ks, 32)
		assert.GreaterOrEqual(t, d, 0)
		assert.Less(t, d, 32)
		assert.Equal(t, d, Deterministic{}.Select(ks, 32))
	}
}

type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }

func TestRandomizedFormula(t *testing.T) {
	ks := Keystream{0xff, 0xff, 0xff} // sum -3
	assert.Equal(t, 3%9+1, Randomized{Source: fixedSource(0)}.Select(ks, 10))
	assert.Equal(t, 0%9+1, Randomized{Source: fixedSource(3)}.Select(ks, 10))
	assert.Equal(t, 6%31+1, Randomized{Source: fixedSource(9)}.Select(ks, 32))
	assert.Equal(t, 3, Deterministic{}.Select(ks, 32))
}

func TestDefaultSource(t *testing.T) {
	src := DefaultSource()
	assert.Same(t, src, DefaultSource())

	done := make(chan struct{})
	for range 4 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 1000 {
				v := src.IntN(10)
				if v < 0 || v >= 10 {
					panic("draw out of range")
				}
			}
		}()
	}
	for range 4 {
		<-done
	}

	seen := map[int]bool{}
	s := NewLockedSource()
	for range 200 {
		seen[s.IntN(10)] = true
	}
	assert.Greater(t, len(seen), 5)
}

func TestLayout(t *testing.T) {
	l := Layout{{"number", 37}, {"tag", 19}}
	assert.Equal(t, 56, l.Width())
	assert.Equal(t, 0, l.Offset("number"))
	assert.Equal(t, 37, l.Offset("tag"))
	assert.Equal(t, -1, l.Offset("minute"))
}

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)
	o := NewObserver("number", m)

	o.Generated()
	o.Accepted()
	err := o.Reject(errors.Tampered("tag mismatch"))
	assert.Same(t, errors.ErrInvalidCode, err)
	assert.Same(t, errors.ErrInvalidCode, o.Reject(errors.Malformed("length")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generated.WithLabelValues("number")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Accepted.WithLabelValues("number")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("number", "tampered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("number", "malformed")))

	// nil metrics
	assert.Same(t, errors.ErrInvalidCode, NewObserver("number", nil).Reject(errors.Expired("late")))
}
