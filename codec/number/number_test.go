package number

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/hiding/codec"
	"github.com/kochabx/hiding/core/alphabet"
	"github.com/kochabx/hiding/core/bitpack"
	"github.com/kochabx/hiding/errors"
)

const (
	testKey       = "KKKKKKKKKKKKKKKKKKKKKKKKKKKKKKKK"
	testNonce     = "NNNNNNNNNNNN"
	testAlphabets = "5032478619,2704168539,9814072536,6193284705,3658920417," +
		"1479635028,8265301974,0927513846,4381756290,7546829103"
)

func newTestGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	g, err := New(testKey, testNonce, 0, testAlphabets, opts...)
	require.NoError(t, err)
	return g
}

func TestLayoutWidth(t *testing.T) {
	assert.Equal(t, 56, Layout.Width())
	assert.LessOrEqual(t, Layout.Width(), bitpack.Capacity(10, BodyLen))
	assert.Equal(t, NumberBits, Layout.Offset("tag"))
}

func TestExample(t *testing.T) {
	g := newTestGenerator(t, WithSource(rand.New(rand.NewPCG(1, 2))))

	code, err := g.Generate(6)
	require.NoError(t, err)
	assert.Len(t, code, CodeLen)

	n, err := g.Parse(code)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), n)

	last := code[len(code)-1]
	bumped := code[:len(code)-1] + string('0'+(last-'0'+1)%10)
	_, err = g.Parse(bumped)
	assert.ErrorIs(t, err, errors.ErrInvalidCode)
}

func TestRoundTrip(t *testing.T) {
	g := newTestGenerator(t)

	for _, n := range []uint64{0, 1, Max - 1} {
		code, err := g.Generate(n)
		require.NoError(t, err)
		got, err := g.Parse(code)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	r := rand.New(rand.NewPCG(42, 42))
	for range 10000 {
		n := r.Uint64N(Max)
		code, err := g.Generate(n)
		require.NoError(t, err)
		require.Len(t, code, CodeLen)
		for i := 0; i < len(code); i++ {
			require.Contains(t, alphabet.Decimal, string(code[i]))
		}

		got, err := g.Parse(code)
		require.NoError(t, err, "code %s", code)
		require.Equal(t, n, got)
	}
}

func TestGenerateOutOfRange(t *testing.T) {
	g := newTestGenerator(t)
	for _, n := range []uint64{Max, Max + 1, 1<<64 - 1} {
		_, err := g.Generate(n)
		require.Error(t, err)
		assert.Equal(t, errors.CodeOutOfRange, errors.Code(err))
	}
}

func TestSelectorVaries(t *testing.T) {
	g := newTestGenerator(t, WithSource(rand.New(rand.NewPCG(3, 4))))

	seen := map[string]bool{}
	for range 50 {
		code, err := g.Generate(123456789)
		require.NoError(t, err)
		seen[code] = true
		assert.NotEqual(t, testAlphabets[0], code[0], "row 0 is never used for the body")
	}
	assert.Greater(t, len(seen), 1)
}

func TestSeededSourceIsReproducible(t *testing.T) {
	a := newTestGenerator(t, WithSource(rand.New(rand.NewPCG(9, 9))))
	b := newTestGenerator(t, WithSource(rand.New(rand.NewPCG(9, 9))))
	for n := range uint64(100) {
		ca, err := a.Generate(n)
		require.NoError(t, err)
		cb, err := b.Generate(n)
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
	}
}

func TestDeterministicSelector(t *testing.T) {
	g := newTestGenerator(t, WithSelector(codec.Deterministic{}))
	first, err := g.Generate(987654321)
	require.NoError(t, err)
	second, err := g.Generate(987654321)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	n, err := g.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uint64(987654321), n)
}

// 19 位标签的误接受率约为 2^-19
func TestTamperDetection(t *testing.T) {
	g := newTestGenerator(t)
	r := rand.New(rand.NewPCG(5, 6))

	trials, accepted := 0, 0
	for range 200 {
		code, err := g.Generate(r.Uint64N(Max))
		require.NoError(t, err)

		for pos := 0; pos < len(code); pos++ {
			b := []byte(code)
			b[pos] = '0' + (b[pos]-'0'+byte(1+r.IntN(9)))%10
			trials++
			if _, err := g.Parse(string(b)); err == nil {
				accepted++
			}
		}
	}
	assert.Equal(t, 200*CodeLen, trials)
	assert.LessOrEqual(t, accepted, 2)
}

func TestParseRejects(t *testing.T) {
	g := newTestGenerator(t)
	code, err := g.Generate(42)
	require.NoError(t, err)

	inputs := []string{
		"",
		code[:CodeLen-1],
		code + "0",
		"A" + code[1:],
		code[:5] + " " + code[6:],
		"0" + strings.Repeat("9", BodyLen), // row 1 maps 9 to 9, 10^17-1 needs 57 bits
	}
	for _, in := range inputs {
		_, err := g.Parse(in)
		assert.ErrorIs(t, err, errors.ErrInvalidCode, "input %q", in)
	}
}

func TestCrossKeyRejects(t *testing.T) {
	a := newTestGenerator(t)
	b, err := New(strings.Repeat("Q", 32), testNonce, 0, testAlphabets)
	require.NoError(t, err)

	rejected := 0
	for n := range uint64(100) {
		code, err := a.Generate(n)
		require.NoError(t, err)
		if _, err := b.Parse(code); err != nil {
			rejected++
		}
	}
	assert.GreaterOrEqual(t, rejected, 99)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(testKey[:31], testNonce, 0, testAlphabets)
	assert.Error(t, err)
	_, err = New(testKey, testNonce[:7], 0, testAlphabets)
	assert.Error(t, err)
	_, err = New(testKey, testNonce, 0, strings.Replace(testAlphabets, "5032478619", "5032478610", 1))
	assert.Error(t, err)
	_, err = New(testKey, testNonce, 0, GenerateAlphabets())
	assert.NoError(t, err)
}

func TestConcurrentUse(t *testing.T) {
	g := newTestGenerator(t)
	done := make(chan error, 8)
	for w := range 8 {
		go func() {
			for i := range 200 {
				n := uint64(w*1000 + i)
				code, err := g.Generate(n)
				if err != nil {
					done <- err
					return
				}
				got, err := g.Parse(code)
				if err != nil || got != n {
					done <- errors.Internal("round trip failed for %d", n)
					return
				}
			}
			done <- nil
		}()
	}
	for range 8 {
		assert.NoError(t, <-done)
	}
}

func BenchmarkGenerate(b *testing.B) {
	g, _ := New(testKey, testNonce, 0, testAlphabets)
	for i := 0; b.Loop(); i++ {
		_, _ = g.Generate(uint64(i))
	}
}

func BenchmarkParse(b *testing.B) {
	g, _ := New(testKey, testNonce, 0, testAlphabets)
	code, _ := g.Generate(13800138000)
	for b.Loop() {
		_, _ = g.Parse(code)
	}
}
