package alphabet

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/hiding/errors"
)

const decimalTable = "5032478619,2704168539,9814072536,6193284705,3658920417," +
	"1479635028,8265301974,0927513846,4381756290,7546829103"

func TestParse(t *testing.T) {
	table, err := Parse(Decimal, decimalTable)
	require.NoError(t, err)
	assert.Equal(t, 10, table.Radix())
	assert.Equal(t, decimalTable, table.String())
	assert.Equal(t, Decimal, table.Symbols())

	assert.Equal(t, byte('0'), table.Selector(1))
	row, ok := table.Row('0')
	assert.True(t, ok)
	assert.Equal(t, 1, row)
}

func TestParseInvalid(t *testing.T) {
	rows := strings.Split(decimalTable, ",")

	tests := []struct {
		name string
		list string
	}{
		{"empty", ""},
		{"nine rows", strings.Join(rows[:9], ",")},
		{"eleven rows", decimalTable + ",0123456789"},
		{"duplicate symbol", strings.Replace(decimalTable, "5032478619", "5032478615", 1)},
		{"missing symbol", strings.Replace(decimalTable, "5032478619", "503247861", 1)},
		{"foreign symbol", strings.Replace(decimalTable, "5032478619", "503247861A", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(Decimal, tt.list)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidConfig, errors.Code(err))
		})
	}

	_, err := Parse("", "")
	assert.Error(t, err)
	_, err = Parse("00", "00,00")
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	table, err := Parse(Decimal, decimalTable)
	require.NoError(t, err)

	digits := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	code := table.Encode(3, digits)
	assert.Equal(t, "2"+"6193284705", code)

	row, got, err := table.Decode(code, len(digits))
	require.NoError(t, err)
	assert.Equal(t, 3, row)
	assert.Equal(t, digits, got)
}

func TestDecodeMalformed(t *testing.T) {
	table, err := Parse(Decimal, decimalTable)
	require.NoError(t, err)

	for _, code := range []string{"", "012", "0123456789", "0123456789X", "0123 567890"} {
		_, _, err := table.Decode(code, 10)
		require.Error(t, err, code)
		assert.Equal(t, errors.CodeMalformed, errors.Code(err))
	}
}

func TestGenerate(t *testing.T) {
	for _, symbols := range []string{Decimal, Base32} {
		list := Generate(symbols, len(symbols))
		table, err := Parse(symbols, list)
		require.NoError(t, err)

		for _, row := range strings.Split(table.String(), ",") {
			got := []byte(row)
			slices.Sort(got)
			want := []byte(symbols)
			slices.Sort(want)
			assert.Equal(t, want, got)
		}
	}
}

func TestGenerateRandDeterministic(t *testing.T) {
	a := GenerateRand(rand.New(rand.NewPCG(7, 7)), Base32, 32)
	b := GenerateRand(rand.New(rand.NewPCG(7, 7)), Base32, 32)
	assert.Equal(t, a, b)
	assert.Len(t, strings.Split(a, ","), 32)
}

func TestBase32Symbols(t *testing.T) {
	assert.Len(t, Base32, 32)
	for _, c := range "01OI" {
		assert.NotContains(t, Base32, string(c))
	}
}
