package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/hiding/core/alphabet"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		kind    string
		symbols string
	}{
		{"decimal", alphabet.Decimal},
		{"base32", alphabet.Base32},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		require.NoError(t, generate(&buf, tt.kind, 3, 0))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		for _, line := range lines {
			_, err := alphabet.Parse(tt.symbols, line)
			assert.NoError(t, err, tt.kind)
		}
	}
}

func TestGenerateSeeded(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, generate(&a, "base32", 2, 7))
	require.NoError(t, generate(&b, "base32", 2, 7))
	assert.Equal(t, a.String(), b.String())
}

func TestGenerateInvalid(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, generate(&buf, "hex", 1, 0))
	assert.Error(t, generate(&buf, "decimal", 0, 0))
	assert.Zero(t, buf.Len())
}
