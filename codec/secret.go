// Package codec holds the pieces shared by the numeric obfuscation codecs:
// the validated cipher secret, the per-value keystream, coder index selection
// and the wire-format field layouts.
package codec

import (
	"github.com/kochabx/hiding/core/crypto/chacha20"
	"github.com/kochabx/hiding/errors"
)

// KeystreamSize is the number of PRF bytes derived per value.
const KeystreamSize = 512

// Secret is the (key, nonce, counter) triple a codec derives keystreams from.
// It is immutable once built.
type Secret struct {
	key     []byte
	nonce   []byte
	counter uint32
}

// NewSecret validates key and nonce. The key must be exactly 32 printable
// ASCII bytes, the nonce 8 or 12 bytes.
func NewSecret(key, nonce string, counter uint32) (Secret, error) {
	if len(key) != chacha20.KeySize {
		return Secret{}, errors.InvalidConfig("key must be %d bytes", chacha20.KeySize).WithField("length", len(key))
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x20 || key[i] > 0x7e {
			return Secret{}, errors.InvalidConfig("key must be printable ASCII").WithField("position", i)
		}
	}
	if len(nonce) != chacha20.NonceSize && len(nonce) != chacha20.NonceSizeIETF {
		return Secret{}, errors.InvalidConfig("nonce must be %d or %d bytes", chacha20.NonceSize, chacha20.NonceSizeIETF).
			WithField("length", len(nonce))
	}

	return Secret{
		key:     []byte(key),
		nonce:   []byte(nonce),
		counter: counter,
	}, nil
}

// Derive returns the keystream associated with a 64-bit value.
func (s Secret) Derive(v uint64) Keystream {
	ks, err := chacha20.Derive(s.key, s.nonce, s.counter, v, KeystreamSize)
	if err != nil {
		// key and nonce were validated by NewSecret
		panic(err)
	}
	return ks
}

// Derive32 returns the keystream associated with a 32-bit value.
func (s Secret) Derive32(v uint32) Keystream {
	ks, err := chacha20.Derive32(s.key, s.nonce, s.counter, v, KeystreamSize)
	if err != nil {
		panic(err)
	}
	return ks
}

// Keystream is the 512-byte PRF output of one value.
type Keystream []byte

// MACKey returns bytes 0..255.
func (k Keystream) MACKey() []byte {
	return k[:KeystreamSize/2]
}

// Salt returns bytes 256..511.
func (k Keystream) Salt() []byte {
	return k[KeystreamSize/2:]
}

// Sum returns the sum of all bytes read as signed values.
func (k Keystream) Sum() int {
	sum := 0
	for _, b := range k {
		sum += int(int8(b))
	}
	return sum
}
