// Package chacha20 实现 ChaCha20 密钥流，用作按数值派生随机字节的 PRF。
// 支持 8 字节（原始版本）与 12 字节（IETF 版本）两种 nonce 布局。
package chacha20

import (
	"encoding/binary"
	"math/bits"

	"github.com/kochabx/hiding/errors"
)

const (
	KeySize       = 32
	NonceSize     = 8
	NonceSizeIETF = 12
	BlockSize     = 64
)

// "expand 32-byte k"
var sigma = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

// Cipher ChaCha20 状态，不可跨调用共享
type Cipher struct {
	state [16]uint32

	buf  [BlockSize]byte
	left int // buf 中尚未使用的字节数
}

// New 创建 ChaCha20 实例
// 8 字节 nonce: state[12..13] 为从 0 开始的块计数器，counter 参数被忽略
// 12 字节 nonce: state[12] = counter，state[13..15] 为 nonce
func New(key, nonce []byte, counter uint32) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, errors.InvalidConfig("chacha20: key must be %d bytes", KeySize).WithField("length", len(key))
	}

	c := &Cipher{}
	copy(c.state[:4], sigma[:])
	for i := range 8 {
		c.state[4+i] = binary.LittleEndian.Uint32(key[i*4:])
	}

	switch len(nonce) {
	case NonceSize:
		c.state[14] = binary.LittleEndian.Uint32(nonce[0:4])
		c.state[15] = binary.LittleEndian.Uint32(nonce[4:8])
	case NonceSizeIETF:
		c.state[12] = counter
		c.state[13] = binary.LittleEndian.Uint32(nonce[0:4])
		c.state[14] = binary.LittleEndian.Uint32(nonce[4:8])
		c.state[15] = binary.LittleEndian.Uint32(nonce[8:12])
	default:
		return nil, errors.InvalidConfig("chacha20: nonce must be %d or %d bytes", NonceSize, NonceSizeIETF).
			WithField("length", len(nonce))
	}

	return c, nil
}

func quarterRound(a, b, c, d uint32) (uint32, uint32, uint32, uint32) {
	a += b
	d ^= a
	d = bits.RotateLeft32(d, 16)
	c += d
	b ^= c
	b = bits.RotateLeft32(b, 12)
	a += b
	d ^= a
	d = bits.RotateLeft32(d, 8)
	c += d
	b ^= c
	b = bits.RotateLeft32(b, 7)
	return a, b, c, d
}

// block 生成一个 64 字节密钥流块并推进计数器
func (c *Cipher) block(out *[BlockSize]byte) {
	x := c.state

	// 20 轮，即 10 个双轮
	for range 10 {
		// 列轮
		x[0], x[4], x[8], x[12] = quarterRound(x[0], x[4], x[8], x[12])
		x[1], x[5], x[9], x[13] = quarterRound(x[1], x[5], x[9], x[13])
		x[2], x[6], x[10], x[14] = quarterRound(x[2], x[6], x[10], x[14])
		x[3], x[7], x[11], x[15] = quarterRound(x[3], x[7], x[11], x[15])
		// 对角轮
		x[0], x[5], x[10], x[15] = quarterRound(x[0], x[5], x[10], x[15])
		x[1], x[6], x[11], x[12] = quarterRound(x[1], x[6], x[11], x[12])
		x[2], x[7], x[8], x[13] = quarterRound(x[2], x[7], x[8], x[13])
		x[3], x[4], x[9], x[14] = quarterRound(x[3], x[4], x[9], x[14])
	}

	for i := range x {
		binary.LittleEndian.PutUint32(out[i*4:], x[i]+c.state[i])
	}

	// 计数器回绕时进位到 state[13]
	c.state[12]++
	if c.state[12] == 0 {
		c.state[13]++
	}
}

// XORKeyStream 将 src 与密钥流异或写入 dst，dst 与 src 可以完全重叠
func (c *Cipher) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("chacha20: output smaller than input")
	}

	for len(src) > 0 {
		if c.left == 0 {
			c.block(&c.buf)
			c.left = BlockSize
		}
		ks := c.buf[BlockSize-c.left:]
		n := min(len(ks), len(src))
		for i := range n {
			dst[i] = src[i] ^ ks[i]
		}
		c.left -= n
		dst, src = dst[n:], src[n:]
	}
}
