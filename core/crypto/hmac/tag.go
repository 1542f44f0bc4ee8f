package hmac

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/kochabx/hiding/core/bitpack"
)

// Size HMAC-SHA256 摘要长度
const Size = sha256.Size

// Tag 计算 HMAC-SHA256(key, parts...)
func Tag(key []byte, parts ...[]byte) []byte {
	h := hmac.New(sha256.New, key)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// TagBits 截取摘要的前 m 位，伪造成功的概率约为 2^-m
func TagBits(m int, key []byte, parts ...[]byte) bitpack.Bits {
	return bitpack.FromBytes(Tag(key, parts...)).Slice(0, m)
}
