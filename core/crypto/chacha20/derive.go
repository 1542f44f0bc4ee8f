package chacha20

import "encoding/binary"

// Derive 以 value 为关联值派生 n 字节伪随机数据
// value 按大端写入缓冲区开头，其余位置以最后一个字节填充，再与密钥流异或
// 每次调用都会创建新的 Cipher
func Derive(key, nonce []byte, counter uint32, value uint64, n int) ([]byte, error) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], value)
	return derive(key, nonce, counter, b[:], n)
}

// Derive32 与 Derive 相同，关联值为 4 字节
func Derive32(key, nonce []byte, counter uint32, value uint32, n int) ([]byte, error) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], value)
	return derive(key, nonce, counter, b[:], n)
}

func derive(key, nonce []byte, counter uint32, value []byte, n int) ([]byte, error) {
	c, err := New(key, nonce, counter)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	copied := copy(buf, value)
	if copied < n {
		last := value[len(value)-1]
		for i := copied; i < n; i++ {
			buf[i] = last
		}
	}

	c.XORKeyStream(buf, buf)
	return buf, nil
}
