// Package alphabet 管理替换编码表：一组字符集的置换，每个置换把 0..radix-1 映射为显示字符
package alphabet

import (
	"math/rand/v2"
	"strings"

	"github.com/kochabx/hiding/errors"
)

const (
	// Decimal 十进制字符集
	Decimal = "0123456789"
	// Base32 去除易混淆字符 0、O、1、I 后的 32 进制字符集
	Base32 = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

	separator = ","
)

// Table 编码表，构造后只读，可并发使用
type Table struct {
	symbols string
	rows    []string
	// index[i][c] 为字符 c 在第 i 行中的位置，-1 表示不存在
	index [][256]int16
	// member[c] 字符 c 是否属于字符集
	member [256]bool
}

// Parse 解析以逗号分隔的编码表，行数必须等于字符集长度，且每行都是字符集的一个置换
func Parse(symbols, list string) (*Table, error) {
	if len(symbols) == 0 {
		return nil, errors.InvalidConfig("alphabet: empty symbol set")
	}

	t := &Table{symbols: symbols}
	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		if t.member[c] {
			return nil, errors.InvalidConfig("alphabet: duplicate symbol %q in symbol set", c)
		}
		t.member[c] = true
	}

	rows := strings.Split(strings.TrimSpace(list), separator)
	if len(rows) != len(symbols) {
		return nil, errors.InvalidConfig("alphabet: expected %d rows, got %d", len(symbols), len(rows)).
			WithField("symbols", symbols)
	}

	t.rows = make([]string, len(rows))
	t.index = make([][256]int16, len(rows))
	for i, row := range rows {
		row = strings.TrimSpace(row)
		if err := t.addRow(i, row); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Table) addRow(i int, row string) error {
	if len(row) != len(t.symbols) {
		return errors.InvalidConfig("alphabet: row %d has %d symbols, want %d", i, len(row), len(t.symbols))
	}

	idx := &t.index[i]
	for c := range idx {
		idx[c] = -1
	}
	for j := 0; j < len(row); j++ {
		c := row[j]
		if !t.member[c] {
			return errors.InvalidConfig("alphabet: row %d contains unknown symbol %q", i, c)
		}
		if idx[c] >= 0 {
			return errors.InvalidConfig("alphabet: row %d repeats symbol %q", i, c)
		}
		idx[c] = int16(j)
	}

	t.rows[i] = row
	return nil
}

// Radix 字符集长度，也是编码表的行数
func (t *Table) Radix() int {
	return len(t.symbols)
}

// Symbols 返回字符集
func (t *Table) Symbols() string {
	return t.symbols
}

// Contains 判断字符是否属于字符集
func (t *Table) Contains(c byte) bool {
	return t.member[c]
}

// Selector 返回第 0 行中位置 row 的字符，用于标识编码所用的行
func (t *Table) Selector(row int) byte {
	return t.rows[0][row]
}

// Row 根据选择字符还原行号
func (t *Table) Row(selector byte) (int, bool) {
	i := t.index[0][selector]
	return int(i), i >= 0
}

// Encode 将数字逐位映射为第 row 行的字符，并在前面加上选择字符
func (t *Table) Encode(row int, digits []int) string {
	var sb strings.Builder
	sb.Grow(len(digits) + 1)
	sb.WriteByte(t.Selector(row))
	for _, d := range digits {
		sb.WriteByte(t.rows[row][d])
	}
	return sb.String()
}

// Decode 校验长度与字符集，读取选择字符并还原数字
func (t *Table) Decode(code string, length int) (int, []int, error) {
	if len(code) != length+1 {
		return 0, nil, errors.Malformed("length %d, want %d", len(code), length+1)
	}
	for i := 0; i < len(code); i++ {
		if !t.member[code[i]] {
			return 0, nil, errors.Malformed("symbol %q at %d outside set", code[i], i)
		}
	}

	row, ok := t.Row(code[0])
	if !ok {
		return 0, nil, errors.Malformed("unknown selector %q", code[0])
	}

	idx := &t.index[row]
	digits := make([]int, length)
	for i := range digits {
		digits[i] = int(idx[code[i+1]])
	}
	return row, digits, nil
}

// String 返回编码表的配置字符串形式
func (t *Table) String() string {
	return strings.Join(t.rows, separator)
}

// Generate 随机生成 count 个字符集置换，以逗号连接，仅用于初始化配置
func Generate(symbols string, count int) string {
	return GenerateRand(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), symbols, count)
}

// GenerateRand 使用指定随机源生成编码表
func GenerateRand(r *rand.Rand, symbols string, count int) string {
	rows := make([]string, count)
	buf := []byte(symbols)
	for i := range rows {
		r.Shuffle(len(buf), func(a, b int) { buf[a], buf[b] = buf[b], buf[a] })
		rows[i] = string(buf)
	}
	return strings.Join(rows, separator)
}
