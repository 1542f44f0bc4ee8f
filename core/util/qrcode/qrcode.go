package qrcode

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"

	"github.com/kochabx/hiding/errors"
)

// Level 纠错级别
type Level = qrcode.RecoveryLevel

const (
	Low     Level = qrcode.Low
	Medium  Level = qrcode.Medium
	High    Level = qrcode.High
	Highest Level = qrcode.Highest

	MinSize = 64
	MaxSize = 1024
)

// PNG 生成边长 size 像素的 PNG 图片
func PNG(content string, size int, level Level) ([]byte, error) {
	if content == "" {
		return nil, errors.BadRequest("qrcode content is empty")
	}
	if size < MinSize || size > MaxSize {
		return nil, errors.BadRequest("qrcode size must be in [%d, %d]", MinSize, MaxSize).WithField("size", size)
	}
	b, err := qrcode.Encode(content, level, size)
	if err != nil {
		return nil, errors.Internal("encode qrcode").WithCause(err)
	}
	return b, nil
}

// DataURI 生成可直接嵌入页面的 data:image/png;base64 地址
func DataURI(content string, size int, level Level) (string, error) {
	b, err := PNG(content, size, level)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}
