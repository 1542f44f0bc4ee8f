package transport

import (
	"context"
	"net"
	"strconv"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// Server 可由 app 统一启停的服务
type Server interface {
	// Run 启动并阻塞直到服务停止
	Run() error
	// Shutdown 优雅关闭
	Shutdown(context.Context) error
}

// ValidateAddress 校验 host:port 形式的监听地址，host 可为空
func ValidateAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}
	if host != "" && !validHost(host) {
		return false
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return p >= MinPort && p <= MaxPort
}

func validHost(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	if len(host) > 253 {
		return false
	}
	for i, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
		case r == '-':
			if i == 0 || i == len(host)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
