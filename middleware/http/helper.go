package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// PathMatcher 路径匹配器
type PathMatcher struct {
	exact    map[string]struct{} // "/health"
	prefixes []string            // "/admin/**"
	patterns []string            // "/v1/*/parse"
}

// NewPathMatcher 创建路径匹配器，支持三种写法：
//   - 精确匹配："/health"
//   - 前缀匹配："/admin/**" 匹配 "/admin" 及其子路径
//   - Glob 模式："/v1/*/parse"，语法同 path.Match
func NewPathMatcher(paths []string) *PathMatcher {
	pm := &PathMatcher{exact: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if prefix, ok := strings.CutSuffix(p, "/**"); ok {
			pm.prefixes = append(pm.prefixes, prefix)
		} else if strings.ContainsAny(p, "*?[") {
			pm.patterns = append(pm.patterns, p)
		} else {
			pm.exact[p] = struct{}{}
		}
	}
	return pm
}

// Match 检查路径是否匹配
func (pm *PathMatcher) Match(urlPath string) bool {
	if pm == nil {
		return false
	}
	if _, ok := pm.exact[urlPath]; ok {
		return true
	}
	for _, prefix := range pm.prefixes {
		if urlPath == prefix {
			return true
		}
		if len(urlPath) > len(prefix) && urlPath[len(prefix)] == '/' && strings.HasPrefix(urlPath, prefix) {
			return true
		}
	}
	for _, pattern := range pm.patterns {
		if matched, _ := path.Match(pattern, urlPath); matched {
			return true
		}
	}
	return false
}

// shouldSkip 检查请求是否应跳过处理
func shouldSkip(c *gin.Context, matcher *PathMatcher, skipFunc func(*gin.Context) bool) bool {
	if skipFunc != nil && skipFunc(c) {
		return true
	}
	return matcher.Match(c.Request.URL.Path)
}
