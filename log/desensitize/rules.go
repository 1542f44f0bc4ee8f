package desensitize

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"github.com/kochabx/hiding/errors"
)

// Rule 脱敏规则
type Rule interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
	Process(s string) string
}

type toggle struct {
	disabled atomic.Bool
}

func (t *toggle) Enabled() bool {
	return !t.disabled.Load()
}

func (t *toggle) SetEnabled(enabled bool) {
	t.disabled.Store(!enabled)
}

// ContentRule 按内容匹配的规则，作用于整行输出
type ContentRule struct {
	toggle
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule 创建内容规则，replacement 支持 $1 形式的分组引用
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" || pattern == "" {
		return nil, errors.InvalidConfig("rule name and pattern are required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "rule %s: bad pattern", name)
	}
	return &ContentRule{name: name, pattern: re, replacement: replacement}, nil
}

// MustNewContentRule 创建失败时 panic，仅用于内置规则
func MustNewContentRule(name, pattern, replacement string) *ContentRule {
	r, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *ContentRule) Name() string {
	return r.name
}

func (r *ContentRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 只处理 JSON 输出中指定字段的字符串值
type FieldRule struct {
	toggle
	name        string
	field       string
	value       *regexp.Regexp
	replacement string
	json        *regexp.Regexp
}

// NewFieldRule 创建字段规则，pattern 作用于字段值
func NewFieldRule(name, field, pattern, replacement string) (*FieldRule, error) {
	if name == "" || field == "" || pattern == "" {
		return nil, errors.InvalidConfig("rule name, field and pattern are required")
	}
	value, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "rule %s: bad pattern", name)
	}
	json := regexp.MustCompile(fmt.Sprintf(`"%s"\s*:\s*"([^"]*)"`, regexp.QuoteMeta(field)))
	return &FieldRule{name: name, field: field, value: value, replacement: replacement, json: json}, nil
}

// MustNewFieldRule 创建失败时 panic，仅用于内置规则
func MustNewFieldRule(name, field, pattern, replacement string) *FieldRule {
	r, err := NewFieldRule(name, field, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *FieldRule) Name() string {
	return r.name
}

func (r *FieldRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.json.ReplaceAllStringFunc(s, func(match string) string {
		sub := r.json.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		return fmt.Sprintf(`"%s":"%s"`, r.field, r.value.ReplaceAllString(sub[1], r.replacement))
	})
}
