package desensitize

import (
	"slices"
	"sync"
)

// Hook 按添加顺序执行脱敏规则，同名规则后者覆盖前者
type Hook struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewHook 创建脱敏钩子
func NewHook(rules ...Rule) *Hook {
	h := &Hook{}
	for _, r := range rules {
		h.AddRule(r)
	}
	return h
}

// Default 创建装载全部内置规则的钩子
func Default() *Hook {
	return NewHook(BuiltinRules()...)
}

// AddRule 添加规则
func (h *Hook) AddRule(rule Rule) {
	if rule == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if i := h.index(rule.Name()); i >= 0 {
		h.rules[i] = rule
		return
	}
	h.rules = append(h.rules, rule)
}

// AddContentRule 添加内容规则
func (h *Hook) AddContentRule(name, pattern, replacement string) error {
	r, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		return err
	}
	h.AddRule(r)
	return nil
}

// AddFieldRule 添加字段规则
func (h *Hook) AddFieldRule(name, field, pattern, replacement string) error {
	r, err := NewFieldRule(name, field, pattern, replacement)
	if err != nil {
		return err
	}
	h.AddRule(r)
	return nil
}

// RemoveRule 移除规则
func (h *Hook) RemoveRule(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.index(name)
	if i < 0 {
		return false
	}
	h.rules = slices.Delete(h.rules, i, i+1)
	return true
}

// SetEnabled 切换规则开关，规则不存在时返回 false
func (h *Hook) SetEnabled(name string, enabled bool) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	i := h.index(name)
	if i < 0 {
		return false
	}
	h.rules[i].SetEnabled(enabled)
	return true
}

// Rules 返回规则名称，按执行顺序
func (h *Hook) Rules() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, len(h.rules))
	for i, r := range h.rules {
		names[i] = r.Name()
	}
	return names
}

// Len 返回规则数量
func (h *Hook) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rules)
}

// Desensitize 依次应用全部启用的规则
func (h *Hook) Desensitize(s string) string {
	if s == "" {
		return s
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.rules {
		if r.Enabled() {
			s = r.Process(s)
		}
	}
	return s
}

func (h *Hook) index(name string) int {
	return slices.IndexFunc(h.rules, func(r Rule) bool { return r.Name() == name })
}
