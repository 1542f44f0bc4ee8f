package validator

import (
	"reflect"
)

// GinValidator 适配 gin 的 binding.StructValidator
type GinValidator struct {
	v Validator
}

// NewGin 创建使用 binding 标签的 gin 校验器
func NewGin(opts ...Option) *GinValidator {
	return &GinValidator{v: New(append([]Option{WithTagName("binding")}, opts...)...)}
}

// ValidateStruct 只校验结构体及其指针，其他类型直接通过
func (g *GinValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return g.v.Struct(obj)
}

// Engine 返回底层校验引擎
func (g *GinValidator) Engine() any {
	return g.v.Engine()
}
