package validator

import (
	"strings"
)

// FieldError 单个字段的校验失败
type FieldError struct {
	Field   string `json:"field"`
	Path    string `json:"-"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrors 校验失败的全部字段
type ValidationErrors struct {
	Fields []FieldError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Has 是否包含指定字段的错误
func (e *ValidationErrors) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
