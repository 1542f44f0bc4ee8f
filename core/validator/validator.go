package validator

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"

	"github.com/kochabx/hiding/errors"
)

// Validator 校验器
type Validator interface {
	Struct(s any) error
	StructCtx(ctx context.Context, s any) error
	Var(field any, tag string) error
	Engine() *validator.Validate
}

// Validate 全局校验器，标签名 validate
var Validate Validator = New()

type validatorImpl struct {
	engine      *validator.Validate
	translators map[string]ut.Translator
	lang        string
}

type options struct {
	tagName string
	lang    string
}

// Option 校验器选项
type Option func(*options)

// WithTagName 设置标签名，gin 的请求绑定使用 binding
func WithTagName(name string) Option {
	return func(o *options) {
		o.tagName = name
	}
}

// WithLang 设置错误消息语言，支持 en 与 zh
func WithLang(lang string) Option {
	return func(o *options) {
		o.lang = lang
	}
}

// New 创建校验器，注册编解码相关的自定义规则，注册失败时 panic
func New(opts ...Option) Validator {
	v, err := Build(opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Build 与 New 相同，注册失败时返回错误
func Build(opts ...Option) (Validator, error) {
	o := &options{tagName: "validate", lang: "en"}
	for _, opt := range opts {
		opt(o)
	}

	engine := validator.New(validator.WithRequiredStructEnabled())
	engine.SetTagName(o.tagName)
	engine.RegisterTagNameFunc(fieldName)

	v := &validatorImpl{
		engine:      engine,
		translators: make(map[string]ut.Translator, 2),
		lang:        o.lang,
	}
	if err := v.register(rules); err != nil {
		return nil, err
	}
	return v, nil
}

// fieldName 优先使用 mapstructure、json 标签作为字段名
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"mapstructure", "json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func (v *validatorImpl) register(rules []rule) error {
	for _, r := range rules {
		if err := v.engine.RegisterValidation(r.tag, r.fn); err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "register rule %q", r.tag)
		}
	}

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())
	if trans, ok := uni.GetTranslator("en"); ok {
		if err := en_translations.RegisterDefaultTranslations(v.engine, trans); err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "register en translations")
		}
		if err := registerMessages(v.engine, trans, rules, "en"); err != nil {
			return err
		}
		v.translators["en"] = trans
	}
	if trans, ok := uni.GetTranslator("zh"); ok {
		if err := zh_translations.RegisterDefaultTranslations(v.engine, trans); err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "register zh translations")
		}
		if err := registerMessages(v.engine, trans, rules, "zh"); err != nil {
			return err
		}
		v.translators["zh"] = trans
	}
	return nil
}

func (v *validatorImpl) Struct(s any) error {
	return v.StructCtx(context.Background(), s)
}

func (v *validatorImpl) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.InvalidConfig("validation target is nil")
	}
	return v.translate(v.engine.StructCtx(ctx, s))
}

func (v *validatorImpl) Var(field any, tag string) error {
	return v.translate(v.engine.Var(field, tag))
}

func (v *validatorImpl) Engine() *validator.Validate {
	return v.engine
}

func (v *validatorImpl) translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	trans := v.translators[v.lang]
	out := &ValidationErrors{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		msg := fe.Error()
		if trans != nil {
			msg = fe.Translate(trans)
		}
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Path:    fe.Namespace(),
			Tag:     fe.Tag(),
			Message: msg,
		})
	}
	return out
}
