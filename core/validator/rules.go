package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kochabx/hiding/core/alphabet"
	"github.com/kochabx/hiding/core/crypto/chacha20"
	"github.com/kochabx/hiding/errors"
)

type rule struct {
	tag string
	fn  validator.Func
	msg map[string]string
}

var rules = []rule{
	{
		tag: "chachakey",
		fn:  isChachaKey,
		msg: map[string]string{
			"en": "{0} must be 32 printable ASCII characters",
			"zh": "{0}必须是32个可打印ASCII字符",
		},
	},
	{
		tag: "chachanonce",
		fn:  isChachaNonce,
		msg: map[string]string{
			"en": "{0} must be 8 or 12 characters",
			"zh": "{0}长度必须为8或12",
		},
	},
	{
		tag: "alphabets",
		fn:  isAlphabets,
		msg: map[string]string{
			"en": "{0} is not a valid coder table",
			"zh": "{0}不是有效的编码表",
		},
	},
}

func isChachaKey(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != chacha20.KeySize {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func isChachaNonce(fl validator.FieldLevel) bool {
	n := len(fl.Field().String())
	return n == chacha20.NonceSize || n == chacha20.NonceSizeIETF
}

// isAlphabets 参数为 decimal 或 base32，空字符串视为通过，由 required 负责
func isAlphabets(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	symbols := alphabet.Decimal
	if fl.Param() == "base32" {
		symbols = alphabet.Base32
	}
	_, err := alphabet.Parse(symbols, s)
	return err == nil
}

func registerMessages(engine *validator.Validate, trans ut.Translator, rules []rule, lang string) error {
	for _, r := range rules {
		msg := r.msg[lang]
		err := engine.RegisterTranslation(r.tag, trans,
			func(tr ut.Translator) error {
				return tr.Add(r.tag, msg, true)
			},
			func(tr ut.Translator, fe validator.FieldError) string {
				t, err := tr.T(r.tag, fe.Field())
				if err != nil {
					return fe.Error()
				}
				return t
			},
		)
		if err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "register %s message for %q", lang, r.tag)
		}
	}
	return nil
}
