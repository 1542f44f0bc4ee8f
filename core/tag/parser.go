package tag

import (
	"encoding"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeFor[time.Duration]()

func textUnmarshaler(v reflect.Value) (encoding.TextUnmarshaler, bool) {
	if !v.CanAddr() {
		return nil, false
	}
	u, ok := v.Addr().Interface().(encoding.TextUnmarshaler)
	return u, ok
}

// parse sets v from its string form.
func parse(v reflect.Value, s string) error {
	if u, ok := textUnmarshaler(v); ok {
		return u.UnmarshalText([]byte(s))
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(s)

	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		v.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == durationType {
			d, err := time.ParseDuration(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			v.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			v.SetBytes([]byte(s))
			return nil
		}
		parts := splitList(s)
		out := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, p := range parts {
			if err := parse(out.Index(i), p); err != nil {
				return err
			}
		}
		v.Set(out)

	case reflect.Map:
		out := reflect.MakeMap(v.Type())
		for _, pair := range splitList(s) {
			k, val, ok := strings.Cut(pair, ":")
			if !ok {
				return ErrUnsupportedType
			}
			kv := reflect.New(v.Type().Key()).Elem()
			if err := parse(kv, strings.TrimSpace(k)); err != nil {
				return err
			}
			vv := reflect.New(v.Type().Elem()).Elem()
			if err := parse(vv, strings.TrimSpace(val)); err != nil {
				return err
			}
			out.SetMapIndex(kv, vv)
		}
		v.Set(out)

	default:
		return ErrUnsupportedType
	}
	return nil
}
