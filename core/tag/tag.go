// Package tag fills zero-valued struct fields from `default:"..."` tags.
//
// Defaults only touch zero values, so a bool default of "true" cannot be
// switched off by a config file. Use a negated field name instead.
package tag

import (
	"reflect"
	"strings"
)

const (
	// Name is the struct tag read by ApplyDefaults.
	Name     = "default"
	maxDepth = 32
)

// ApplyDefaults sets default values on target, which must be a pointer to a
// struct. Nested structs are always visited, even when some of their fields
// are already set.
func ApplyDefaults(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrTargetMustBePointer
	}
	return walk(v.Elem(), "", 0)
}

func walk(v reflect.Value, path string, depth int) error {
	if depth >= maxDepth {
		return ErrMaxDepthExceeded
	}

	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		p := sf.Name
		if path != "" {
			p = path + "." + sf.Name
		}
		if err := field(fv, sf.Tag.Get(Name), p, depth); err != nil {
			return err
		}
	}
	return nil
}

func field(v reflect.Value, def, path string, depth int) error {
	switch v.Kind() {
	case reflect.Struct:
		if _, ok := textUnmarshaler(v); !ok {
			return walk(v, path, depth+1)
		}

	case reflect.Pointer:
		if v.Type().Elem().Kind() == reflect.Struct {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			return walk(v.Elem(), path, depth+1)
		}
		if v.IsNil() && def != "" {
			p := reflect.New(v.Type().Elem())
			if err := parse(p.Elem(), def); err != nil {
				return &FieldError{Path: path, Kind: v.Kind(), Value: def, Err: err}
			}
			v.Set(p)
		}
		return nil

	case reflect.Slice:
		for i := range v.Len() {
			if e := v.Index(i); e.Kind() == reflect.Struct {
				if err := walk(e, path, depth+1); err != nil {
					return err
				}
			}
		}
	}

	if def == "" || !v.IsZero() {
		return nil
	}
	if err := parse(v, def); err != nil {
		return &FieldError{Path: path, Kind: v.Kind(), Value: def, Err: err}
	}
	return nil
}

// splitList splits list defaults: "a,b,c" and "k:v,k2:v2".
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
