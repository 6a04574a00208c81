package textgen

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
)

var itemRX = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

// RecoverFields extracts as many of v's fields as possible from malformed
// JSON text. v must be a pointer to a struct; string and []string fields
// are matched by their json tag names. A truncated value loses only its
// tail, not the whole call. Returns the number of fields recovered.
func RecoverFields(raw string, v any) (int, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return 0, errors.New("recover target must be a pointer to a struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	var recovered int
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := jsonName(field)
		if name == "" {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			if s, ok := recoverString(raw, name); ok {
				rv.Field(i).SetString(s)
				recovered++
			}
		case reflect.Slice:
			if field.Type.Elem().Kind() != reflect.String {
				continue
			}
			if items, ok := recoverStrings(raw, name); ok {
				rv.Field(i).Set(reflect.ValueOf(items))
				recovered++
			}
		}
	}
	return recovered, nil
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	for j := 0; j < len(tag); j++ {
		if tag[j] == ',' {
			return tag[:j]
		}
	}
	return tag
}

// recoverString matches `"name": "value` and tolerates a missing closing
// quote, so a completion cut off mid-value still yields its prefix.
func recoverString(raw, name string) (string, bool) {
	rx := regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `"\s*:\s*"((?:[^"\\]|\\.)*)`)
	m := rx.FindStringSubmatch(raw)
	if m == nil || m[1] == "" {
		return "", false
	}
	return unescape(m[1]), true
}

// recoverStrings pulls complete quoted items out of a possibly unterminated
// array value.
func recoverStrings(raw, name string) ([]string, bool) {
	rx := regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `"\s*:\s*\[([^\]]*)`)
	m := rx.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	var items []string
	for _, im := range itemRX.FindAllStringSubmatch(m[1], -1) {
		if im[1] != "" {
			items = append(items, unescape(im[1]))
		}
	}
	return items, len(items) > 0
}

func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}
