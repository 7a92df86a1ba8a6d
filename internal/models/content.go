package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Content is the semi-structured payload of a page. Its expected keys depend
// on the page type; values arrive from JSON so accessors are lenient.
type Content map[string]any

// Clone returns a shallow copy; list values are copied too.
func (c Content) Clone() Content {
	out := make(Content, len(c))
	for k, v := range c {
		switch t := v.(type) {
		case []any:
			out[k] = append([]any(nil), t...)
		case []string:
			out[k] = append([]string(nil), t...)
		default:
			out[k] = v
		}
	}
	return out
}

// String returns the value at key as a string, or "" when absent.
func (c Content) String(key string) string {
	switch v := c[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Bool reports the value at key, falling back to def when absent or unparsable.
func (c Content) Bool(key string, def bool) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// Strings returns a list value. A newline-delimited string is split into
// lines; blank entries are dropped either way.
func (c Content) Strings(key string) []string {
	var raw []string
	switch v := c[key].(type) {
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(v, "\n")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
