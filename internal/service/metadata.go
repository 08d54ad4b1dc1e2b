package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	unknown         = "unknown"
	maxUserAgentLen = 500
)

// emailKeys are checked in order; the first non-empty string wins.
var emailKeys = []string{"email", "Email", "EMAIL", "e-mail", "emailAddress"}

// controlKeys are button states the renderer folds into submitted data.
var controlKeys = []string{"submit", "cancel"}

// present reports whether a decoded JSON value counts as supplied. Only
// objects and arrays carry submission data.
func present(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// parseFormID accepts a positive integer given as a JSON number or a
// decimal string.
func parseFormID(v any) (int64, bool) {
	var id int64
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		id = n
	case float64:
		if t != math.Trunc(t) || t > math.MaxInt64 {
			return 0, false
		}
		id = int64(t)
	case int64:
		id = t
	case int:
		id = int64(t)
	default:
		return 0, false
	}
	return id, id > 0
}

// formIDMissing mirrors a falsy check: absent, empty string and zero.
func formIDMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case float64:
		return t == 0
	case bool:
		return !t
	}
	return false
}

// extractEmail looks for a submitter email on a flat object.
func extractEmail(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, k := range emailKeys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ClientIP derives the submitter address from proxy headers.
func ClientIP(forwardedFor, realIP string) string {
	raw := forwardedFor
	if raw == "" {
		raw = realIP
	}
	if raw == "" {
		return unknown
	}
	first, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(first)
}

// UserAgent normalises the user agent header.
func UserAgent(ua string) string {
	if ua == "" {
		return unknown
	}
	if r := []rune(ua); len(r) > maxUserAgentLen {
		return string(r[:maxUserAgentLen])
	}
	return ua
}

// stripControlKeys removes button keys from an object, or from each object
// element of an array. The input is not modified.
func stripControlKeys(data any) any {
	switch t := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = v
		}
		for _, k := range controlKeys {
			delete(out, k)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			if _, ok := v.(map[string]any); ok {
				out[i] = stripControlKeys(v)
			} else {
				out[i] = v
			}
		}
		return out
	}
	return data
}
