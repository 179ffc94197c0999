package lexsearch

import (
	"reflect"
	"strconv"
	"strings"
)

// extractFields resolves an explicit dot-path field list against an item
// and returns searchable text per field. Paths that resolve to nothing are
// simply absent from the result.
func extractFields(item Record, fields []string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, path := range fields {
		v, ok := resolvePath(item, path)
		if !ok {
			continue
		}
		if text, ok := leafText(v); ok && text != "" {
			out[path] = text
		}
	}
	return out
}

// resolvePath walks a dot-path such as "a.b.c" through nested maps.
// Intermediate segments must be maps; the leaf may be any shape. Missing
// segments and nil leaves report absence rather than an error.
func resolvePath(item Record, path string) (any, bool) {
	var v any = item
	for _, seg := range strings.Split(path, ".") {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	if v == nil {
		return nil, false
	}
	return v, true
}

// leafText coerces a resolved leaf into text for indexing. Strings pass
// through, numeric and boolean primitives get their canonical text form,
// and string elements of an array are joined with single spaces. Nested
// structures and nil contribute nothing at the leaf position.
func leafText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case []string:
		return strings.Join(t, " "), true
	case []any:
		return joinStringElements(t), true
	default:
		return "", false
	}
}

// joinStringElements flattens the string elements of an array into one
// space-separated blob so array membership participates in scoring.
// Non-string elements are skipped.
func joinStringElements(arr []any) string {
	var b strings.Builder
	for _, el := range arr {
		s, ok := el.(string)
		if !ok || s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	return b.String()
}

// discoverFields auto-discovers every string-valued leaf reachable from an
// item, keyed by dot-path. Nested maps are descended with qualified paths;
// string elements of arrays are joined into the array's field; numbers,
// booleans, and nil are ignored (only an explicit field list opts into
// primitive coercion). Runs once per item at index-build time.
func discoverFields(item Record) map[string]string {
	out := make(map[string]string)
	walkStringLeaves(item, "", make(map[uintptr]bool), out)
	return out
}

// walkStringLeaves recursively collects string content from a map. The
// visiting set holds the identities of maps on the current descent path so
// a self-referencing record terminates: a map already being visited is
// skipped, not re-descended. The set is path-scoped, so the same map
// reached via two sibling paths is indexed under both.
func walkStringLeaves(m map[string]any, prefix string, visiting map[uintptr]bool, out map[string]string) {
	id := reflect.ValueOf(m).Pointer()
	if visiting[id] {
		return
	}
	visiting[id] = true
	defer delete(visiting, id)

	for key, v := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				out[path] = t
			}
		case map[string]any:
			walkStringLeaves(t, path, visiting, out)
		case []string:
			if joined := strings.Join(t, " "); joined != "" {
				out[path] = joined
			}
		case []any:
			if joined := joinStringElements(t); joined != "" {
				out[path] = joined
			}
		}
	}
}
