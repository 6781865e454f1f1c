package apiweave

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"
)

// Descriptor declares one remote operation: a path template with zero or
// more ":name" placeholders, an HTTP method, optional header overrides, and
// an optional payload schema. A Descriptor is immutable once handed to
// Describe; the path template is never modified, substitution always works
// on a per-call copy.
type Descriptor struct {
	Path    string
	Method  string
	Headers map[string]string
	Schema  any
}

var placeholderPattern = regexp.MustCompile(`:([0-9A-Za-z_-]+)`)

// placeholderNames extracts placeholder names from a path template in
// template order, colons stripped.
func placeholderNames(path string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(path, -1)
	if len(matches) == 0 {
		return nil
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}

	return names
}

// bindPath resolves a descriptor's path template against the call arguments
// and returns the substituted path. GET and DELETE fill placeholders from
// positional arguments in template order; other methods fill them from
// same-named payload properties. Pure: no I/O, the descriptor is not
// modified.
func bindPath(d Descriptor, positional []any, payload any) (string, error) {
	names := placeholderNames(d.Path)
	if len(names) == 0 {
		return d.Path, nil
	}

	path := d.Path

	switch d.Method {
	case http.MethodGet, http.MethodDelete:
		if len(positional) < len(names) {
			return "", &BindError{Names: names[len(positional):], Err: ErrMissingPathArguments}
		}

		for i, name := range names {
			path = strings.Replace(path, ":"+name, pathValue(positional[i]), 1)
		}
	default:
		props, err := payloadProperties(payload)
		if err != nil {
			return "", err
		}

		var missing []string
		for _, name := range names {
			if isFalsy(props[name]) {
				missing = append(missing, name)
			}
		}

		if len(missing) > 0 {
			return "", &BindError{Names: missing, Err: ErrMissingPayloadProperties}
		}

		for _, name := range names {
			path = strings.Replace(path, ":"+name, pathValue(props[name]), 1)
		}
	}

	return path, nil
}

// payloadProperties produces a by-name view of an object payload for
// placeholder lookup. Maps are used directly; structs go through a JSON
// round trip so json tags decide the property names.
func payloadProperties(payload any) (map[string]any, error) {
	if payload == nil {
		return map[string]any{}, nil
	}

	if m, ok := payload.(map[string]any); ok {
		return m, nil
	}

	normalized, err := normalizeJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("reading payload properties: %w", err)
	}

	m, ok := normalized.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}

	return m, nil
}

// pathValue renders a placeholder value as an escaped path segment.
func pathValue(v any) string {
	if s, ok := v.(string); ok {
		return url.PathEscape(s)
	}

	return url.PathEscape(fmt.Sprintf("%v", v))
}

// isFalsy reports whether a payload property is absent or a zero value
// (nil, false, 0, ""), and therefore cannot fill a placeholder.
func isFalsy(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

// isObject reports whether a call argument counts as a payload object:
// a map keyed by string, a struct, or a pointer to one.
func isObject(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	case reflect.Struct:
		return true
	default:
		return false
	}
}
