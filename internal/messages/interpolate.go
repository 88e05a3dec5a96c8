package messages

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-localize/internal/domain"
)

// Interpolate replaces {name} placeholders in template with params. Doubled
// braces render a literal brace. A placeholder without a parameter fails
// with *domain.InterpolationError; an unterminated brace is kept as text.
func Interpolate(key, template string, params map[string]any) (string, error) {
	if !strings.ContainsAny(template, "{}") {
		return template, nil
	}
	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				b.WriteString(template[i:])
				return b.String(), nil
			}
			name := template[i+1 : i+1+end]
			if !validPlaceholder(name) {
				b.WriteByte(c)
				continue
			}
			value, ok := params[name]
			if !ok {
				return "", &domain.InterpolationError{Key: key, Parameter: name}
			}
			b.WriteString(fmt.Sprint(value))
			i += end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// Placeholders lists the parameter names referenced by template in order of
// first appearance.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]struct{})
	for i := 0; i < len(template); i++ {
		if template[i] != '{' {
			continue
		}
		if i+1 < len(template) && template[i+1] == '{' {
			i++
			continue
		}
		end := strings.IndexByte(template[i+1:], '}')
		if end < 0 {
			break
		}
		name := template[i+1 : i+1+end]
		if validPlaceholder(name) {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
			i += end + 1
		}
	}
	return names
}

func validPlaceholder(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}
