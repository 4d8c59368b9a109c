package transform

import "strings"

// param is one formal parameter with its type annotation removed
type param struct {
	Name    string
	Default string
}

// parseParams splits a parameter list at top-level commas and drops type
// annotations and optional markers ("since: Int = undefined" -> since, undefined)
func parseParams(list string) []param {
	var params []param
	for _, raw := range splitTopLevel(list, ',') {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var p param
		decl := raw
		if eq := indexTopLevel(raw, '='); eq >= 0 {
			decl = raw[:eq]
			p.Default = strings.TrimSpace(raw[eq+1:])
		}
		if colon := strings.IndexByte(decl, ':'); colon >= 0 {
			decl = decl[:colon]
		}
		p.Name = strings.TrimSuffix(strings.TrimSpace(decl), "?")
		params = append(params, p)
	}
	return params
}

// splitTopLevel splits s on sep outside brackets, braces, parens and quotes
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// indexTopLevel returns the first sep outside nesting, skipping "=>" and
// comparison operators, or -1
func indexTopLevel(s string, sep byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth != 0 {
				continue
			}
			if i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
				continue
			}
			if i > 0 && strings.IndexByte("=!<>", s[i-1]) >= 0 {
				continue
			}
			return i
		}
	}
	return -1
}

// names returns just the parameter names
func names(params []param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}
