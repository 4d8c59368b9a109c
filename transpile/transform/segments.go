package transform

import "strings"

// segment is a run of one line that is either code, a string literal
// (quotes included) or a trailing line comment
type segment struct {
	text string
	kind segmentKind
}

type segmentKind int

const (
	code segmentKind = iota
	literal
	comment
)

// split cuts a line into code, literal and comment segments so rewrite
// rules never touch string contents. Template literals are treated as
// plain literals; interpolations inside them are left alone.
func split(line string) []segment {
	var segs []segment
	var cur strings.Builder
	flush := func(kind segmentKind) {
		if cur.Len() > 0 {
			segs = append(segs, segment{text: cur.String(), kind: kind})
			cur.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			flush(code)
			segs = append(segs, segment{text: line[i:], kind: comment})
			return segs
		case c == '\'' || c == '"' || c == '`':
			flush(code)
			j := i + 1
			for j < len(line) && line[j] != c {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(line) {
				j = len(line) - 1
			}
			cur.WriteString(line[i : j+1])
			flush(literal)
			i = j
		default:
			cur.WriteByte(c)
		}
	}
	flush(code)
	return segs
}

// join reassembles segments, rewriting code with fn and comments with cm.
// A nil cm keeps comments as they are.
func join(segs []segment, fn func(string) string, cm func(string) string) string {
	var sb strings.Builder
	for _, s := range segs {
		switch s.kind {
		case code:
			sb.WriteString(fn(s.text))
		case comment:
			if cm != nil {
				sb.WriteString(cm(s.text))
			} else {
				sb.WriteString(s.text)
			}
		default:
			sb.WriteString(s.text)
		}
	}
	return sb.String()
}

// codeOnly returns the line with literals and comments blanked out, for
// scanning declarations without matching inside strings
func codeOnly(line string) string {
	var sb strings.Builder
	for _, s := range split(line) {
		if s.kind == code {
			sb.WriteString(s.text)
		} else {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
