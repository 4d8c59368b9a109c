// Package header assembles the leading block of every generated file.
package header

import (
	"github.com/teranos/wsgen/transpile"
)

// Assemble returns the header lines for a target: pragma, blank line, the
// two notice lines, blank line, namespace, then imports (the dialect's
// fixed imports followed by imports in the given order).
//
// The result depends only on the dialect and imports, never on the body,
// so headers change only when the imports a body implies change.
func Assemble(d transpile.Dialect, imports []string) []string {
	var lines []string

	if pragma := d.Pragma(); len(pragma) > 0 {
		lines = append(lines, pragma...)
		lines = append(lines, "")
	}

	lines = append(lines, Notice(d)...)
	lines = append(lines, "")

	lines = append(lines, d.Namespace()...)
	lines = append(lines, d.FixedImports()...)
	lines = append(lines, imports...)

	return trimTrailingBlank(lines)
}

// Notice returns the do-not-edit lines in the dialect's comment syntax
func Notice(d transpile.Dialect) []string {
	prefix := d.CommentPrefix() + " "
	return []string{
		prefix + transpile.NoticeLine,
		prefix + transpile.NoticeURL,
	}
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
