// Package transform turns canonical TypeScript sources into the target
// languages.
//
// The built-in Lexical engine understands only the constrained class
// grammar the canonical tree is written in: leading imports, one
// "export default class X extends Y {" declaration, the members, and the
// closing brace. Members are rewritten line by line with ordered regular
// expression rules, so every output line traces back to a source line.
package transform

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/logger"
	"github.com/teranos/wsgen/transpile"
)

// Engine transforms one canonical file for one target
type Engine interface {
	// Transpile returns the declared class, its parent and the member text
	// rewritten for target, without header or class declaration
	Transpile(ctx context.Context, path string, target transpile.Target) (*transpile.Transformed, error)
	// TranspileTest returns the whole test file rewritten for target,
	// without header
	TranspileTest(ctx context.Context, path string, target transpile.Target) (string, error)
}

var (
	classPattern    = regexp.MustCompile(`^export\s+default\s+class\s+([A-Za-z_$][\w$]*)\s+extends\s+([A-Za-z_$][\w$]*)\s*\{\s*$`)
	methodPattern   = regexp.MustCompile(`^(\s*)(async\s+)?([A-Za-z_$][\w$]*)\s*\((.*)\)\s*(?::\s*[^{]+?)?\s*\{\s*$`)
	functionPattern = regexp.MustCompile(`^(\s*)(export\s+(?:default\s+)?)?(async\s+)?function\s+([A-Za-z_$][\w$]*)\s*\((.*)\)\s*(?::\s*[^{]+?)?\s*\{\s*$`)
	importPattern   = regexp.MustCompile(`^\s*import\s`)
	exportPattern   = regexp.MustCompile(`^\s*export\s+default\s+[\w$]+\s*;?\s*$`)
)

// Words that look like method headers but open blocks
var controlWords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true,
	"catch": true, "function": true, "return": true, "else": true,
}

// Lexical is the built-in line-oriented engine
type Lexical struct{}

// NewLexical creates the built-in engine
func NewLexical() *Lexical {
	return &Lexical{}
}

// Transpile parses a class file and rewrites its members for target
func (l *Lexical) Transpile(ctx context.Context, path string, target transpile.Target) (*transpile.Transformed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	className, parent, body, err := parseClass(lines)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	tr, err := newTranslator(target, body)
	if err != nil {
		return nil, err
	}

	indent := memberIndent(body)
	var out []string
	for _, line := range body {
		if m := methodPattern.FindStringSubmatch(line); m != nil && m[1] == indent && !controlWords[m[3]] {
			out = append(out, tr.declare(declaration{
				Indent: m[1],
				Async:  m[2] != "",
				Name:   m[3],
				Params: parseParams(m[4]),
				Method: true,
			}))
			continue
		}
		if rewritten, keep := tr.line(line); keep {
			out = append(out, rewritten)
		}
	}

	logger.Debugw("Transformed class",
		logger.FieldFile, path,
		logger.FieldTarget, string(target),
		logger.FieldUnit, className)

	return &transpile.Transformed{
		ClassName: className,
		Parent:    parent,
		Body:      tr.finish(out, indent),
	}, nil
}

// TranspileTest rewrites a test file. JavaScript keeps imports with their
// extensions rewritten; Python and PHP drop imports and default exports,
// along with the equals helper their preambles provide.
func (l *Lexical) TranspileTest(ctx context.Context, path string, target transpile.Target) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines, err := readLines(path)
	if err != nil {
		return "", err
	}

	tr, err := newTranslator(target, lines)
	if err != nil {
		return "", err
	}

	var out []string
	skipping := false
	for _, line := range lines {
		if skipping {
			if strings.TrimRight(line, " \t;") == "}" {
				skipping = false
			}
			continue
		}

		if importPattern.MatchString(line) {
			if target == transpile.JS {
				out = append(out, tsExtension.ReplaceAllString(line, ".js$1"))
			}
			continue
		}
		if target != transpile.JS && exportPattern.MatchString(line) {
			continue
		}

		if m := functionPattern.FindStringSubmatch(line); m != nil {
			if target != transpile.JS && m[1] == "" && m[4] == "equals" {
				skipping = true
				continue
			}
			out = append(out, tr.declare(declaration{
				Indent: m[1],
				Export: m[2],
				Async:  m[3] != "",
				Name:   m[4],
				Params: parseParams(m[5]),
			}))
			continue
		}

		if rewritten, keep := tr.line(line); keep {
			out = append(out, rewritten)
		}
	}

	logger.Debugw("Transformed test",
		logger.FieldFile, path,
		logger.FieldTarget, string(target))

	return strings.TrimLeft(strings.Join(out, "\n"), "\n"), nil
}

var tsExtension = regexp.MustCompile(`\.ts(['"])`)

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "source %s", path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}

// parseClass locates the class declaration and returns the lines between it
// and the final closing brace
func parseClass(lines []string) (className, parent string, body []string, err error) {
	start := -1
	for i, line := range lines {
		if m := classPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			className, parent, start = m[1], m[2], i
			break
		}
	}
	if start < 0 {
		return "", "", nil, errors.WithHint(
			errors.Wrap(errors.ErrInvalidRequest, "no class declaration found"),
			"canonical classes must be declared as: export default class Name extends Parent {")
	}

	end := -1
	for i := len(lines) - 1; i > start; i-- {
		if strings.TrimRight(lines[i], " \t;") == "}" {
			end = i
			break
		}
	}
	if end < 0 {
		return "", "", nil, errors.Wrapf(errors.ErrInvalidRequest, "class %s is never closed", className)
	}

	return className, parent, lines[start+1 : end], nil
}

// memberIndent is the indentation of the first non-blank member line
func memberIndent(body []string) string {
	for _, line := range body {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	}
	return "    "
}
