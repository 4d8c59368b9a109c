package transform

import (
	"regexp"
	"sort"
	"strings"

	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/util"
)

// declaration is a method or function header with its parameters parsed
type declaration struct {
	Indent string
	Export string
	Async  bool
	Name   string
	Params []param
	Method bool
}

// translator rewrites lines for one target
type translator interface {
	declare(d declaration) string
	// line rewrites one body line; false drops it
	line(line string) (string, bool)
	// finish joins the rewritten lines into the body
	finish(lines []string, indent string) string
}

func newTranslator(target transpile.Target, source []string) (translator, error) {
	switch target {
	case transpile.Python:
		return &pythonTranslator{}, nil
	case transpile.PHP:
		return newPHPTranslator(source), nil
	case transpile.JS:
		return jsTranslator{}, nil
	default:
		return nil, errors.NewInvalidRequestError("no transform rules for target %s", target)
	}
}

type rule struct {
	re   *regexp.Regexp
	repl string
}

func r(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl}
}

func apply(rules []rule, s string) string {
	for _, rl := range rules {
		s = rl.re.ReplaceAllString(s, rl.repl)
	}
	return s
}

// structural applies the first matching whole-line rule
func structural(rules []rule, s string) (string, bool) {
	for _, rl := range rules {
		if rl.re.MatchString(s) {
			return rl.re.ReplaceAllString(s, rl.repl), true
		}
	}
	return s, false
}

var closerPattern = regexp.MustCompile(`^\s*\}[\s;,)]*$`)

// Python

var pythonStructure = []rule{
	r(`^(\s*)\}\s*else\s+if\s*\((.*)\)\s*\{\s*$`, `${1}elif ${2}:`),
	r(`^(\s*)\}\s*else\s*\{\s*$`, `${1}else:`),
	r(`^(\s*)if\s*\((.*)\)\s*\{\s*$`, `${1}if ${2}:`),
	r(`^(\s*)while\s*\((.*)\)\s*\{\s*$`, `${1}while ${2}:`),
	r(`^(\s*)for\s*\(\s*(?:const|let|var)\s+(\w+)\s+of\s+(.*)\)\s*\{\s*$`, `${1}for ${2} in ${3}:`),
	r(`^(\s*)for\s*\(\s*(?:let|var)\s+(\w+)\s*=\s*(.+?);\s*\w+\s*<\s*(.+?);\s*\w+\s*\+\+\s*\)\s*\{\s*$`, `${1}for ${2} in range(${3}, ${4}):`),
	r(`^(\s*)try\s*\{\s*$`, `${1}try:`),
	r(`^(\s*)\}\s*catch\s*\((\w+)\)\s*\{\s*$`, `${1}except Exception as ${2}:`),
	r(`^(\s*)\}\s*finally\s*\{\s*$`, `${1}finally:`),
}

var pythonTokens = []rule{
	r(`\bthis\.`, `self.`),
	r(`\bthis\b`, `self`),
	r(`\b(?:const|let|var)\s+`, ``),
	r(`\bthrow\s+new\s+`, `raise `),
	r(`\bnew\s+`, ``),
	r(`!==`, `!=`),
	r(`===`, `==`),
	r(`&&`, `and`),
	r(`\|\|`, `or`),
	r(`!([^=])`, `not ${1}`),
	r(`\btrue\b`, `True`),
	r(`\bfalse\b`, `False`),
	r(`\b(?:null|undefined)\b`, `None`),
	r(`;(\s*)$`, `${1}`),
}

// pythonTranslator tracks open braces: those opening blocks vanish with
// their closers, those opening literals survive
type pythonTranslator struct {
	blocks []bool
}

func (p *pythonTranslator) pop() bool {
	if len(p.blocks) == 0 {
		return true
	}
	top := p.blocks[len(p.blocks)-1]
	p.blocks = p.blocks[:len(p.blocks)-1]
	return top
}

func (*pythonTranslator) tokens(s string) string {
	return join(split(s), func(c string) string { return apply(pythonTokens, c) }, func(c string) string {
		return strings.Replace(c, "//", "#", 1)
	})
}

func (p *pythonTranslator) declare(d declaration) string {
	p.blocks = append(p.blocks, true)
	var args []string
	if d.Method {
		args = append(args, "self")
	}
	for _, prm := range d.Params {
		if prm.Default != "" {
			args = append(args, prm.Name+"="+p.tokens(prm.Default))
		} else {
			args = append(args, prm.Name)
		}
	}
	prefix := ""
	if d.Async {
		prefix = "async "
	}
	return d.Indent + prefix + "def " + util.UnCamelCase(d.Name) + "(" + strings.Join(args, ", ") + "):"
}

func (p *pythonTranslator) line(line string) (string, bool) {
	scan := strings.TrimSpace(codeOnly(line))
	if strings.HasPrefix(scan, "}") {
		if block := p.pop(); block && closerPattern.MatchString(line) {
			return "", false
		}
	}
	out, opens := structural(pythonStructure, line)
	if strings.HasSuffix(scan, "{") {
		p.blocks = append(p.blocks, opens)
	}
	return strings.TrimRight(p.tokens(out), " \t"), true
}

func (*pythonTranslator) finish(lines []string, indent string) string {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return strings.Join(lines, "\n")
		}
	}
	return indent + "pass"
}

// PHP

var phpStructure = []rule{
	r(`^(\s*)for\s*\(\s*(?:const|let|var)\s+(\w+)\s+of\s+(.*)\)\s*\{\s*$`, `${1}foreach (${3} as ${2}) {`),
	r(`^(\s*)\}\s*catch\s*\((\w+)\)\s*\{\s*$`, `${1}} catch (Exception ${2}) {`),
}

var phpTokens = []rule{
	r(`\bthis\.`, `$$this->`),
	r(`\b(?:const|let|var)\s+`, ``),
	r(`\bawait\s+`, ``),
	r(`\bundefined\b`, `null`),
	r(`\{\s*\}`, `array()`),
	r(`([\w\])])\.([A-Za-z_])`, `${1}->${2}`),
}

var (
	phpDeclared = regexp.MustCompile(`\b(?:const|let|var)\s+([A-Za-z_]\w*)`)
	phpCaught   = regexp.MustCompile(`\bcatch\s*\(\s*([A-Za-z_]\w*)\s*\)`)
)

type phpTranslator struct {
	vars *regexp.Regexp
}

// newPHPTranslator collects every declared variable, parameter and caught
// exception in source so bare references can be given their $ sigil
func newPHPTranslator(source []string) *phpTranslator {
	seen := make(map[string]bool)
	for _, line := range source {
		scan := codeOnly(line)
		for _, m := range phpDeclared.FindAllStringSubmatch(scan, -1) {
			seen[m[1]] = true
		}
		for _, m := range phpCaught.FindAllStringSubmatch(scan, -1) {
			seen[m[1]] = true
		}
		m := methodPattern.FindStringSubmatch(line)
		if m == nil || controlWords[m[3]] {
			if f := functionPattern.FindStringSubmatch(line); f != nil {
				m = []string{f[0], f[1], f[3], f[4], f[5]}
			}
		}
		if m != nil && !controlWords[m[3]] {
			for _, n := range names(parseParams(m[4])) {
				seen[n] = true
			}
		}
	}
	delete(seen, "this")

	t := &phpTranslator{}
	if len(seen) == 0 {
		return t
	}
	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, regexp.QuoteMeta(v))
	}
	sort.Strings(vars)
	t.vars = regexp.MustCompile(`(^|[^\w$>'"])(` + strings.Join(vars, "|") + `)\b`)
	return t
}

// sigil prefixes known variables with $, leaving object literal keys alone
func (p *phpTranslator) sigil(s string) string {
	if p.vars == nil {
		return s
	}
	var sb strings.Builder
	last := 0
	for _, m := range p.vars.FindAllStringSubmatchIndex(s, -1) {
		nameStart, nameEnd := m[4], m[5]
		if isObjectKey(s, nameStart, nameEnd) {
			continue
		}
		sb.WriteString(s[last:nameStart])
		sb.WriteString("$")
		sb.WriteString(s[nameStart:nameEnd])
		last = nameEnd
	}
	sb.WriteString(s[last:])
	return sb.String()
}

func isObjectKey(s string, start, end int) bool {
	rest := strings.TrimLeft(s[end:], " ")
	if !strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "::") {
		return false
	}
	before := strings.TrimRight(s[:start], " ")
	return before == "" || strings.HasSuffix(before, "{") || strings.HasSuffix(before, ",")
}

func (p *phpTranslator) tokens(s string) string {
	return join(split(s), func(c string) string { return p.sigil(apply(phpTokens, c)) }, nil)
}

func (p *phpTranslator) declare(d declaration) string {
	args := make([]string, 0, len(d.Params))
	for _, prm := range d.Params {
		arg := "$" + prm.Name
		if prm.Default != "" {
			arg += " = " + p.tokens(prm.Default)
		}
		args = append(args, arg)
	}
	prefix := "function "
	if d.Method {
		prefix = "public function "
	}
	return d.Indent + prefix + util.UnCamelCase(d.Name) + "(" + strings.Join(args, ", ") + ") {"
}

func (p *phpTranslator) line(line string) (string, bool) {
	out, _ := structural(phpStructure, line)
	return strings.TrimRight(p.tokens(out), " \t"), true
}

func (p *phpTranslator) finish(lines []string, indent string) string {
	return strings.Join(lines, "\n")
}

// JavaScript

var jsTokens = []rule{
	r(`\b((?:const|let|var)\s+[A-Za-z_$][\w$]*)\s*:\s*[^=]+?\s*=`, `${1} =`),
	r(`\s+as\s+[A-Za-z_$][\w$.]*(?:<[^>]*>)?(?:\[\])*`, ``),
	r(`<[A-Z][\w$]*(?:\[\])*>\s*\(`, `(`),
}

type jsTranslator struct{}

func (jsTranslator) tokens(s string) string {
	return join(split(s), func(c string) string { return apply(jsTokens, c) }, nil)
}

func (j jsTranslator) declare(d declaration) string {
	args := make([]string, 0, len(d.Params))
	for _, prm := range d.Params {
		if prm.Default != "" {
			args = append(args, prm.Name+" = "+prm.Default)
		} else {
			args = append(args, prm.Name)
		}
	}
	prefix := d.Export
	if d.Async {
		prefix += "async "
	}
	if !d.Method {
		prefix += "function "
	}
	return d.Indent + prefix + d.Name + " (" + strings.Join(args, ", ") + ") {"
}

func (j jsTranslator) line(line string) (string, bool) {
	return strings.TrimRight(j.tokens(line), " \t"), true
}

func (jsTranslator) finish(lines []string, indent string) string {
	return strings.Join(lines, "\n")
}
