// Package js renders generated classes and tests as ES modules.
package js

import (
	"fmt"
	"strings"

	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/hierarchy"
	"github.com/teranos/wsgen/transpile/util"
)

// Dialect implements transpile.Dialect for JavaScript
type Dialect struct{}

// NewDialect creates a JavaScript dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

func (d *Dialect) Target() transpile.Target { return transpile.JS }
func (d *Dialect) Extension() string        { return "js" }
func (d *Dialect) CommentPrefix() string    { return "//" }
func (d *Dialect) Pragma() []string         { return nil }
func (d *Dialect) Namespace() []string      { return nil }
func (d *Dialect) FixedImports() []string   { return nil }
func (d *Dialect) ClassFooter() string      { return "}" }

// ClassImports imports the REST class from the parent directory under a
// Rest alias, or a sibling streaming base
func (d *Dialect) ClassImports(base hierarchy.Base) []string {
	if base.Kind == hierarchy.RestDerived {
		return []string{fmt.Sprintf("import %sRest from '../%s.js';", base.Name, base.Name)}
	}
	return []string{fmt.Sprintf("import %s from './%s.js';", base.Name, base.Name)}
}

// ClassDeclaration opens the default-exported class
func (d *Dialect) ClassDeclaration(className string, base hierarchy.Base) string {
	if base.Kind == hierarchy.RestDerived {
		return fmt.Sprintf("export default class %s extends %sRest {", className, base.Name)
	}
	return fmt.Sprintf("export default class %s extends %s {", className, base.Name)
}

// ImportStatement renders a named import for a helper family
func (d *Dialect) ImportStatement(family transpile.Family, symbols []string) string {
	var module string
	switch family {
	case transpile.FamilyCache:
		module = "../base/ws/Cache.js"
	case transpile.FamilyOrderBookSide:
		module = "../base/ws/OrderBookSide.js"
	default:
		return ""
	}
	return fmt.Sprintf("import { %s } from '%s';", strings.Join(symbols, ", "), module)
}

// TestFileName converts the canonical test name to kebab-case
func (d *Dialect) TestFileName(canonical string) string {
	return util.Kebab(canonical) + ".js"
}

// TestPreamble returns nil: the canonical tests import their helpers and
// those imports survive transformation
func (d *Dialect) TestPreamble(baseTest string) []string {
	return nil
}
