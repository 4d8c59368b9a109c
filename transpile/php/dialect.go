// Package php renders generated classes and tests as PHP files in the
// ccxt\pro namespace.
package php

import (
	"fmt"
	"strings"

	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/hierarchy"
	"github.com/teranos/wsgen/transpile/util"
)

// Dialect implements transpile.Dialect for PHP
type Dialect struct{}

// NewDialect creates a PHP dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

func (d *Dialect) Target() transpile.Target { return transpile.PHP }
func (d *Dialect) Extension() string        { return "php" }
func (d *Dialect) CommentPrefix() string    { return "//" }
func (d *Dialect) Pragma() []string         { return []string{"<?php"} }
func (d *Dialect) Namespace() []string      { return []string{`namespace ccxt\pro;`} }
func (d *Dialect) FixedImports() []string   { return []string{"use Exception; // a common import"} }
func (d *Dialect) ClassFooter() string      { return "}" }

// ClassImports returns nothing: parents are referenced fully qualified
func (d *Dialect) ClassImports(base hierarchy.Base) []string {
	return nil
}

// ClassDeclaration extends the async edition of a REST class or the named
// streaming base
func (d *Dialect) ClassDeclaration(className string, base hierarchy.Base) string {
	if base.Kind == hierarchy.RestDerived {
		return fmt.Sprintf(`class %s extends \ccxt\async\%s {`, className, base.Name)
	}
	return fmt.Sprintf(`class %s extends \ccxt\pro\%s {`, className, base.Name)
}

// ImportStatement renders a grouped use declaration
func (d *Dialect) ImportStatement(family transpile.Family, symbols []string) string {
	switch family {
	case transpile.FamilyCache, transpile.FamilyOrderBookSide:
		return fmt.Sprintf(`use ccxt\pro\{%s};`, strings.Join(symbols, ", "))
	default:
		return ""
	}
}

// TestFileName converts the canonical test name to snake_case
func (d *Dialect) TestFileName(canonical string) string {
	return util.UnCamelCase(canonical) + ".php"
}

// PHP's == on arrays ignores key order and juggles types, so base tests
// compare serialized representations instead.
var equalsHelper = []string{
	"function equals($a, $b) {",
	"   return json_encode($a) === json_encode($b);",
	"}",
}

// TestPreamble defines the equals helper for base tests
func (d *Dialect) TestPreamble(baseTest string) []string {
	switch baseTest {
	case "Cache", "OrderBook":
		lines := []string{""}
		lines = append(lines, equalsHelper...)
		return append(lines, "")
	default:
		return nil
	}
}
