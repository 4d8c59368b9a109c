// Package python renders generated classes and tests as Python 3 modules
// under the ccxt.pro package.
package python

import (
	"fmt"
	"strings"

	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/hierarchy"
	"github.com/teranos/wsgen/transpile/util"
)

// Dialect implements transpile.Dialect for Python
type Dialect struct{}

// NewDialect creates a Python dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

func (d *Dialect) Target() transpile.Target { return transpile.Python }
func (d *Dialect) Extension() string        { return "py" }
func (d *Dialect) CommentPrefix() string    { return "#" }
func (d *Dialect) Pragma() []string         { return []string{"# -*- coding: utf-8 -*-"} }
func (d *Dialect) Namespace() []string      { return nil }
func (d *Dialect) FixedImports() []string   { return nil }
func (d *Dialect) ClassFooter() string      { return "" }

// ClassImports imports the async package for REST-derived classes and the
// streaming base module otherwise
func (d *Dialect) ClassImports(base hierarchy.Base) []string {
	if base.Kind == hierarchy.RestDerived {
		return []string{"import ccxt.async_support"}
	}
	return []string{fmt.Sprintf("from ccxt.pro.%s import %s", base.Name, base.Name)}
}

// ClassDeclaration opens the class
func (d *Dialect) ClassDeclaration(className string, base hierarchy.Base) string {
	if base.Kind == hierarchy.RestDerived {
		return fmt.Sprintf("class %s(ccxt.async_support.%s):", className, base.Name)
	}
	return fmt.Sprintf("class %s(%s):", className, base.Name)
}

// ImportStatement renders a from-import for a helper family
func (d *Dialect) ImportStatement(family transpile.Family, symbols []string) string {
	var module string
	switch family {
	case transpile.FamilyCache:
		module = "ccxt.async_support.base.ws.cache"
	case transpile.FamilyOrderBookSide:
		module = "ccxt.async_support.base.ws.order_book_side"
	default:
		return ""
	}
	return fmt.Sprintf("from %s import %s", module, strings.Join(symbols, ", "))
}

// TestFileName converts the canonical test name to snake_case
func (d *Dialect) TestFileName(canonical string) string {
	return util.UnCamelCase(canonical) + ".py"
}

// Equality helper for base tests. Python compares composite values
// structurally, so direct comparison suffices.
var equalsHelper = []string{
	"def equals(a, b):",
	"    return a == b",
}

// TestPreamble imports the containers a base test exercises and defines
// the equals helper
func (d *Dialect) TestPreamble(baseTest string) []string {
	var importLine string
	switch baseTest {
	case "Cache":
		importLine = "from ccxt.async_support.base.ws.cache import ArrayCache, ArrayCacheByTimestamp, ArrayCacheBySymbolById, ArrayCacheBySymbolBySide  # noqa: F402"
	case "OrderBook":
		importLine = "from ccxt.async_support.base.ws.order_book import OrderBook, IndexedOrderBook, CountedOrderBook  # noqa: F402"
	default:
		return nil
	}
	lines := []string{"", importLine, "", ""}
	lines = append(lines, equalsHelper...)
	return append(lines, "")
}
