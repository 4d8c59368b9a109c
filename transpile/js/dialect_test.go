package js

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/hierarchy"
)

func TestClassDeclaration(t *testing.T) {
	d := NewDialect()

	rest := hierarchy.Base{Kind: hierarchy.RestDerived, Name: "Foo"}
	assert.Equal(t, "export default class foo extends FooRest {", d.ClassDeclaration("foo", rest))
	assert.Equal(t, []string{"import FooRest from '../Foo.js';"}, d.ClassImports(rest))

	direct := hierarchy.Base{Kind: hierarchy.Direct, Name: "BarPro"}
	assert.Equal(t, "export default class bar extends BarPro {", d.ClassDeclaration("bar", direct))
	assert.Equal(t, []string{"import BarPro from './BarPro.js';"}, d.ClassImports(direct))
}

func TestImportStatement(t *testing.T) {
	d := NewDialect()
	assert.Equal(t, "import { ArrayCache, ArrayCacheBySymbolById } from '../base/ws/Cache.js';",
		d.ImportStatement(transpile.FamilyCache, []string{"ArrayCache", "ArrayCacheBySymbolById"}))
}

func TestTestFiles(t *testing.T) {
	d := NewDialect()
	assert.Equal(t, "test-watch-ticker.js", d.TestFileName("testWatchTicker"))
	assert.Equal(t, "test-order-book.js", d.TestFileName("test.OrderBook"))
	assert.Nil(t, d.TestPreamble("Cache"))
}
