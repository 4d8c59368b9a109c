package python

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/hierarchy"
)

func TestClassDeclaration(t *testing.T) {
	d := NewDialect()

	rest := hierarchy.Base{Kind: hierarchy.RestDerived, Name: "binance", Declared: "binanceRest"}
	assert.Equal(t, "class binance(ccxt.async_support.binance):", d.ClassDeclaration("binance", rest))
	assert.Equal(t, []string{"import ccxt.async_support"}, d.ClassImports(rest))

	direct := hierarchy.Base{Kind: hierarchy.Direct, Name: "BarPro", Declared: "BarPro"}
	assert.Equal(t, "class bar(BarPro):", d.ClassDeclaration("bar", direct))
	assert.Equal(t, []string{"from ccxt.pro.BarPro import BarPro"}, d.ClassImports(direct))
}

func TestImportStatement(t *testing.T) {
	d := NewDialect()
	assert.Equal(t, "from ccxt.async_support.base.ws.cache import ArrayCache, ArrayCacheByTimestamp",
		d.ImportStatement(transpile.FamilyCache, []string{"ArrayCache", "ArrayCacheByTimestamp"}))
	assert.Equal(t, "", d.ImportStatement(transpile.Family("unknown"), []string{"X"}))
}

func TestTestFileName(t *testing.T) {
	d := NewDialect()
	assert.Equal(t, "test_watch_order_book.py", d.TestFileName("testWatchOrderBook"))
	assert.Equal(t, "test_cache.py", d.TestFileName("test.Cache"))
}

func TestTestPreamble(t *testing.T) {
	d := NewDialect()

	cache := d.TestPreamble("Cache")
	assert.Contains(t, cache, "from ccxt.async_support.base.ws.cache import ArrayCache, ArrayCacheByTimestamp, ArrayCacheBySymbolById, ArrayCacheBySymbolBySide  # noqa: F402")
	assert.Contains(t, cache, "    return a == b")

	book := d.TestPreamble("OrderBook")
	assert.Contains(t, book, "from ccxt.async_support.base.ws.order_book import OrderBook, IndexedOrderBook, CountedOrderBook  # noqa: F402")
	assert.Contains(t, book, "def equals(a, b):")

	assert.Nil(t, d.TestPreamble("Exchange"))
}
