package testgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/js"
	"github.com/teranos/wsgen/transpile/php"
	"github.com/teranos/wsgen/transpile/python"
	"github.com/teranos/wsgen/transpile/transform"
)

func newPipeline(t *testing.T, engine transform.Engine) (*Pipeline, string) {
	t.Helper()
	root := t.TempDir()
	p := &Pipeline{
		Engine:   engine,
		Dialects: transpile.NewDialects(python.NewDialect(), php.NewDialect(), js.NewDialect()),
		Source:   filepath.Join(root, "ts"),
		Dirs: map[transpile.Target]string{
			transpile.Python: filepath.Join(root, "py"),
			transpile.PHP:    filepath.Join(root, "php"),
			transpile.JS:     filepath.Join(root, "js"),
		},
	}
	return p, root
}

func writeCanonical(t *testing.T, p *Pipeline, subdir, name, content string) {
	t.Helper()
	dir := filepath.Join(p.Source, subdir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".ts"), []byte(content), 0644))
}

func TestBaseCases(t *testing.T) {
	p, root := newPipeline(t, transform.NewLexical())

	cases := p.BaseCases()
	require.Len(t, cases, 2)

	cache := cases[0]
	assert.Equal(t, "test.Cache", cache.Name)
	assert.True(t, cache.Base)
	assert.Equal(t, filepath.Join(root, "ts", "base", "test.Cache.ts"), cache.Source)
	assert.Equal(t, filepath.Join(root, "py", "base", "test_cache.py"), cache.Outputs[transpile.Python])
	assert.Equal(t, filepath.Join(root, "php", "base", "test_cache.php"), cache.Outputs[transpile.PHP])
	assert.Equal(t, filepath.Join(root, "js", "base", "test-cache.js"), cache.Outputs[transpile.JS])

	// Python imports the containers and compares directly; PHP only
	// receives the serialized comparison helper
	assert.Contains(t, strings.Join(cache.Headers[transpile.Python], "\n"), "import ArrayCache, ArrayCacheByTimestamp, ArrayCacheBySymbolById, ArrayCacheBySymbolBySide")
	assert.Contains(t, cache.Headers[transpile.Python], "    return a == b")
	assert.Contains(t, cache.Headers[transpile.PHP], "   return json_encode($a) === json_encode($b);")
	assert.NotContains(t, cache.Headers, transpile.JS)

	book := cases[1]
	assert.Equal(t, "test.OrderBook", book.Name)
	assert.Contains(t, strings.Join(book.Headers[transpile.Python], "\n"), "import OrderBook, IndexedOrderBook, CountedOrderBook")
}

func TestUnitCases(t *testing.T) {
	p, root := newPipeline(t, transform.NewLexical())

	cases, err := p.UnitCases()
	require.NoError(t, err)
	assert.Empty(t, cases)

	writeCanonical(t, p, UnitDir, "testWatchTrades", "")
	writeCanonical(t, p, UnitDir, "testWatchOHLCV", "")
	require.NoError(t, os.WriteFile(filepath.Join(p.Source, UnitDir, "README.md"), nil, 0644))

	cases, err = p.UnitCases()
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "testWatchOHLCV", cases[0].Name)
	assert.False(t, cases[0].Base)
	assert.Equal(t, filepath.Join(root, "py", "Exchange", "test_watch_ohlcv.py"), cases[0].Outputs[transpile.Python])
	assert.Equal(t, filepath.Join(root, "js", "Exchange", "test-watch-trades.js"), cases[1].Outputs[transpile.JS])
	assert.Empty(t, cases[1].Headers)
}

func TestRun(t *testing.T) {
	p, root := newPipeline(t, transform.NewLexical())

	writeCanonical(t, p, BaseDir, "test.Cache", "let cache = new ArrayCache (3);\ncache.append (1);\n")
	writeCanonical(t, p, UnitDir, "testWatchTrades", "export default async function testWatchTrades (exchange) {\n    await exchange.watchTrades ('BTC/USDT');\n}\n")
	// test.OrderBook is absent

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Written, 6)
	require.Len(t, report.Missing(), 1)
	assert.Equal(t, "test.OrderBook", report.Missing()[0].Test)
	assert.NoError(t, report.Err())

	py, err := os.ReadFile(filepath.Join(root, "py", "base", "test_cache.py"))
	require.NoError(t, err)
	content := string(py)
	assert.True(t, strings.HasPrefix(content, "# -*- coding: utf-8 -*-\n\n# PLEASE DO NOT EDIT THIS FILE"))
	notice := strings.Index(content, "# PLEASE DO NOT EDIT")
	preamble := strings.Index(content, "def equals(a, b):")
	body := strings.Index(content, "cache = ArrayCache (3)")
	assert.True(t, notice < preamble && preamble < body, "header, then preamble, then body")

	phpTest, err := os.ReadFile(filepath.Join(root, "php", "Exchange", "test_watch_trades.php"))
	require.NoError(t, err)
	assert.Contains(t, string(phpTest), "function test_watch_trades($exchange) {")
	assert.NotContains(t, string(phpTest), "function equals")

	_, err = os.Stat(filepath.Join(root, "js", "Exchange", "test-watch-trades.js"))
	assert.NoError(t, err)
}

type failingEngine struct {
	transform.Engine
	fail string
}

func (f failingEngine) TranspileTest(ctx context.Context, path string, target transpile.Target) (string, error) {
	if strings.Contains(path, f.fail) {
		return "", errors.New("engine exploded")
	}
	return f.Engine.TranspileTest(ctx, path, target)
}

func TestRunIsolatesFailures(t *testing.T) {
	p, _ := newPipeline(t, failingEngine{Engine: transform.NewLexical(), fail: "test.Cache"})

	writeCanonical(t, p, BaseDir, "test.Cache", "x;\n")
	writeCanonical(t, p, BaseDir, "test.OrderBook", "y;\n")

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Written, 3, "OrderBook still generated for every target")
	assert.Empty(t, report.Missing())
	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), "engine exploded")
}

func TestRunCancelled(t *testing.T) {
	p, _ := newPipeline(t, transform.NewLexical())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
