package transform

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
)

const classSource = `import binanceRest from '../binance.js';
import { ArrayCache } from '../base/ws/Cache.js';

export default class binance extends binanceRest {
    async watchTrades (symbol: string, limit: Int = undefined, params = {}) {
        const url = this.urls['api']['ws'];
        let cache = new ArrayCache (limit);
        if (cache === undefined) {
            return false;
        }
        return cache;
    }
}
`

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTranspileClass(t *testing.T) {
	path := writeSource(t, "binance.ts", classSource)

	tests := []struct {
		target transpile.Target
		body   string
	}{
		{
			target: transpile.Python,
			body: `    async def watch_trades(self, symbol, limit=None, params={}):
        url = self.urls['api']['ws']
        cache = ArrayCache (limit)
        if cache == None:
            return False
        return cache`,
		},
		{
			target: transpile.PHP,
			body: `    public function watch_trades($symbol, $limit = null, $params = array()) {
        $url = $this->urls['api']['ws'];
        $cache = new ArrayCache ($limit);
        if ($cache === null) {
            return false;
        }
        return $cache;
    }`,
		},
		{
			target: transpile.JS,
			body: `    async watchTrades (symbol, limit = undefined, params = {}) {
        const url = this.urls['api']['ws'];
        let cache = new ArrayCache (limit);
        if (cache === undefined) {
            return false;
        }
        return cache;
    }`,
		},
	}

	engine := NewLexical()
	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			out, err := engine.Transpile(context.Background(), path, tt.target)
			require.NoError(t, err)
			assert.Equal(t, "binance", out.ClassName)
			assert.Equal(t, "binanceRest", out.Parent)
			assert.Equal(t, tt.body, out.Body)
		})
	}
}

func TestTranspileEmptyClass(t *testing.T) {
	path := writeSource(t, "bar.ts", "export default class bar extends BarPro {\n}\n")

	out, err := NewLexical().Transpile(context.Background(), path, transpile.Python)
	require.NoError(t, err)
	assert.Equal(t, "BarPro", out.Parent)
	assert.Equal(t, "    pass", out.Body)

	out, err = NewLexical().Transpile(context.Background(), path, transpile.PHP)
	require.NoError(t, err)
	assert.Equal(t, "", out.Body)
}

func TestTranspileLiteralsSurvive(t *testing.T) {
	src := `export default class foo extends fooRest {
    describe () {
        const options = {
            'url': 'wss://stream.foo.com/ws', // this.url stays
        };
        return this.deepExtend (super.describe (), options);
    }
}
`
	path := writeSource(t, "foo.ts", src)

	py, err := NewLexical().Transpile(context.Background(), path, transpile.Python)
	require.NoError(t, err)
	assert.Contains(t, py.Body, "'url': 'wss://stream.foo.com/ws', # this.url stays")
	assert.Contains(t, py.Body, "        }\n", "object literal closer is kept")
	assert.Contains(t, py.Body, "return self.deepExtend (super.describe (), options)")

	php, err := NewLexical().Transpile(context.Background(), path, transpile.PHP)
	require.NoError(t, err)
	assert.Contains(t, php.Body, "'url': 'wss://stream.foo.com/ws',")
	assert.Contains(t, php.Body, "$options = {")
	assert.Contains(t, php.Body, "return $this->deepExtend (super->describe (), $options);")
}

func TestTranspileControlFlow(t *testing.T) {
	src := `export default class foo extends fooRest {
    handle (client, message) {
        for (const trade of message) {
            if (!trade) {
                continue;
            } else if (trade.side !== 'buy' && trade.amount > 0) {
                client.resolve (trade);
            } else {
                throw new ExchangeError ('bad');
            }
        }
    }
}
`
	path := writeSource(t, "foo.ts", src)

	py, err := NewLexical().Transpile(context.Background(), path, transpile.Python)
	require.NoError(t, err)
	assert.Equal(t, `    def handle(self, client, message):
        for trade in message:
            if not trade:
                continue
            elif trade.side != 'buy' and trade.amount > 0:
                client.resolve (trade)
            else:
                raise ExchangeError ('bad')`, py.Body)

	php, err := NewLexical().Transpile(context.Background(), path, transpile.PHP)
	require.NoError(t, err)
	assert.Contains(t, php.Body, "    public function handle($client, $message) {")
	assert.Contains(t, php.Body, "        foreach ($message as $trade) {")
	assert.Contains(t, php.Body, "} else if ($trade->side !== 'buy' && $trade->amount > 0) {")
}

func TestTranspileStripsTypeScript(t *testing.T) {
	src := `export default class foo extends fooRest {
    parse (message: Dict): Trade[] {
        const trades: Trade[] = message['data'] as Trade[];
        return trades;
    }
}
`
	path := writeSource(t, "foo.ts", src)

	js, err := NewLexical().Transpile(context.Background(), path, transpile.JS)
	require.NoError(t, err)
	assert.Equal(t, `    parse (message) {
        const trades = message['data'];
        return trades;
    }`, js.Body)
}

func TestTranspileErrors(t *testing.T) {
	engine := NewLexical()
	ctx := context.Background()

	_, err := engine.Transpile(ctx, filepath.Join(t.TempDir(), "absent.ts"), transpile.Python)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	path := writeSource(t, "helper.ts", "export function helper () {}\n")
	_, err = engine.Transpile(ctx, path, transpile.Python)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	path = writeSource(t, "open.ts", "export default class a extends b {\n    x () {\n")
	_, err = engine.Transpile(ctx, path, transpile.Python)
	require.Error(t, err)

	path = writeSource(t, "ok.ts", "export default class a extends b {\n}\n")
	_, err = engine.Transpile(ctx, path, transpile.Target("ruby"))
	require.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = engine.Transpile(cancelled, path, transpile.Python)
	assert.ErrorIs(t, err, context.Canceled)
}

const testSource = `import assert from 'assert';
import { ArrayCache } from '../../base/ws/Cache.ts';

function equals (a, b) {
    return JSON.stringify (a) === JSON.stringify (b);
}

let cache = new ArrayCache (3);
cache.append (1);
assert (equals (cache, [ 1 ]));
`

func TestTranspileBaseTest(t *testing.T) {
	path := writeSource(t, "test.Cache.ts", testSource)
	engine := NewLexical()
	ctx := context.Background()

	py, err := engine.TranspileTest(ctx, path, transpile.Python)
	require.NoError(t, err)
	assert.Equal(t, "cache = ArrayCache (3)\ncache.append (1)\nassert (equals (cache, [ 1 ]))", strings.TrimSpace(py))

	php, err := engine.TranspileTest(ctx, path, transpile.PHP)
	require.NoError(t, err)
	assert.Equal(t, "$cache = new ArrayCache (3);\n$cache->append (1);\nassert (equals ($cache, [ 1 ]));", strings.TrimSpace(php))

	js, err := engine.TranspileTest(ctx, path, transpile.JS)
	require.NoError(t, err)
	assert.Contains(t, js, "import { ArrayCache } from '../../base/ws/Cache.js';")
	assert.Contains(t, js, "function equals (a, b) {")
}

func TestTranspileUnitTest(t *testing.T) {
	src := `import testTrade from '../../../test/Exchange/base/test.trade.js';

export default async function testWatchTrades (exchange, symbol: string) {
    const trades = await exchange.watchTrades (symbol);
    testTrade (exchange, trades[0]);
}
`
	path := writeSource(t, "testWatchTrades.ts", src)
	engine := NewLexical()
	ctx := context.Background()

	py, err := engine.TranspileTest(ctx, path, transpile.Python)
	require.NoError(t, err)
	assert.Equal(t, `async def test_watch_trades(exchange, symbol):
    trades = await exchange.watchTrades (symbol)
    testTrade (exchange, trades[0])`, strings.TrimSpace(py))

	php, err := engine.TranspileTest(ctx, path, transpile.PHP)
	require.NoError(t, err)
	assert.Equal(t, `function test_watch_trades($exchange, $symbol) {
    $trades = $exchange->watchTrades ($symbol);
    testTrade ($exchange, $trades[0]);
}`, strings.TrimSpace(php))

	js, err := engine.TranspileTest(ctx, path, transpile.JS)
	require.NoError(t, err)
	assert.Contains(t, js, "export default async function testWatchTrades (exchange, symbol) {")
}
