package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (classes, tests string) {
	t.Helper()
	classes = filepath.Join(t.TempDir(), "pro")
	tests = filepath.Join(classes, "test")
	require.NoError(t, os.MkdirAll(filepath.Join(tests, "base"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(tests, "Exchange"), 0755))
	return classes, tests
}

func TestClassify(t *testing.T) {
	classes, tests := setup(t)
	w, err := New(classes, tests, func(Trigger) error { return nil })
	require.NoError(t, err)
	defer w.watcher.Close()

	cases := []struct {
		path  string
		unit  string
		tests bool
		ok    bool
	}{
		{filepath.Join(classes, "binance.ts"), "binance", false, true},
		{filepath.Join(tests, "Exchange", "testWatchTrades.ts"), "", true, true},
		{filepath.Join(tests, "base", "test.Cache.ts"), "", true, true},
		{filepath.Join(classes, "binance.js"), "", false, false},
		{filepath.Join(classes, "types.d.ts"), "", false, false},
		{filepath.Join(classes, "base", "ws", "Cache.ts"), "", false, false},
	}
	for _, tt := range cases {
		unit, isTest, ok := w.classify(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.unit, unit, tt.path)
		assert.Equal(t, tt.tests, isTest, tt.path)
	}
}

func TestDebounceBatchesChanges(t *testing.T) {
	classes, tests := setup(t)
	triggers := make(chan Trigger, 4)
	w, err := New(classes, tests, func(tr Trigger) error {
		triggers <- tr
		return nil
	})
	require.NoError(t, err)
	defer w.watcher.Close()
	w.SetDebounce(20 * time.Millisecond)

	w.handle(filepath.Join(classes, "okx.ts"))
	w.handle(filepath.Join(classes, "binance.ts"))
	w.handle(filepath.Join(classes, "okx.ts"))
	w.handle(filepath.Join(tests, "base", "test.Cache.ts"))
	w.handle(filepath.Join(classes, "README.md"))

	select {
	case tr := <-triggers:
		assert.Equal(t, []string{"binance", "okx"}, tr.Units)
		assert.True(t, tr.Tests)
	case <-time.After(2 * time.Second):
		t.Fatal("no regeneration triggered")
	}

	select {
	case tr := <-triggers:
		t.Fatalf("unexpected second trigger %+v", tr)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRegenerationsDoNotOverlap(t *testing.T) {
	classes, tests := setup(t)
	var inFlight, maxInFlight int32
	started := make(chan struct{}, 2)
	done := make(chan Trigger, 2)
	w, err := New(classes, tests, func(tr Trigger) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		started <- struct{}{}
		time.Sleep(100 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		done <- tr
		return nil
	})
	require.NoError(t, err)
	defer w.watcher.Close()
	w.SetDebounce(5 * time.Millisecond)

	w.handle(filepath.Join(classes, "okx.ts"))
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first regeneration never started")
	}
	// Fires while the first regeneration is still running
	w.handle(filepath.Join(classes, "binance.ts"))

	var units []string
	for i := 0; i < 2; i++ {
		select {
		case tr := <-done:
			units = append(units, tr.Units...)
		case <-time.After(2 * time.Second):
			t.Fatal("regeneration did not finish")
		}
	}
	assert.Equal(t, []string{"okx", "binance"}, units)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestRunReactsToWrites(t *testing.T) {
	classes, tests := setup(t)
	triggers := make(chan Trigger, 4)
	w, err := New(classes, tests, func(tr Trigger) error {
		triggers <- tr
		return nil
	})
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(classes, "kraken.ts"), []byte("export default class kraken extends krakenRest {\n}\n"), 0644))

	select {
	case tr := <-triggers:
		assert.Equal(t, []string{"kraken"}, tr.Units)
	case <-time.After(5 * time.Second):
		t.Fatal("no regeneration triggered")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), "", func(Trigger) error { return nil })
	assert.Error(t, err)
}
