package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/wsgen/logger"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	previous := logger.Logger
	logger.Logger = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Logger = previous })
	return logs
}

func TestRunStatesAreLoggedWithRunID(t *testing.T) {
	logs := observe(t)
	w := newWorkspace(t)
	o := newOrchestrator(t, w)

	ctx := logger.WithRunID(context.Background(), "run-42")
	report, err := o.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, "run-42", report.RunID)

	var states []string
	for _, entry := range logs.FilterMessage("Run state").All() {
		fields := entry.ContextMap()
		assert.Equal(t, "run-42", fields[logger.FieldRunID])
		states = append(states, fields[logger.FieldState].(string))
	}
	assert.Equal(t, []string{
		"init", "preparing_folders", "generating_units", "generating_tests", "reporting", "done",
	}, states)
}

func TestRunIDIsGeneratedWhenAbsent(t *testing.T) {
	previous := logger.Logger
	logger.Logger = zaptest.NewLogger(t).Sugar()
	t.Cleanup(func() { logger.Logger = previous })

	w := newWorkspace(t)
	o := newOrchestrator(t, w)

	first, err := o.Run(context.Background(), Options{TestOnly: true})
	require.NoError(t, err)
	second, err := o.Run(context.Background(), Options{TestOnly: true})
	require.NoError(t, err)

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
}
