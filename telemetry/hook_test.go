package telemetry_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickchristie/uniqlist"
	"github.com/rickchristie/uniqlist/backfill"
	"github.com/rickchristie/uniqlist/internal/tt"
	"github.com/rickchristie/uniqlist/telemetry"
)

func TestHook_RecordsFullRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	writer, err := telemetry.NewWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	backend := tt.NewMockBackend().
		AddItems("Mercury", "Venus", "Earth", "Mars", "Jupiter")

	hooks := uniqlist.NewHookRegistry().Register(telemetry.NewHook(writer))
	engine := uniqlist.New(backend, backfill.Hybrid(), uniqlist.DefaultConfig()).
		WithHooks(hooks)

	seed := uint64(42)
	_, diags, err := engine.Generate(context.Background(), "planets", 5, &seed)
	require.NoError(t, err)
	require.True(t, diags.Success)

	// One attempt record per backend call, plus one run record.
	lines := readLines(t, path)
	require.Len(t, lines, 2)

	var attempt telemetry.AttemptRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &attempt))
	assert.Equal(t, telemetry.SchemaVersion, attempt.Version)
	assert.Equal(t, telemetry.KindAttempt, attempt.Kind)
	assert.Equal(t, "planets", attempt.Query)
	assert.Equal(t, 5, attempt.Target)
	assert.Equal(t, 1, attempt.Pass)
	assert.Equal(t, 1, attempt.Attempt)
	assert.Equal(t, string(uniqlist.ModeGuided), attempt.Mode)
	require.NotNil(t, attempt.Seed)
	assert.Equal(t, uint64(42), *attempt.Seed)
	assert.Len(t, attempt.Items, 5)
	assert.Empty(t, attempt.Error)

	var run telemetry.RunRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &run))
	assert.Equal(t, telemetry.SchemaVersion, run.Version)
	assert.Equal(t, telemetry.KindRun, run.Kind)
	assert.Equal(t, attempt.RunID, run.RunID)
	assert.Equal(t, "planets", run.Query)
	assert.Equal(t, 5, run.UniqueCount)
	require.NotNil(t, run.DuplicateRate)
	require.NotNil(t, run.BackfillRounds)
	assert.Equal(t, 0, *run.BackfillRounds)
	require.NotNil(t, run.CircuitBreaker)
	assert.False(t, *run.CircuitBreaker)
	assert.Empty(t, run.FailureReason)
}

func TestHook_RecordsFailedAttempts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	writer, err := telemetry.NewWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	backend := tt.NewMockBackend().
		AddError(uniqlist.ErrDecodeFailed).
		AddItems("Mercury", "Venus", "Earth")

	hooks := uniqlist.NewHookRegistry().Register(telemetry.NewHook(writer))
	engine := uniqlist.New(backend, backfill.Hybrid(), uniqlist.DefaultConfig()).
		WithHooks(hooks)

	_, _, err = engine.Generate(context.Background(), "planets", 3, nil)
	require.NoError(t, err)

	lines := readLines(t, path)
	require.Len(t, lines, 3) // failed attempt, successful retry, run record

	var failed telemetry.AttemptRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &failed))
	assert.Equal(t, 1, failed.Attempt)
	assert.NotEmpty(t, failed.Error)
	assert.Nil(t, failed.Items)

	var retried telemetry.AttemptRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &retried))
	assert.Equal(t, 2, retried.Attempt)
	assert.Empty(t, retried.Error)
	assert.Len(t, retried.Items, 3)
}

// Top duplicate offenders from the run diagnostics land in the run record.
func TestHook_RecordsTopDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	writer, err := telemetry.NewWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	backend := tt.NewMockBackend().
		AddItems("Mercury", "Mars", "Earth", "mercury", "MERCURY", "Mars")

	hooks := uniqlist.NewHookRegistry().Register(telemetry.NewHook(writer))
	engine := uniqlist.New(backend, backfill.Hybrid(), uniqlist.DefaultConfig()).
		WithHooks(hooks)

	_, _, err = engine.Generate(context.Background(), "planets", 3, nil)
	require.NoError(t, err)

	lines := readLines(t, path)
	var run telemetry.RunRecord
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &run))

	require.Len(t, run.TopDuplicates, 2)
	assert.Equal(t, uniqlist.Offender{Key: "mercury", Count: 2}, run.TopDuplicates[0])
	assert.Equal(t, uniqlist.Offender{Key: "mars", Count: 1}, run.TopDuplicates[1])
}
