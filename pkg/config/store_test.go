package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_thenLoad_roundTrips(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	created, err := s.Create(PresetPOC)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, created.State)
	assert.Equal(t, 0.083, created.LoopLimits.MinHours)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, created.LoopLimits, loaded.LoopLimits)
	assert.Equal(t, Version, loaded.Version)
}

func TestLoad_notFound(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnknownFields_preservedOnRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.Create(PresetPOC)
	require.NoError(t, err)

	// Simulate a future schema field arriving on disk.
	raw, err := s.Load()
	require.NoError(t, err)
	raw.Unknown = map[string]json.RawMessage{"future_field": json.RawMessage(`"kept"`)}
	require.NoError(t, s.Save(raw))

	reloaded, err := s.Load()
	require.NoError(t, err)
	require.Contains(t, reloaded.Unknown, "future_field")
	assert.Equal(t, `"kept"`, string(reloaded.Unknown["future_field"]))
}

func TestStartThenStop_roundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.Create(PresetPOC)
	require.NoError(t, err)

	_, err = s.RequestStop()
	require.NoError(t, err)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, StateDraining, loaded.State)
	assert.Empty(t, loaded.Guidance.Forbidden)
	assert.Empty(t, loaded.Guidance.Encouraged)
}

func TestTransition_illegalEdgeRejectedAndConfigUnchanged(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.Create(PresetPOC) // -> running
	require.NoError(t, err)

	_, err = s.Transition(StateDraining)
	require.NoError(t, err)

	_, err = s.Transition(StateRunning) // draining -> running is illegal
	assert.Error(t, err)
	var illegal ErrIllegalTransition
	assert.ErrorAs(t, err, &illegal)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, StateDraining, loaded.State, "rejected transition must not mutate config")
}

func TestEncourage_twiceLeavesOneOccurrenceAndBumpsTimestamp(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.Create(PresetPOC)
	require.NoError(t, err)

	first, err := s.Encourage("write more tests")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := s.Encourage("Write More Tests")
	require.NoError(t, err)

	assert.Len(t, second.Guidance.Encouraged, 1)
	assert.True(t, second.Guidance.Timestamp.After(first.Guidance.Timestamp))
}

func TestForbid_caseFoldedDedup(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.Create(PresetPOC)
	require.NoError(t, err)

	_, err = s.Forbid("database migrations")
	require.NoError(t, err)
	d, err := s.Forbid("DATABASE MIGRATIONS")
	require.NoError(t, err)

	assert.Len(t, d.Guidance.Forbidden, 1)
}

func TestReset_destroysAndRecreates(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.Create(PresetPOC)
	require.NoError(t, err)
	_, err = s.Forbid("something")
	require.NoError(t, err)

	reset, err := s.Reset(PresetProduction)
	require.NoError(t, err)
	assert.Empty(t, reset.Guidance.Forbidden)
	assert.True(t, reset.ProdMode)
}

func TestLoopLimitsValidate(t *testing.T) {
	bad := LoopLimits{MinHours: 2, MaxHours: 1, MinIterations: 1, MaxIterations: 10}
	assert.Error(t, bad.Validate())

	good := LoopLimits{MinHours: 1, MaxHours: 2, MinIterations: 1, MaxIterations: 10}
	assert.NoError(t, good.Validate())
}
