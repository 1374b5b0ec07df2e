package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_firstTouchCreates(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	r, err := s.LoadOrCreate("s1", "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, r.IterationCount)
	assert.Equal(t, "s1", r.SessionID)
}

func TestSaveThenLoad_roundTrips(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	r, err := s.LoadOrCreate("s1", "", time.Now())
	require.NoError(t, err)
	r.Touch(time.Now())
	require.NoError(t, s.Save(r))

	loaded, err := s.Load("s1")
	require.NoError(t, err)
	assert.Equal(t, r.IterationCount, loaded.IterationCount)
}

func TestLoad_missingReturnsErrNotFound(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadOrCreate_inheritsFromParentOnFirstTouch(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	parent, err := s.LoadOrCreate("parent", "", time.Now())
	require.NoError(t, err)
	parent.FocusFiles = []string{"docs/plan.md"}
	parent.IdleStreak = 2
	require.NoError(t, s.Save(parent))

	child, err := s.LoadOrCreate("child", "parent", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/plan.md"}, child.FocusFiles)
	assert.Equal(t, 2, child.IdleStreak)
}

func TestLoadOrCreate_unknownParentIsNotFatal(t *testing.T) {
	s := NewStore(t.TempDir())
	r, err := s.LoadOrCreate("child", "nonexistent-parent", time.Now())
	require.NoError(t, err)
	assert.Empty(t, r.FocusFiles)
}

func TestSanitize_noPathTraversal(t *testing.T) {
	assert.NotContains(t, Sanitize("../../etc/passwd"), "..")
}
