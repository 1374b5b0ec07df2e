package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_writesToProjectLogFile(t *testing.T) {
	dir := t.TempDir()
	logger := New(dir)
	logger.Warn("safety_continue", zap.String("reason", "detector_exception"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "safety_continue")
}

func TestNoop_doesNotPanic(t *testing.T) {
	logger := Noop()
	assert.NotPanics(t, func() {
		logger.Info("anything")
	})
}
