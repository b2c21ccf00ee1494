package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuildWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := Build(Options{
		Level: "info",
		JSON:  true,
		Rotate: FileRotate{
			Enable:    true,
			Filename:  file,
			MaxSizeMB: 1,
		},
	})
	l.Info("book checked out", zap.String("bookId", "b1"))
	l.Debug("dropped below level")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"book checked out"`)
	assert.Contains(t, string(b), `"bookId":"b1"`)
	assert.NotContains(t, string(b), "dropped below level")
}

func TestBuildInvalidLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := Build(Options{Level: "loud"})
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestToStdLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "std.log")
	l, cleanup := Build(Options{Level: "debug", JSON: true, Rotate: FileRotate{Enable: true, Filename: file}})
	ToStdLogger(l, zapcore.WarnLevel).Print("slow query")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"level":"warn"`)
	assert.Contains(t, string(b), "slow query")
}
