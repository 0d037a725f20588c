package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func withObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	saved := Log
	Log = zap.New(core).Sugar()
	t.Cleanup(func() { Log = saved })
	return logs
}

func TestLogLevelFromEnvironment(t *testing.T) {
	t.Setenv(LOG_ENABLE, "30")
	assert.Equal(t, HPCSWEEP_WARNING_LOGGING, LogLevel())

	t.Setenv(LOG_ENABLE, "not-a-number")
	assert.Equal(t, HPCSWEEP_CRITICAL_LOGGING, LogLevel())
}

func TestDefaultLevelIsQuiet(t *testing.T) {
	logs := withObserver(t)
	t.Setenv(LOG_ENABLE, "")

	InfoPrintf("info")
	WarningPrintf("warning")
	ErrorPrintf("error")
	CriticalPrintf("critical")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "critical", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, zapLevel(LogLevel()))
}

func TestPrintfRespectsLevel(t *testing.T) {
	logs := withObserver(t)
	t.Setenv(LOG_ENABLE, "30")

	DebugPrintf("debug %d", 1)
	InfoPrintf("info %d", 2)
	WarningPrintf("warning %d", 3)
	ErrorPrintf("error %d", 4)
	CriticalPrintf("critical %d", 5)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "warning 3", entries[0].Message)
	assert.Equal(t, "error 4", entries[1].Message)
	assert.Equal(t, "critical 5", entries[2].Message)
	assert.Equal(t, "critical", entries[2].ContextMap()["severity"])
}

func TestObjLogsStructuredValue(t *testing.T) {
	logs := withObserver(t)
	t.Setenv(LOG_ENABLE, "10")

	DebugObj("plan", map[string]int{"nodes": 4})

	entries := logs.FilterMessage("plan").All()
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]int{"nodes": 4}, entries[0].ContextMap()["object"])
}

func TestSetLevelOverridesEnvironment(t *testing.T) {
	t.Setenv(LOG_ENABLE, "50")
	SetLevel(HPCSWEEP_DEBUG_LOGGING)
	t.Cleanup(func() { override.Store(0) })

	assert.Equal(t, HPCSWEEP_DEBUG_LOGGING, LogLevel())
	assert.Equal(t, zapcore.DebugLevel, atom.Level())
}

func TestOpenLogFileStartsOverStaleFile(t *testing.T) {
	dir := t.TempDir()
	logfile := filepath.Join(dir, LOG_FILENAME)
	stale := time.Now().Add(-48*time.Hour).Format(time.RFC3339) + "\nold line\n"
	require.NoError(t, os.WriteFile(logfile, []byte(stale), 0644))

	f, err := openLogFile(dir)
	require.NoError(t, err)
	f.Close()

	data, err := os.ReadFile(logfile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "old line")
	_, perr := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	assert.NoError(t, perr)
}

func TestOpenLogFileKeepsFreshFile(t *testing.T) {
	dir := t.TempDir()
	logfile := filepath.Join(dir, LOG_FILENAME)
	fresh := time.Now().Format(time.RFC3339) + "\nrecent line\n"
	require.NoError(t, os.WriteFile(logfile, []byte(fresh), 0644))

	f, err := openLogFile(dir)
	require.NoError(t, err)
	f.Close()

	data, err := os.ReadFile(logfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recent line")
}
