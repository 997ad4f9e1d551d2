package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	DisableColors()
	t.Cleanup(func() {
		SetOutput(logrus.StandardLogger().Out)
		log.SetFormatter(&ConsoleFormatter{})
		SetVerbose(false)
	})
	return &buf
}

func TestWarnPrefix(t *testing.T) {
	buf := captureLogs(t)

	Warn("file not found: %s", "a.ts")

	assert.Equal(t, "Warning: file not found: a.ts\n", buf.String())
}

func TestErrorPrefixAndFields(t *testing.T) {
	buf := captureLogs(t)

	WithField("path", "b.ts").Error("read failed")

	assert.Equal(t, "Error: read failed path=b.ts\n", buf.String())
}

func TestSuccessHasNoPrefix(t *testing.T) {
	buf := captureLogs(t)

	Success("done")

	assert.Equal(t, "done\n", buf.String())
}

func TestDebugOnlyWhenVerbose(t *testing.T) {
	buf := captureLogs(t)

	Debug("hidden")
	require.Empty(t, buf.String())

	SetVerbose(true)
	Debug("shown")
	assert.Equal(t, "Debug: shown\n", buf.String())
}
