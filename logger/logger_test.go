package logger

import (
	"bytes"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, log.TraceLevel, ParseLevel(" trace "))
	assert.Equal(t, log.WarnLevel, ParseLevel(""))
	assert.Equal(t, log.WarnLevel, ParseLevel("loud"))
}

func TestWarnMessage_MultiLine(t *testing.T) {
	SetConsoleLogger(log.WarnLevel)
	buf := bytes.Buffer{}
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	WarnMessage("first\nsecond %d", 2)
	DebugMessage("hidden")

	out := buf.String()
	assert.Contains(t, out, "msg=first")
	assert.Contains(t, out, `msg="second 2"`)
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("level=warning")))
}

func TestInitialize_ReadsEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "info")
	Initialize()
	defer SetConsoleLogger(log.WarnLevel)
	buf := bytes.Buffer{}
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	InfoMessage("loaded %d files", 3)
	DebugMessage("hidden")

	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), `msg="loaded 3 files"`)
	assert.NotContains(t, buf.String(), "hidden")
}
