package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", Debug},
		{"INFO", Info},
		{" warning ", Warn},
		{"error", Error},
		{"", Info},
		{"bogus", Info},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.input))
		})
	}
}

func TestWriterLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger("test", "warn", &buf)

	log.Info("hidden %d", 1)
	log.Warn("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "[test]")
}

func TestNamedLoggerSharesWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger("app", "debug", &buf).Named("parser")

	log.Debug("rules=%d", 3)

	assert.Contains(t, buf.String(), "[app/parser] rules=3")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	impl := NewWriterLogger("app", "info", &buf).(*LoggerServiceImpl)
	impl.cfg.JSON = true

	impl.Error("export failed: %s", "disk full")

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "app", entry.Service)
	assert.Equal(t, "export failed: disk full", entry.Message)
}
