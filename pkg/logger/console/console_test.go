package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLoggerText(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{"info level drops debug", false, false},
		{"debug level keeps debug", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewConsoleLogger(ConsoleLoggerParams{Debug: tt.debug, Prefix: "worker", Output: &buf})

			l.Info("[Worker] Received message", "job", "abc")
			l.Debug("[Links] System processed", "system", 3)

			out := buf.String()
			assert.Contains(t, out, "worker")
			assert.Contains(t, out, "[Worker] Received message")
			assert.Contains(t, out, "job=abc")
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "[Links] System processed"))
		})
	}
}

func TestConsoleLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Prefix: "worker", JSON: true, Output: &buf})

	l.Warn("[Links] Segno linking skipped", "segnos", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "[Links] Segno linking skipped", line["msg"])
	assert.Equal(t, "warn", line["level"])
	assert.Contains(t, line["prefix"], "worker")
	assert.EqualValues(t, 2, line["segnos"])
}
