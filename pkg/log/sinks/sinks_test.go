package sinks_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavsurve/popform/pkg/log"
	"github.com/arnavsurve/popform/pkg/log/sinks"
	"github.com/arnavsurve/popform/pkg/types"
)

func TestConsoleSink_Write(t *testing.T) {
	color.NoColor = true
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event log.LogEvent
		want  string
	}{
		{
			name:  "batch message",
			event: log.LogEvent{Level: types.InfoLevel, Message: "Launching browser"},
			want:  "[INFO 2024-05-01T12:00:00Z] batch: Launching browser\n",
		},
		{
			name: "page and step label",
			event: log.LogEvent{
				Level:   types.InfoLevel,
				Message: "Populated signup-1: https://example.com",
				Fields:  map[string]any{"page": "signup", "step": "signup-1"},
			},
			want: "[INFO 2024-05-01T12:00:00Z] signup/signup-1: Populated signup-1: https://example.com\n",
		},
		{
			name: "console line",
			event: log.LogEvent{
				Level:  types.InfoLevel,
				Fields: map[string]any{"page": "signup", "console_type": "warning", "console_line": "deprecated"},
			},
			want: "[INFO 2024-05-01T12:00:00Z] signup: [console/warning]: deprecated\n",
		},
		{
			name: "error with message",
			event: log.LogEvent{
				Level:   types.ErrorLevel,
				Message: "Page failed",
				Fields:  map[string]any{"page": "signup", "error": "element not found"},
			},
			want: "[ERROR 2024-05-01T12:00:00Z] signup: Page failed: element not found\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			sink := sinks.NewConsoleSinkTo(&out, types.InfoLevel)
			evt := tt.event
			evt.Timestamp = ts
			require.NoError(t, sink.Write(&evt))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestConsoleSink_FiltersBelowMinLevel(t *testing.T) {
	var out bytes.Buffer
	sink := sinks.NewConsoleSinkTo(&out, types.InfoLevel)

	require.NoError(t, sink.Write(&log.LogEvent{Level: types.DebugLevel, Message: "hidden"}))
	assert.Empty(t, out.String())
}

func TestFileSink_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.json")
	sink, err := sinks.NewFileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Write(&log.LogEvent{Level: types.WarnLevel, Message: "first", Fields: map[string]any{"page": "a"}}))
	require.NoError(t, sink.Write(&log.LogEvent{Level: types.DebugLevel, Message: "second"}))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "first", lines[0]["message"])
	assert.Equal(t, "a", lines[0]["page"])
	assert.Equal(t, "debug", lines[1]["level"])
}
