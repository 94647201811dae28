package sinks

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/arnavsurve/popform/pkg/log"
	"github.com/arnavsurve/popform/pkg/types"
)

var levelColorMap = map[types.Level]*color.Color{
	types.DebugLevel: color.New(color.FgCyan),
	types.InfoLevel:  color.New(color.FgGreen),
	types.WarnLevel:  color.New(color.FgYellow),
	types.ErrorLevel: color.New(color.FgRed),
	types.FatalLevel: color.New(color.FgRed, color.Bold),
}

// ConsoleSink prints one coloured line per event, prefixed with the page and step it came from.
type ConsoleSink struct {
	out      io.Writer
	minLevel types.Level
}

func NewConsoleSink(minLevel types.Level) *ConsoleSink {
	return &ConsoleSink{out: color.Output, minLevel: minLevel}
}

// NewConsoleSinkTo writes to out instead of the terminal.
func NewConsoleSinkTo(out io.Writer, minLevel types.Level) *ConsoleSink {
	return &ConsoleSink{out: out, minLevel: minLevel}
}

func (c *ConsoleSink) Write(event *log.LogEvent) error {
	if event.Level < c.minLevel {
		return nil
	}

	msg := event.Message
	consoleType := getStringField(event.Fields, "console_type")
	consoleLine := getStringField(event.Fields, "console_line")
	errorMsg := getStringField(event.Fields, "error")
	levelStr := strings.ToUpper(log.LevelString(event.Level))
	timestampStr := event.Timestamp.Format(time.RFC3339)

	levelFmt := color.New(color.FgWhite).SprintFunc()
	if lc, ok := levelColorMap[event.Level]; ok {
		levelFmt = lc.SprintFunc()
	}
	timestampFmt := color.New(color.FgWhite).SprintFunc()

	commonPrefix := fmt.Sprintf("[%s %s] %s: ",
		levelFmt(levelStr),
		timestampFmt(timestampStr),
		color.CyanString(sourceLabel(event.Fields)),
	)

	var output string
	switch {
	case consoleType != "":
		output = fmt.Sprintf("%s[console/%s]: %s", commonPrefix, color.BlueString(consoleType), consoleLine)
	case errorMsg != "" && msg != "":
		output = fmt.Sprintf("%s%s: %s", commonPrefix, msg, errorMsg)
	case errorMsg != "":
		output = fmt.Sprintf("%s%s", commonPrefix, errorMsg)
	case msg != "":
		output = fmt.Sprintf("%s%s", commonPrefix, msg)
	default:
		fieldsStr, _ := json.MarshalIndent(event.Fields, "", "  ")
		output = fmt.Sprintf("%s%s", commonPrefix, string(fieldsStr))
	}
	_, err := fmt.Fprintln(c.out, output)
	return err
}

// sourceLabel is "<page>", "<page>/<step>" or "batch" when the event is not page scoped.
func sourceLabel(fields map[string]any) string {
	page := getStringField(fields, "page")
	step := getStringField(fields, "step")
	switch {
	case page == "":
		return "batch"
	case step == "" || step == page:
		return page
	default:
		return page + "/" + step
	}
}

// Helper to safely get string field from LogEvent.Fields
func getStringField(fields map[string]any, key string) string {
	if val, ok := fields[key]; ok {
		if strVal, isStr := val.(string); isStr {
			return strVal
		}
	}
	return ""
}

func (c *ConsoleSink) Close() error {
	return nil
}
