package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arnavsurve/popform/pkg/log"
	"github.com/arnavsurve/popform/pkg/log/sinks"
	"github.com/arnavsurve/popform/pkg/types"
)

// newCmdLogger routes command output to the console and, when logDir is set,
// to "<logDir>/<runID>.json". It returns the log file path, if any.
func newCmdLogger(debug bool, logDir, runID string) (types.Logger, *log.Router, string, error) {
	minLevel := types.InfoLevel
	if debug {
		minLevel = types.DebugLevel
	}
	logRouter := log.NewRouter(sinks.NewConsoleSink(minLevel))

	var logFilePath string
	if logDir != "" {
		logFilePath = filepath.Join(logDir, fmt.Sprintf("%s.json", runID))
		fileSink, err := sinks.NewFileSink(logFilePath)
		if err != nil {
			return nil, nil, "", fmt.Errorf("creating file log sink: %w", err)
		}
		logRouter.AddSink(fileSink)
	}

	baseZerologInstance := zerolog.New(logRouter).With().Timestamp().Logger()
	return log.NewZerologAdapter(baseZerologInstance), logRouter, logFilePath, nil
}
