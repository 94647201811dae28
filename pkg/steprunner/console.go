package steprunner

import (
	"bufio"
	"strings"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/types"
)

// relayConsole streams console messages to the logger, one event per line.
func relayConsole(logger types.Logger) func(browser.ConsoleMessage) {
	return func(msg browser.ConsoleMessage) {
		scanner := bufio.NewScanner(strings.NewReader(msg.Text))
		for scanner.Scan() {
			logger.Info().
				Str("console_type", msg.Type).
				Str("console_line", scanner.Text()).
				Msg("Page console output")
		}
	}
}
