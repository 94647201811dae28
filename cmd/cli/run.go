package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/core"
	"github.com/arnavsurve/popform/pkg/security"
)

type RunCmd struct {
	Config      string   `arg:"" help:"The YAML configuration describing the pages to fill." type:"path"`
	Debug       bool     `short:"d" help:"Save before/after screenshots of every step and log debug output."`
	DebugDir    string   `help:"Directory for debug screenshots." default:"." type:"path"`
	ChromeBin   string   `help:"Browser executable. Looked up on the host when empty." env:"CHROME_BIN"`
	Driver      string   `help:"Browser driver." default:"rod"`
	Concurrency int      `help:"Maximum pages filled at once; 0 means all pages at once." default:"0"`
	LogDir      string   `help:"Directory for JSON run logs. Empty disables the log file." default:".popform/logs"`
	Secret      []string `help:"Environment variable whose value is masked in logs. Repeatable."`
}

func (r *RunCmd) Run() error {
	runID := uuid.New().String()

	cmdLogger, logRouter, logFilePath, err := newCmdLogger(r.Debug, r.LogDir, runID)
	if err != nil {
		return err
	}

	// Graceful shutdown of logging sinks
	defer func() {
		if err := logRouter.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during log shutdown: %v\n", err)
		}
	}()

	cmdLogger.Info().Msgf("Starting run with ID: %s", runID)
	if logFilePath != "" {
		cmdLogger.Debug().Msgf("Logs will be saved to %q", logFilePath)
	}

	if err := godotenv.Load(); err != nil {
		cmdLogger.Warn().Err(err).Msg("No .env file found or error thrown while loading it. Relying on existing ENV for ${...} placeholders")
	}

	if r.Concurrency < 0 {
		return fmt.Errorf("--concurrency must not be negative, got %d", r.Concurrency)
	}

	launch, err := browser.GetDriver(r.Driver)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Unknown browser driver")
		return err
	}

	cfg, vars, err := core.LoadConfigFromFile(r.Config)
	// Attach the redactor before logging anything derived from the config.
	logRouter.SetRedactor(security.NewRedactor(vars, r.Secret))
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to load config file %s", r.Config)
		return err
	}
	cmdLogger.Info().Msgf("Loaded %d page(s) from %s", len(cfg.Pages), r.Config)
	if r.Debug {
		for _, name := range core.DuplicatePageNames(cfg) {
			cmdLogger.Warn().Msgf("Page name %q is used more than once; their debug screenshots share file names", name)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := core.NewBatchEngine(cmdLogger, launch)
	err = engine.Execute(ctx, cfg, core.BatchOptions{
		Launch:      browser.LaunchOptions{Bin: r.ChromeBin},
		Concurrency: r.Concurrency,
		Debug:       r.Debug,
		DebugDir:    r.DebugDir,
	})
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Run failed")
		return err
	}

	if logFilePath != "" {
		cmdLogger.Info().Msgf("Run completed successfully. Logs can be found at %q", logFilePath)
	} else {
		cmdLogger.Info().Msg("Run completed successfully")
	}
	return nil
}
