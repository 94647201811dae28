package cli

import (
	"github.com/joho/godotenv"

	"github.com/arnavsurve/popform/pkg/core"
	"github.com/arnavsurve/popform/pkg/security"
)

type LintCmd struct {
	Config string   `arg:"" help:"The YAML configuration to validate." type:"path"`
	Secret []string `help:"Environment variable whose value is masked in logs. Repeatable."`
}

func (l *LintCmd) Run() error {
	cmdLogger, logRouter, _, err := newCmdLogger(false, "", "")
	if err != nil {
		return err
	}
	defer logRouter.Close()

	cmdLogger.Info().Msgf("Validating %s", l.Config)

	if err := godotenv.Load(); err != nil {
		cmdLogger.Warn().Err(err).Msg("No .env file found or error thrown while loading it. Relying on existing ENV for ${...} placeholders")
	}

	cfg, vars, err := core.LoadConfigFromFile(l.Config)
	logRouter.SetRedactor(security.NewRedactor(vars, l.Secret))
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to load config file %s", l.Config)
		return err
	}

	for name, value := range vars {
		if value == "" {
			cmdLogger.Warn().Msgf("Placeholder ${%s} resolved to an empty string", name)
		}
	}

	for _, name := range core.DuplicatePageNames(cfg) {
		cmdLogger.Warn().Msgf("Page name %q is used more than once; their debug screenshots share file names", name)
	}

	for _, page := range cfg.Pages {
		pageLogger := cmdLogger.With().Str("page", page.Name).Logger()
		steps := page.NormalizedSteps()
		pageLogger.Info().Msgf("%s: %d step(s), waits for %s", page.URL, len(steps), page.NetworkIdle.WaitOptions().Until)
	}

	cmdLogger.Info().Msg("Successfully validated configuration ✅")
	return nil
}
