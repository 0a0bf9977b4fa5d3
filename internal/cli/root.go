package cli

import (
	"os"

	"github.com/cloo-solutions/resumechat/internal/config"
	"github.com/cloo-solutions/resumechat/internal/logger"
	"github.com/cloo-solutions/resumechat/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd returns the resumechat command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resumechat",
		Short: "Chat with an uploaded resume",
		Long: `resumechat extracts a resume PDF into a profile, indexes it and answers
questions grounded in its content.

Configuration is read from the environment and an optional .env file.
Required: HUGGINGFACE_TOKEN, HUGGINGFACE_MODEL_LLM, OPENROUTER_API_KEY.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(ChatCmd())

	return rootCmd
}

// DefaultArgs makes serve the default command when none is given.
func DefaultArgs(args []string) []string {
	if len(args) == 1 {
		return append(args, "serve")
	}
	return args
}

// bootstrap loads configuration, builds the logger and starts telemetry.
// The returned function flushes telemetry.
func bootstrap(output *os.File) (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), func() {}, err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: output}).
		With().Str("service", "resumechat").Logger()

	shutdown := func() {}
	if cfg.HasSentry() {
		flush, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: telemetry.SampleRateFor(cfg.Environment),
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("telemetry init failed, continuing without tracing")
		} else {
			shutdown = flush
		}
	}
	return cfg, log, shutdown, nil
}
