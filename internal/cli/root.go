package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/truthlie/internal/factory"
	"github.com/mcoot/truthlie/internal/notify"
)

var (
	cfg *Config
	app *factory.App
	out *Output
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "truthlie",
		Short: "Two truths and a lie, for team icebreakers",
		Long: `truthlie runs "two truths and a lie" icebreaker games.

Administrators author rounds about a colleague (three statements, one of them
a lie), publish them and collect anonymous guesses. Players can also join a
coded multiplayer session, take turns submitting statements and score points
for spotting each other's lies.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDotEnv(cfg.EnvFile); err != nil {
				return err
			}
			bindEnv(cmd.Flags())
			if err := cfg.validate(); err != nil {
				return err
			}

			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			logger := cfg.logger(cmd.ErrOrStderr())

			fc := cfg.factoryConfig(logger)
			fc.Sink = notify.Multi{out, notify.NewLogSink(logger)}
			a, err := factory.New(fc)
			if err != nil {
				return err
			}
			app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage backend: memory, file, redis (env: TRUTHLIE_STORAGE)")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Data directory for file storage (env: TRUTHLIE_DATA_DIR)")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for redis storage (env: TRUTHLIE_REDIS_URL)")
	flags.StringVar(&cfg.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "Key prefix for redis storage (env: TRUTHLIE_REDIS_PREFIX)")
	flags.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "Environment file to load if present")
	flags.StringVar(&cfg.Voter, "voter", cfg.Voter, "Voter id for round votes (env: TRUTHLIE_VOTER, default: per-device id)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: TRUTHLIE_OUTPUT)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output (env: TRUTHLIE_VERBOSE)")
	flags.BoolVarP(&cfg.Yes, "yes", "y", cfg.Yes, "Skip confirmation prompts (env: TRUTHLIE_YES)")

	// Add subcommands
	rootCmd.AddCommand(newRoundCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newExportCmd())

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		format := "text"
		if cfg != nil {
			format = cfg.Output
		}
		NewOutput(format, os.Stdout, os.Stderr).PrintError(err)
		os.Exit(1)
	}
}
