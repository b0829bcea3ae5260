package commands

import (
	"context"
	"fmt"
	"log/slog"
	"odk-pull/internal/components/telemetry"
	"odk-pull/internal/config"
	"odk-pull/internal/odk"
	"odk-pull/internal/odk/providers"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath   *string
	envFile      *string
	providerFlag *string
	urlFlag      *string
	debug        *bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	configPath = flags.String("config", "odk.json5", "The config file holding the provider, url and credentials.")
	envFile = flags.String("env-file", ".env", "A dotenv file loaded into the environment before reading ODK_* variables.")
	providerFlag = flags.String("provider", "", "Overrides the configured provider (ona, kobo, central).")
	urlFlag = flags.String("url", "", "Overrides the configured server url.")
	debug = flags.Bool("debug", false, "Log at debug level, including every http round trip.")
}

type ctxKeyType int

var providerKey ctxKeyType

var shutdownTelemetry = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:   "odk-cli",
	Short: "odk-cli pulls projects, forms and submissions from ODK servers (Ona, Kobo, ODK Central).",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*debug)
		if !needsProvider(cmd) {
			return
		}

		tel, err := telemetry.SetupFromEnv(cmd.Context(), "odk-cli")
		if err == nil {
			shutdownTelemetry = tel.Shutdown
		} else if !os.IsNotExist(err) {
			slog.Warn("failed to setup telemetry", "err", err)
		}

		cfg, err := config.Load(*configPath, *envFile)
		if err != nil {
			fatal("failed to read config", err)
		}
		if *providerFlag != "" {
			cfg.Provider = *providerFlag
		}
		if *urlFlag != "" {
			cfg.Url = *urlFlag
		}
		err = cfg.Validate()
		if err != nil {
			fatal("invalid config", err)
		}

		provider, err := providers.New(cfg.Provider, cfg.Options(telemetry.SlogAPI{}))
		if err != nil {
			fatal("failed to create provider", err)
		}
		slog.Debug("using provider", "provider", cfg.Provider, "url", cfg.Url, "username", cfg.Username)

		cmd.SetContext(context.WithValue(cmd.Context(), providerKey, provider))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushTelemetry()
	},
}

// commands generated by cobra run without a server, so they must work
// before odk.json5 exists.
var builtinCommands = map[string]bool{
	"help":                          true,
	"completion":                    true,
	cobra.ShellCompRequestCmd:       true,
	cobra.ShellCompNoDescRequestCmd: true,
}

func needsProvider(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if builtinCommands[c.Name()] {
			return false
		}
	}
	return true
}

func flushTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	err := shutdownTelemetry(ctx)
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
}

func getProvider(cmd *cobra.Command) odk.Provider {
	return cmd.Context().Value(providerKey).(odk.Provider)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
