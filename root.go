package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bwan3150/resourcer/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd.
var (
	flagConfigPath string
	flagDataDir    string
	flagListenAddr string
	flagServerAddr string
	flagJSON       bool
	flagVerbose    bool
	flagDebug      bool
	flagQuiet      bool
)

// skipConfigAnnotation marks commands that handle config loading themselves
// (or need none at all).
const skipConfigAnnotation = "skipConfig"

// CLIContext bundles the resolved config, its source path, logger, and the
// flags every subcommand reads. Created once in PersistentPreRunE.
type CLIContext struct {
	Cfg     *config.Config
	CfgPath string
	Logger  *slog.Logger
	Flags   cliFlags
}

// cliFlags holds the persistent flag values snapshotted into the context,
// so RunE handlers don't read the package-level vars directly.
type cliFlags struct {
	JSON       bool
	Quiet      bool
	ServerAddr string
}

type cliContextKey struct{}

func cliContextFrom(ctx context.Context) *CLIContext {
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok {
		return nil
	}

	return cc
}

// mustCLIContext extracts the CLIContext or panics. Every RunE that does not
// carry skipConfigAnnotation is guaranteed a populated context.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("BUG: CLIContext not found in context — command is missing skipConfigAnnotation or config loading")
	}

	return cc
}

// httpClientTimeout bounds CLI-to-daemon requests against a server that has
// hung or vanished.
const httpClientTimeout = 30 * time.Second

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: httpClientTimeout}
}

// resolvedServerAddr returns the base URL the CLI talks to for daemon
// commands (scan, status, pause, resume): --server, falling back to the
// resolved config's listen address.
func resolvedServerAddr(cc *CLIContext) string {
	if cc.Flags.ServerAddr != "" {
		return "http://" + cc.Flags.ServerAddr
	}

	return "http://" + cc.Cfg.Server.ListenAddr
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resourcer",
		Short:   "Lazy, move-tracking file indexer",
		Long:    "resourcer indexes local folders on demand and tracks files across renames and moves, exposing the result over an HTTP API.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				return nil
			}

			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (catalog database, PID file)")
	cmd.PersistentFlags().StringVar(&flagListenAddr, "listen-addr", "", "HTTP listen address for serve")
	cmd.PersistentFlags().StringVar(&flagServerAddr, "server", "", "address of a running resourcer serve (default: resolved listen_addr)")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show detailed output")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.MarkFlagsMutuallyExclusive("verbose", "debug", "quiet")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSourcesCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newPauseCmd())
	cmd.AddCommand(newResumeCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the three-layer
// override chain and stores the result in the command's context for use by
// subcommands.
func loadConfig(cmd *cobra.Command) error {
	logger := buildLogger(nil)

	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
		DataDir:    flagDataDir,
		ListenAddr: flagListenAddr,
	}

	env := config.ReadEnvOverrides()

	logger.Debug("resolving config",
		slog.String("cli_config_path", cli.ConfigPath),
		slog.String("cli_data_dir", cli.DataDir),
		slog.String("env_config_path", env.ConfigPath),
	)

	cfg, cfgPath, err := config.Resolve(env, cli, logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Debug("config resolved",
		slog.String("config_path", cfgPath),
		slog.String("data_dir", cfg.Server.DataDir),
		slog.String("listen_addr", cfg.Server.ListenAddr),
	)

	finalLogger := buildLogger(cfg)
	cc := &CLIContext{
		Cfg:     cfg,
		CfgPath: cfgPath,
		Logger:  finalLogger,
		Flags: cliFlags{
			JSON:       flagJSON,
			Quiet:      flagQuiet,
			ServerAddr: flagServerAddr,
		},
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Pass nil for pre-config bootstrap (no config-file log level).
// Config-file log level is the baseline; --verbose, --debug, and --quiet
// override it since CLI flags always win. The flags are mutually exclusive
// (enforced by Cobra).
func buildLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn

	if cfg != nil {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelInfo
	}

	if flagDebug {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
