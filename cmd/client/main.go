package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/client/app"
	"github.com/atinyakov/wardrobix/internal/client/config"
	"github.com/atinyakov/wardrobix/internal/client/notify"
	"github.com/atinyakov/wardrobix/internal/logger"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

var (
	// Global flags
	configPath string
	baseURL    string
	caFile     string
	timeout    time.Duration
	logLevel   string

	// set by PersistentPreRunE
	core    *app.App
	notices = &notify.Recorder{}
	zl      = logger.New()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "wardrobix",
	Short:         "wardrobix - wardrobe client",
	Long:          "wardrobix manages your clothing items and asks the server for outfit recommendations.",
	Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)

		if err := zl.InitConsole(cfg.LogLevel); err != nil {
			return err
		}
		core, err = app.New(cfg, notices, zl.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zl.Log.Sync()
	},
}

// registerCmd creates an account and exits
var registerCmd = &cobra.Command{
	Use:   "register <username> <password>",
	Short: "Create an account on the server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := core.Auth.Register(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("registration rejected, the username may already be taken")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", args[0])
		return nil
	},
}

// shellCmd starts the interactive shell
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repl(cmd.Context(), core, notices, cmd.InOrStdin(), cmd.OutOrStdout())
		return nil
	},
}

// applyFlags overrides cfg with the flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("ca") {
		cfg.CAFile = caFile
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "server base URL")
	rootCmd.PersistentFlags().StringVar(&caFile, "ca", "", "path to CA cert for HTTPS")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(shellCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		zl.Log.Debug("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
