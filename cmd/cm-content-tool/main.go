package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/open-mgmt-platform/cm-content-tool/internal/config"
	"github.com/open-mgmt-platform/cm-content-tool/internal/utils/logger"
)

// Global command flags
var (
	configPath string
	logLevel   string
)

func createRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cm-content-tool",
		Short: "Administers application provisioning and content-path remapping on a site",
		Long: `cm-content-tool automates two site administration workflows:
registering and deploying an application (provision), and bulk-rewriting the
content source path recorded on every content-bearing object after the
content itself has been moved (remap).`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "cm-content-tool.yml",
		"Path to the tool configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides config)")
	root.PersistentFlags().BoolP("verbose", "v", false,
		"Shorthand for --log-level debug")

	root.AddCommand(createRemapCommand())
	root.AddCommand(createProvisionCommand())
	attachLoggingHooks(root)
	return root
}

// attachLoggingHooks initializes the logger before any subcommand runs.
func attachLoggingHooks(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			level := resolveRequestedLogLevel(cmd)
			if level == "" {
				level = "info"
			}
			return logger.Init(level)
		}
	}
}

// resolveRequestedLogLevel prefers the explicit --log-level flag and falls
// back to debug when --verbose was set.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd != nil {
		if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed {
			return "debug"
		}
	}
	return ""
}

// loadConfig reads the configuration file and folds the log-level flag into
// it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if level := resolveRequestedLogLevel(cmd); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := createRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
