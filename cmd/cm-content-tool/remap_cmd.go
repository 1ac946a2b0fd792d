package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-mgmt-platform/cm-content-tool/internal/cmplane"
	"github.com/open-mgmt-platform/cm-content-tool/internal/remap"
	"github.com/open-mgmt-platform/cm-content-tool/internal/utils/logger"
)

// Remap command flags
var (
	searchPattern string
	replaceWith   string
	remapDryRun   bool
	remapFormat   string = "text"
	noProgress    bool
)

// createRemapCommand creates the remap subcommand
func createRemapCommand() *cobra.Command {
	remapCmd := &cobra.Command{
		Use:   "remap --search OLD --replace NEW",
		Short: "rewrites recorded content source paths after a content move",
		Long: `Remap walks every content-bearing object on the site (drivers,
driver packages, update packages, packages, applications and OS images),
replaces every occurrence of the search pattern in its recorded content
source path, verifies the resulting path exists and commits the change.
Matching is literal and case-insensitive. Objects whose paths do not match
are left untouched, so re-running after a partial failure is safe.`,
		Args: cobra.NoArgs,
		RunE: executeRemap,
	}

	remapCmd.Flags().StringVar(&searchPattern, "search", "",
		"Literal substring to search for in recorded source paths")
	remapCmd.Flags().StringVar(&replaceWith, "replace", "",
		"Replacement for every occurrence of the search pattern")
	remapCmd.Flags().BoolVar(&remapDryRun, "dry-run", false,
		"Plan and validate without committing any change")
	remapCmd.Flags().StringVar(&remapFormat, "format", "text",
		"Report format: text or json")
	remapCmd.Flags().BoolVar(&noProgress, "no-progress", false,
		"Disable the progress bar")
	_ = remapCmd.MarkFlagRequired("search")
	_ = remapCmd.MarkFlagRequired("replace")
	return remapCmd
}

// executeRemap handles the remap command execution logic
func executeRemap(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client := cmplane.NewAdminServiceClient(cmplane.AdminServiceOptions{
		Server:          cfg.Site.Server,
		BaseURL:         cfg.Site.BaseURL,
		SiteCode:        cfg.Site.SiteCode,
		Username:        cfg.Site.Username,
		Password:        cfg.Site.Password,
		Timeout:         cfg.Site.Timeout(),
		AllowSelfSigned: cfg.Site.AllowSelfSigned,
	})

	var reporter remap.ProgressReporter = remap.NopReporter{}
	if cfg.Progress && !noProgress {
		reporter = remap.NewBarReporter()
	}

	orchestrator := &remap.Orchestrator{
		Client:    client,
		Validator: remap.FilesystemValidator{},
		Reporter:  reporter,
		DryRun:    remapDryRun,
	}

	log.Infof("Remapping content paths on site %s: %q -> %q", cfg.Site.SiteCode, searchPattern, replaceWith)
	report, err := orchestrator.Execute(cmd.Context(), searchPattern, replaceWith)
	if err != nil {
		return err
	}

	switch remapFormat {
	case "json":
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	case "text":
		if err := report.RenderText(cmd.OutOrStdout()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid --format %q (expected text|json)", remapFormat)
	}

	if report.Failed() > 0 {
		return fmt.Errorf("%d object(s) failed to remap", report.Failed())
	}
	return nil
}
