package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/sensorframe/internal/config"
	"github.com/banshee-data/sensorframe/internal/report"
	"github.com/banshee-data/sensorframe/internal/security"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	ConfigPath   string
	ReadingsPath string
	OutPath      string
	Title        string
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise slot occupancy for a readings document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultConfigPath, "slot configuration file (.json, .yaml)")
	cmd.Flags().StringVarP(&opts.ReadingsPath, "readings", "r", "", "readings document (.yaml or .json)")
	cmd.Flags().StringVarP(&opts.OutPath, "out", "o", "", "write an HTML occupancy chart to this file or directory")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title (defaults to the sensor id)")
	_ = cmd.MarkFlagRequired("readings")

	return cmd
}

func runReport(cmd *cobra.Command, opts *ReportOptions) error {
	cfg, schema, frames, err := buildFrames(cmd, opts.ConfigPath, opts.ReadingsPath, 0)
	if err != nil {
		return err
	}

	summary, err := report.Summarize(schema, frames)
	if err != nil {
		return err
	}

	if opts.OutPath != "" {
		title := opts.Title
		if title == "" {
			title = fmt.Sprintf("Slot occupancy: %s", cfg.GetSensorID())
		}
		out := opts.OutPath
		if info, err := os.Stat(out); err == nil && info.IsDir() {
			out = filepath.Join(out, security.SanitizeFilename(cfg.GetSensorID())+"-occupancy.html")
		}
		if err := security.ValidateOutputPath(out); err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create chart file: %w", err)
		}
		if err := report.RenderOccupancy(f, summary, title); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write chart file: %w", err)
		}
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), summary)
	}
	return summary.WriteText(cmd.OutOrStdout())
}
