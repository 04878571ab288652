package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/playtest-history/internal/report"
	"github.com/franz/playtest-history/internal/util"
)

var reportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Write a Markdown report of one session",
	Long: `Write a Markdown report of one session.

The report includes:
- Session date, version, players and notes
- Action counts per player and per type
- The full action log with turn numbers

The report is saved to artifacts/reports/<timestamp>/session-<id>.md`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("out", "", "Output directory for report (default: artifacts/reports/<timestamp>)")
}

func runReport(cmd *cobra.Command, args []string) error {
	id, err := parseID("session", args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	sessionReport, err := report.GenerateSessionReport(db, id)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	sessionReport.DatabasePath = viper.GetString("db")

	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputDir = filepath.Join(GetConfigString("events_dir", "artifacts"), "reports", timestamp)
	}
	outputPath := filepath.Join(outputDir, fmt.Sprintf("session-%d.md", id))

	if err := report.WriteMarkdownReport(sessionReport, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	util.SuccessLog("Report saved to: %s", outputPath)
	util.InfoLog("  Actions: %d", len(sessionReport.Log.Rows))
	util.InfoLog("  Turns: %d", sessionReport.Log.Turns)
	return nil
}
