package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/franz/playtest-history/internal/archive"
	"github.com/franz/playtest-history/internal/report"
	"github.com/franz/playtest-history/internal/util"
)

var exportCmd = &cobra.Command{
	Use:   "export [session-id...]",
	Short: "Write sessions and their action logs to a YAML archive",
	Long: `Write sessions and their action logs to a YAML archive.

Without session ids every session is exported, oldest first. The archive
is written to stdout unless --out is given.`,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <archive.yaml>",
	Short: "Add the sessions of a YAML archive to the database",
	Long: `Add the sessions of a YAML archive to the database.

Every session and action is validated as if it were logged by hand. A
session with an invalid action is not imported; sessions before it are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringP("out", "o", "", "archive file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID("session", arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	doc, err := archive.Export(db, ids)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return archive.Write(cmd.OutOrStdout(), doc)
	}
	if err := archive.Save(out, doc); err != nil {
		return err
	}

	util.SuccessLog("Exported %d sessions to %s", len(doc.Sessions), out)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	doc, err := archive.Load(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	var progress io.Writer
	if util.IsTerminal(os.Stderr.Fd()) && !util.IsQuiet() {
		progress = os.Stderr
	}

	ids, err := archive.Import(db, doc, archive.ImportOptions{Progress: progress})

	actionCount := 0
	for i := range ids {
		actionCount += len(doc.Sessions[i].Actions)
	}
	if len(ids) > 0 {
		logger.LogImport(args[0], len(ids), actionCount)
	}

	if err != nil {
		logger.LogError(report.EventImport, 0, err)
		if len(ids) > 0 {
			util.WarnLog("Imported %d of %d sessions before the failure", len(ids), len(doc.Sessions))
		}
		return fmt.Errorf("import failed: %w", err)
	}

	util.SuccessLog("Imported %d sessions (%d actions) from %s", len(ids), actionCount, args[0])
	return nil
}
