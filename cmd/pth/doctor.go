package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/franz/playtest-history/internal/actions"
	"github.com/franz/playtest-history/internal/store"
	"github.com/franz/playtest-history/internal/util"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the configuration and database",
	Long: `Run diagnostic checks to ensure pth can operate correctly.

This command checks:
- SQLite version
- Action catalog configuration
- Database accessibility and integrity
- Foreign key consistency of the action log
- Event log directory permissions

Use this command to troubleshoot issues before logging a session.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("%s", renderHeading("=== PTH Doctor - System Diagnostics ==="))
	util.InfoLog("")

	results := []checkResult{}

	// 1. Check SQLite
	results = append(results, checkSQLite())

	// 2. Check action catalog
	catalog, catalogResult := checkCatalog()
	results = append(results, catalogResult)

	// 3. Check database file
	results = append(results, checkDatabase(GetConfigString("db", "pth.db"), catalog))

	// 4. Check event log directory
	results = append(results, checkEventsDir(GetConfigString("events_dir", "artifacts")))

	// Print results
	util.InfoLog("")
	util.InfoLog("%s", renderHeading("=== Diagnostic Results ==="))
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		line := fmt.Sprintf("[%s] %s", renderIcon(r), r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			hasErrors = true
			util.ErrorLog("%s", line)
		} else if r.warning {
			hasWarnings = true
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("Some critical checks failed. Please resolve errors before using pth.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("All checks passed! Ready to log playtests.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkCatalog verifies the configured action catalog. On failure the
// built-in catalog is returned so the remaining checks can still run.
func checkCatalog() (*actions.Catalog, checkResult) {
	catalog, err := loadCatalog()
	if err != nil {
		return actions.Default(), checkResult{
			name:    "Action catalog",
			error:   true,
			message: err.Error(),
		}
	}

	special := 0
	for _, k := range catalog.Kinds() {
		if k.Special {
			special++
		}
	}

	return catalog, checkResult{
		name: "Action catalog",
		message: fmt.Sprintf("%d types (%d big, %d small, %d special)",
			len(catalog.Kinds()), len(catalog.BySize(actions.Big)), len(catalog.BySize(actions.Small)), special),
	}
}

// checkDatabase verifies database file accessibility and consistency
func checkDatabase(dbPath string, catalog *actions.Catalog) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	// Check if database exists
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.OpenWithOptions(dbPath, &store.OpenOptions{Catalog: catalog})
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	if err := db.CheckForeignKeys(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: err.Error(),
		}
	}

	return databaseSummary(db, dbPath, info.Size())
}

// databaseSummary reports row counts; a failed count downgrades to a warning
func databaseSummary(db *store.Store, dbPath string, size int64) checkResult {
	sessions, err := db.CountSessions()
	if err != nil {
		return checkResult{
			name:    "Database",
			warning: true,
			message: fmt.Sprintf("%s: %v", dbPath, err),
		}
	}
	actionCount, err := db.CountActions()
	if err != nil {
		return checkResult{
			name:    "Database",
			warning: true,
			message: fmt.Sprintf("%s: %v", dbPath, err),
		}
	}

	return checkResult{
		name: "Database",
		message: fmt.Sprintf("%s (%s, %d sessions, %d actions)",
			dbPath, humanize.Bytes(uint64(size)), sessions, actionCount),
	}
}

// checkEventsDir verifies the event log directory is writable
func checkEventsDir(path string) checkResult {
	if err := os.MkdirAll(path, 0755); err != nil {
		return checkResult{
			name:    "Event log directory",
			warning: true,
			message: fmt.Sprintf("cannot create %s: %v (changes will not be journaled)", path, err),
		}
	}

	testFile := filepath.Join(path, ".pth_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Event log directory",
			warning: true,
			message: fmt.Sprintf("cannot write to %s: %v (changes will not be journaled)", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Event log directory",
		message: fmt.Sprintf("%s (writable)", path),
	}
}
