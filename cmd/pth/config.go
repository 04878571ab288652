package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/franz/playtest-history/internal/actions"
	"github.com/franz/playtest-history/internal/report"
	"github.com/franz/playtest-history/internal/store"
	"github.com/franz/playtest-history/internal/util"
)

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (PTH_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigBool retrieves a bool config value
func GetConfigBool(key string) bool {
	return viper.GetBool(key)
}

// loadCatalog returns the action catalog from the "actions" config key,
// or the built-in catalog when none is configured
func loadCatalog() (*actions.Catalog, error) {
	if !viper.IsSet("actions") {
		return actions.Default(), nil
	}

	var kinds []actions.Kind
	if err := viper.UnmarshalKey("actions", &kinds); err != nil {
		return nil, fmt.Errorf("%w: failed to decode actions: %v", util.ErrInvalidConfig, err)
	}
	return actions.New(kinds)
}

// openStore opens the configured database with the configured catalog
func openStore() (*store.Store, error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	dbPath := GetConfigString("db", "pth.db")
	util.DebugLog("Database: %s", dbPath)

	db, err := store.OpenWithOptions(dbPath, &store.OpenOptions{Catalog: catalog})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openEventLogger starts the mutation journal, falling back to a no-op
// logger when the directory cannot be written
func openEventLogger() *report.EventLogger {
	level := report.ParseLevel(GetConfigString("event_level", "info"))
	if GetConfigBool("quiet") {
		level = report.LevelWarning
	} else if GetConfigBool("verbose") {
		level = report.LevelDebug
	}

	logger, err := report.NewEventLogger(GetConfigString("events_dir", "artifacts"), level)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}

	util.DebugLog("Event log: %s", logger.Path())
	return logger
}
