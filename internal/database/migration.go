package database

import (
	"fmt"
	"path/filepath"
	"strings"

	"stockroom/internal/database/migration"

	"go.uber.org/zap"
)

// RunMigrations applies the relational backend's table definitions found in
// migrationsDir.
func RunMigrations(dbURL, migrationsDir string, logger *zap.Logger) error {
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	migrationsURL, err := SourceURL(migrationsDir)
	if err != nil {
		return err
	}

	return migration.Migrate(dbURL, migrationsURL, true, logger)
}

// SourceURL turns a directory into a file:// source URL. Values that already
// carry a scheme are returned as is.
func SourceURL(dir string) (string, error) {
	if strings.Contains(dir, "://") {
		return dir, nil
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return "file://" + absPath, nil
}
