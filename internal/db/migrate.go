package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const migrationsDirName = "migrations"

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Migrate applies the SQL files under migrations/ (or cfg.MigrationsDir).
// Down rolls back a single version.
func Migrate(cfg config.DBConfig, direction Direction, log logger.Logger) error {
	path := cfg.MigrationsDir
	if path == "" {
		found, err := findMigrationsDir(migrationsDirName)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Warn("db: migrations directory not found, skipping")
				return nil
			}
			return err
		}
		path = found
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(abs), cfg.MigrationURL())
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Warn("db: close migrator failed", "source_err", srcErr, "db_err", dbErr)
		}
	}()

	switch direction {
	case DirectionUp:
		err = m.Up()
	case DirectionDown:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("db: migrations already current", "direction", direction)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		log.Info("db: migrations applied", "direction", direction, "version", version, "dirty", dirty)
	}
	return nil
}

func findMigrationsDir(dirName string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, dirName)
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}
