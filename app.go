package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"finagosync/config"
	"finagosync/db"
	"finagosync/internal/mounts"
	"finagosync/sync"
)

// App is the central orchestrator for the application's business logic. It
// coordinates configuration, the service clients, the database and the sync
// runner behind the Applicator interface consumed by the CLI.
type App struct {
	out    io.Writer
	logger *log.Logger
}

// NewApp creates an App writing its report output to stdout and its run
// narrative to stderr.
func NewApp() *App {
	return &App{
		out:    os.Stdout,
		logger: log.New(os.Stderr),
	}
}

// openDB mounts the embedded sql statement files and opens the database at
// the configured path, creating the schema if needed.
func (a *App) openDB(cfg *config.Config, slogger *slog.Logger) (*db.DB, error) {
	sqlFS, err := mounts.NewFileMount("sql", db.SQLEmbeddedFS, "")
	if err != nil {
		return nil, fmt.Errorf("could not mount sql fs: %w", err)
	}
	return db.NewConnection(cfg.DatabasePath, sqlFS, slogger)
}

// Sync authenticates, fetches every configured entity type changed since
// the given date (the configured sync start date when since is empty) and
// upserts the records locally, printing a per-entity report.
func (a *App) Sync(ctx context.Context, cfgPath, since string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if since == "" {
		since = cfg.SyncStartDate.Format("2006-01-02")
		a.logger.Info("no --since specified, using configured sync start date", "since", since)
	}

	database, err := a.openDB(cfg, slog.New(a.logger))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	syncer := sync.New(cfg, database, nil, a.logger)
	report, err := syncer.Run(ctx, since)
	if report != nil {
		fmt.Fprint(a.out, report.String())
	}
	return err
}

// Identities authenticates and lists the identities selectable for the
// configured account, for use as auth.identity_id in the configuration.
func (a *App) Identities(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	syncer := sync.New(cfg, nil, nil, a.logger)
	identities, err := syncer.Identities(ctx)
	if err != nil {
		return err
	}

	for _, id := range identities {
		fmt.Fprintf(a.out, "%-38s %-20s %s\n", id.ID, id.ClientID, id.Name)
	}
	return nil
}

// Wipe deletes the local database file so the next sync rebuilds from
// scratch.
func (a *App) Wipe(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	a.logger.Info("deleting database file", "path", cfg.DatabasePath)
	if err := os.Remove(cfg.DatabasePath); err != nil {
		return fmt.Errorf("failed to delete database file: %w", err)
	}
	a.logger.Info("wipe complete")
	return nil
}
