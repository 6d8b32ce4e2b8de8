package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/soaringjerry/Raay/internal/config"
	dbstore "github.com/soaringjerry/Raay/internal/db"
)

// runMigrate applies the schema and reports the recent audit trail, then exits. Used by
// deploy hooks that must not start the HTTP server.
func runMigrate(cfg *config.Config, logger *zap.Logger) error {
	sqliteDB, err := dbstore.Open(cfg.Database.SQLitePath, cfg.Database.MigrationsDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			logger.Warn("Failed to close sqlite db", zap.Error(cerr))
		}
	}()
	store, err := dbstore.NewSQLiteStore(sqliteDB)
	if err != nil {
		return err
	}
	recent, err := store.ListAudit(context.Background(), 5)
	if err != nil {
		return err
	}
	logger.Info("Migrations applied",
		zap.String("path", cfg.Database.SQLitePath),
		zap.String("migrations_dir", cfg.Database.MigrationsDir),
		zap.Int("recent_audit_entries", len(recent)),
	)
	for _, e := range recent {
		logger.Info("Audit", zap.Time("time", e.Time), zap.String("actor", e.Actor), zap.String("action", e.Action), zap.String("target", e.Target))
	}
	return nil
}
