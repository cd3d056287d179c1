package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/config"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
)

// SQLiteIndexes mirrors the uniqueness guarantees of the Postgres schema that
// AutoMigrate cannot derive from embedded model fields.
var SQLiteIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_engagements_volunteer_activity ON engagements (volunteer_id, activity_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_completed_engagements_volunteer_activity ON completed_engagements (volunteer_id, activity_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_volunteer_notifications_source_event ON volunteer_notifications (source_event_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_admin_notifications_source_event ON admin_notifications (source_event_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_outbox_dlq_event_id ON outbox_dlq (event_id)`,
}

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Activity{},
		&models.Engagement{},
		&models.CompletedEngagement{},
		&models.ArchivedEngagement{},
		&models.VolunteerNotification{},
		&models.AdminNotification{},
		&models.OutboxEvent{},
		&models.OutboxDLQ{},
		&models.ChatMessage{},
		&models.Review{},
		&models.ReviewReply{},
	}
}

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if cfg.DB.IsSQLite() {
		ctx = logg.WithField(ctx, "env", cfg.App.Env)
		logg.Info(ctx, "auto-migrating sqlite schema (dev auto-run)")
		if err := AutoMigrateSQLite(client.DB()); err != nil {
			return err
		}
		logg.Info(ctx, "sqlite schema ready")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Apply(ctx, sqlDB, DefaultDir, CommandUp, ""); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateSQLite creates the schema on an embedded sqlite store.
func AutoMigrateSQLite(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	for _, stmt := range SQLiteIndexes {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("creating sqlite index: %w", err)
		}
	}
	return nil
}
