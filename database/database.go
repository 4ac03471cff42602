package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sharath018/expo-event-service/config"
	"github.com/sharath018/expo-event-service/internal/auditlog"
	"github.com/sharath018/expo-event-service/internal/event"
)

// DSN builds the postgres connection string from config.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

// Connect opens the gorm connection pool. Timestamps are written in UTC.
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormLevel := logger.Warn
	if !cfg.IsProduction() {
		gormLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("✅ database connected", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
	return db, nil
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&event.Organization{},
		&event.OrganizationTeamMember{},
		&event.Event{},
		&event.EventIntervalDate{},
		&event.EventTag{},
		&event.EventTenant{},
		&event.EventGroup{},
		&auditlog.AuditLog{},
	}
}

// Migrate runs AutoMigrate and the partial unique index on active urls.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("🔄 running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}
	if err := db.Exec(activeURLIndex).Error; err != nil {
		return fmt.Errorf("create active url index: %w", err)
	}
	log.Info("✅ database migrations completed")
	return nil
}

const activeURLIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_events_active_url ON events (url) WHERE is_active = true`
