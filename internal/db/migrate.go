package db

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/certilux/cert-app/internal/models"
)

// Models lists everything AutoMigrate manages, in FK dependency order.
var Models = []interface{}{
	&models.User{},
	&models.ServiceTier{},
	&models.Client{},
	&models.Mission{},
	&models.CertificationReport{},
	&models.Payment{},
	&models.Document{},
	&models.AuditLog{},
}

// ConnectAndMigrate opens the database with retries and brings the
// schema up to date. MIGRATIONS=1 runs SQL migrations via
// golang-migrate; otherwise AutoMigrate is used (dev convenience).
// DB_SEED=1 seeds the service tier catalog.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, errors.New("empty DATABASE_DSN; check environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		zap.L().Warn("retrying DB connection", zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	zap.L().Info("database connected", zap.String("dsn", MaskDSN(dsn)))

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range Models {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"users", "service_tiers", "missions"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		SeedTiers(db)
	}
	return db, nil
}

// SeedTiers inserts the service tier catalog when missing.
func SeedTiers(db *gorm.DB) {
	baseTiers := []models.ServiceTier{
		{Code: "custodia", Name: "Custodia", Price: 149, Currency: "EUR", Active: true,
			Features: "Authentication, condition report, certificate"},
		{Code: "imperium", Name: "Imperium", Price: 349, Currency: "EUR", Active: true,
			Features: "Full movement inspection, water resistance test, market valuation, certificate"},
	}
	for _, tier := range baseTiers {
		var existing models.ServiceTier
		if err := db.Where("code = ?", tier.Code).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			db.Create(&tier)
		}
	}
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
