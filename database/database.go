package database

import (
	"fmt"
	"log"
	"log/slog"
	"time"

	"restaurant-app/config"
	"restaurant-app/internal/domain/billing"
	"restaurant-app/internal/domain/invitations"
	"restaurant-app/internal/domain/menu"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/payments"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/tables"
	"restaurant-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB() {
	if config.DB_URL == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := Open(config.DB_DRIVER, config.DB_URL)
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	DB = db
	slog.Info("Connected and migrated successfully", "driver", config.DB_DRIVER)
}

// Open connects with the given driver ("postgres" or "sqlite").
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn)),
	})
}

// newGormLogger reports slow queries and errors. Record-not-found is an
// expected outcome of slug, membership and token lookups and stays quiet.
func newGormLogger(w gormlogger.Writer) gormlogger.Interface {
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		// foreign keys are off by default in sqlite
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return err
		}
	}

	return db.AutoMigrate(
		// identity
		&users.User{},
		&users.VerificationToken{},

		// tenancy
		&plans.Plan{},
		&orgs.Organization{},
		&orgs.Membership{},
		&invitations.Invitation{},
		&billing.Invoice{},

		// restaurant
		&tables.Table{},
		&menu.Category{},
		&menu.Item{},
		&orders.Order{},
		&orders.OrderItem{},
		&payments.Payment{},
	)
}
