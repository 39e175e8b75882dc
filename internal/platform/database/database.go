package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warbler/internal/model"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver string
	DSN    string
	// LogLevel controls GORM's SQL logging; zero keeps it silent.
	LogLevel logger.LogLevel
}

// New opens a pooled connection for the configured driver and pings it.
// Errors from the storage engine are translated so unique violations
// surface as gorm.ErrDuplicatedKey regardless of driver.
func New(ctx context.Context, opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Silent
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s failed: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get %s sql db failed: %w", opts.Driver, err)
	}

	if opts.Driver == DriverSQLite {
		// A single connection keeps in-memory databases alive and
		// serialises writers the way SQLite expects.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
		sqlDB.SetConnMaxIdleTime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping %s failed: %w", opts.Driver, err)
	}

	return db, nil
}

// mysqlTableOptions gives new MySQL tables a binary collation so username
// equality, the unique indexes and LIKE all compare bytes.
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// Migrate creates or updates the users, messages, follows and likes tables.
// Tables that already exist on MySQL keep their collation.
func Migrate(db *gorm.DB) error {
	if err := migrationSession(db).AutoMigrate(&model.User{}, &model.Message{}, &model.Follow{}, &model.Like{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

func migrationSession(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == DriverMySQL {
		return db.Set("gorm:table_options", mysqlTableOptions)
	}
	return db
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
