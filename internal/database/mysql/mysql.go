package mysql

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"taxcopilot/internal/config"
)

var (
	dbInstance *gorm.DB
	once       sync.Once
	initErr    error
)

// GetDB initializes and returns a singleton GORM database handle. The
// connection is established once for the process lifetime; later calls return
// the existing instance.
func GetDB(cfg *config.MySQLConfig) (*gorm.DB, error) {
	once.Do(func() {
		dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.Username,
			cfg.Password,
			cfg.Address,
			cfg.Database,
		)

		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			initErr = fmt.Errorf("unable to connect to MySQL: %w", err)
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			initErr = fmt.Errorf("unable to access underlying sql.DB: %w", err)
			return
		}

		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

		dbInstance = db
	})

	return dbInstance, initErr
}

// Close safely closes the singleton database connection.
func Close() error {
	if dbInstance == nil {
		return nil
	}
	sqlDB, err := dbInstance.DB()
	if err != nil {
		return fmt.Errorf("unable to access underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck pings the database to verify connectivity.
func HealthCheck(ctx context.Context) error {
	if dbInstance == nil {
		return fmt.Errorf("database connection not initialized")
	}
	sqlDB, err := dbInstance.DB()
	if err != nil {
		return fmt.Errorf("unable to access underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
