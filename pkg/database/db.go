// Package database opens the gorm connection the backend uses. The driver is
// chosen by DB_DRIVER (sqlite, postgres, mysql, sqlserver) and the DSN by
// DATABASE_DSN, so the same binary runs against an embedded file in
// development and a real server in deployment.
package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ordersync/ordersync/config"
)

var db *gorm.DB

// Connect opens the configured database and keeps the handle for DB().
func Connect() error {
	dialector, err := dialector(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("database: open %s: %w", config.DatabaseDriver(), err)
	}

	db = conn
	return nil
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("database: unknown driver %q", driver)
	}
}

// DB returns the open connection. Connect must have been called first.
func DB() *gorm.DB {
	return db
}

// Set replaces the connection; used by tests to inject an in-memory sqlite.
func Set(conn *gorm.DB) {
	db = conn
}
