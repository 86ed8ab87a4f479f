package db

import (
	"database/sql"
	"fmt"
	"strings"

	"yeardiary/internal/config"
	"yeardiary/internal/store/gormstore"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// sqliteDriver is the database/sql name registered by modernc.org/sqlite.
const sqliteDriver = "sqlite"

// Connect opens a gorm handle. SQLite goes through the pure Go modernc
// driver so no cgo toolchain is needed.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Dialector{DriverName: sqliteDriver, DSN: SQLiteDSN(dsn)}
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if driver == config.DriverSQLite {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}

// OpenSQL opens a plain database/sql handle: lib/pq for postgres, modernc
// for sqlite.
func OpenSQL(driver, dsn string) (*sql.DB, error) {
	var (
		sdb *sql.DB
		err error
	)
	switch driver {
	case config.DriverPostgres:
		sdb, err = sql.Open("postgres", dsn)
	case config.DriverSQLite:
		sdb, err = sql.Open(sqliteDriver, SQLiteDSN(dsn))
		if err == nil {
			sdb.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := sdb.Ping(); err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return sdb, nil
}

// SQLiteDSN adds the pragmas the stores rely on unless the caller already
// set pragmas explicitly.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(gormstore.Models()...); err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_entries_user_updated on entries(user_id, updated_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}
