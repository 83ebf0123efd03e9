package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var Conn *sqlx.DB

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

const LockTimeout = 4000
const IdleInTransactionSessionTimeout = 90000
const StatementTimeout = 30000

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Options struct {
	Driver     string
	Url        string
	Production bool
}

func init() {
	// modernc registers itself as "sqlite", which sqlx doesn't map to a bind type
	sqlx.BindDriver(DriverSqlite, sqlx.QUESTION)
}

func Connect(opts Options) error {
	var err error

	switch opts.Driver {
	case DriverPostgres:
		Conn, err = connectPostgres(opts)
	case DriverSqlite:
		Conn, err = connectSqlite(opts)
	default:
		return fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}

	if err != nil {
		return err
	}

	zap.L().Info("connected to database", zap.String("driver", opts.Driver))

	return nil
}

func connectPostgres(opts Options) (*sqlx.DB, error) {
	dbUrl := opts.Url
	if dbUrl == "" {
		return nil, errors.New("DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, and DB_NAME environment variables must be set")
	}

	sep := "?"
	if strings.Contains(dbUrl, "?") {
		sep = "&"
	}
	dbUrl += fmt.Sprintf("%sstatement_timeout=%d&lock_timeout=%d&timezone=UTC&idle_in_transaction_session_timeout=%d", sep, StatementTimeout, LockTimeout, IdleInTransactionSessionTimeout)

	conn, err := sqlx.Connect(DriverPostgres, dbUrl)
	if err != nil {
		return nil, fmt.Errorf("error connecting to postgres: %v", err)
	}

	if opts.Production {
		conn.SetMaxOpenConns(50)
		conn.SetMaxIdleConns(20)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(5)
	}

	return conn, nil
}

func connectSqlite(opts Options) (*sqlx.DB, error) {
	dsn := opts.Url
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	}
	if !strings.Contains(dsn, "_pragma=foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	conn, err := sqlx.Connect(DriverSqlite, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %v", err)
	}

	// a single connection keeps in-memory databases alive and serializes writers
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	return conn, nil
}

func Close() error {
	if Conn == nil {
		return nil
	}
	err := Conn.Close()
	Conn = nil
	return err
}

func Ping(ctx context.Context) error {
	if Conn == nil {
		return errors.New("db not initialized")
	}
	return Conn.PingContext(ctx)
}

func MigrationsUp() error {
	m, err := newMigrate()
	if err != nil {
		return err
	}

	err = m.Up()

	if err != nil {
		if err == migrate.ErrNoChange {
			zap.L().Info("migration state is up to date")
			return nil
		}
		return fmt.Errorf("error running migrations: %v", err)
	}

	zap.L().Info("ran migrations successfully")

	return nil
}

// MigrationsDown resets the database. Only reachable from the cli.
func MigrationsDown() error {
	m, err := newMigrate()
	if err != nil {
		return err
	}

	err = m.Down()
	if err != nil {
		if err == migrate.ErrNoChange {
			zap.L().Info("no migrations to run down")
			return nil
		}
		return fmt.Errorf("error running down migrations: %v", err)
	}

	zap.L().Info("ran down migrations - database was reset")

	return nil
}

func newMigrate() (*migrate.Migrate, error) {
	if Conn == nil {
		return nil, errors.New("db not initialized")
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("error loading embedded migrations: %v", err)
	}

	var driver database.Driver
	switch Conn.DriverName() {
	case DriverPostgres:
		driver, err = postgres.WithInstance(Conn.DB, &postgres.Config{})
	case DriverSqlite:
		driver, err = sqlite.WithInstance(Conn.DB, &sqlite.Config{})
	default:
		err = fmt.Errorf("unsupported database driver: %q", Conn.DriverName())
	}

	if err != nil {
		return nil, fmt.Errorf("error creating %s migration driver: %v", Conn.DriverName(), err)
	}

	m, err := migrate.NewWithInstance("iofs", source, Conn.DriverName(), driver)
	if err != nil {
		return nil, fmt.Errorf("error creating migration instance: %v", err)
	}

	return m, nil
}
