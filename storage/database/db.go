package database

import (
	"context"
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/kmr-srbh/paper-desktop/core"
)

const (
	EnginePostgres = "postgres"
	EngineSqlite   = "sqlite"

	memory = ":memory:"
)

//go:embed migrations
var migrationsFS embed.FS

var gooseMu sync.Mutex // goose keeps its settings in package globals

// Open connects to the configured engine. For sqlite, the three namespaces are attached to a single
// connection; an empty conf.Database.Dir keeps everything in memory.
func Open(conf *core.Config) (*sqlx.DB, error) {
	switch conf.Database.Engine {
	case EnginePostgres:
		db, err := openPostgres(conf.Database.Name, false, conf)
		if err != nil {
			return nil, err
		}
		if err = ping(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	case EngineSqlite, "":
		return openSqlite(conf.Database.Dir)
	}
	return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
}

func openPostgres(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   EnginePostgres,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	db, err := sqlx.Open(EnginePostgres, u.String())
	return db, errors.Wrap(err, "opening postgres")
}

func openSqlite(dir string) (*sqlx.DB, error) {
	mainPath := memory
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "creating data directory")
		}
		mainPath = filepath.Join(dir, "paper.db")
	}

	db, err := sqlx.Open(EngineSqlite, mainPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite")
	}
	// attached databases live on the connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err = db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "configuring sqlite")
	}
	for _, ns := range Namespaces {
		path := memory
		if dir != "" {
			path = filepath.Join(dir, ns+".db")
		}
		if _, err = db.Exec("ATTACH DATABASE ? AS "+Quote(ns), path); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "attaching %s", ns)
		}
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func exists(db *sqlx.DB, query string, args ...interface{}) (bool, error) {
	var found []bool
	if err := db.Select(&found, db.Rebind(query), args...); err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

func createAppUser(db *sqlx.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	found, err := exists(db, "SELECT true FROM pg_roles WHERE rolname = ?", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !found {
		q := fmt.Sprintf("CREATE USER %s CREATEDB ENCRYPTED PASSWORD '%s'", Quote(conf.Database.User), conf.Database.Password)
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sqlx.DB, conf *core.Config) error {
	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = ?", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		if _, err = db.Exec("CREATE DATABASE " + Quote(conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist prepares the storage: the data directory for sqlite, the app user & database for postgres.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.Engine != EnginePostgres {
		if conf.Database.Dir == "" {
			return nil
		}
		return errors.Wrap(os.MkdirAll(conf.Database.Dir, 0o700), "creating data directory")
	}

	// connect as admin
	db, err := openPostgres("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(db, conf); err != nil {
		return errors.Wrap(err, "creating app user")
	}

	// create DB as app user
	appDB, err := openPostgres("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = appDB.Close() }()

	if err = createDB(appDB, conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// gooseLogger routes goose output to a core.Logger.
type gooseLogger struct {
	logger core.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatal(fmt.Sprintf(format, v...))
}

func setupGoose(db *sqlx.DB, logger core.Logger) (string, error) {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{logger: logger})

	dialect, dir := "sqlite3", "migrations/sqlite"
	if IsPostgres(db) {
		dialect, dir = "postgres", "migrations/postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", errors.Wrap(err, "setting migration dialect")
	}
	return dir, nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sqlx.DB, logger core.Logger) error {
	return RunMigration(ctx, db, logger, "up")
}

// RunMigration runs a goose command (up, down, status, version, redo, reset, ...).
func RunMigration(ctx context.Context, db *sqlx.DB, logger core.Logger, command string, args ...string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	dir, err := setupGoose(db, logger)
	if err != nil {
		return err
	}
	if err = goose.RunContext(ctx, command, db.DB, dir, args...); err != nil {
		return errors.Wrapf(err, "migrating database (%s)", command)
	}
	return nil
}
