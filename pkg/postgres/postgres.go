package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/cfg"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout       = 5 * time.Second
	DefaultMigrations = "file://db/migrations"
)

// PgDatabase инкапсулирует подключение к PostgreSQL и управление миграциями.
type PgDatabase struct {
	Pool *pgxpool.Pool
	Dsn  string // используется outbox-воркером для отдельного LISTEN-соединения
	cfg  *cfg.PGDBCfg
}

func NewPgDatabase(pool *pgxpool.Pool, cfg *cfg.PGDBCfg, dsn string) *PgDatabase {
	return &PgDatabase{Pool: pool, cfg: cfg, Dsn: dsn}
}

// DSN собирает строку подключения в формате key=value.
func DSN(cfg *cfg.PGDBCfg) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// Connect устанавливает соединение с PostgreSQL.
func Connect(ctx context.Context, cfg *cfg.PGDBCfg) (*PgDatabase, error) {
	const op = "PgDatabase.Connect"
	dsn := DSN(cfg)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	db := NewPgDatabase(pool, cfg, dsn)
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, e.Wrap(op, err)
	}

	return db, nil
}

func (db *PgDatabase) Ping(ctx context.Context) error {
	const op = "PgDatabase.Ping"
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// Close корректно закрывает пул соединений к базе данных.
func (db *PgDatabase) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// RunMigrations применяет ожидающие миграции из db/migrations.
func (db *PgDatabase) RunMigrations(logger logger.Logger) error {
	return MigrateUp(db.Dsn, DefaultMigrations, logger)
}

// MigrateUp применяет все ожидающие миграции. Отсутствие изменений не ошибка.
func MigrateUp(dsn, sourceURL string, logger logger.Logger) error {
	const op = "postgres.MigrateUp"

	err := withMigrator(dsn, sourceURL, func(m *migrate.Migrate) error {
		return m.Up()
	})
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Infof("migrations: no change")
			return nil
		}
		return e.Wrap(op, err)
	}

	logger.Infof("migrations applied successfully")
	return nil
}

// MigrateDown откатывает steps последних миграций.
func MigrateDown(dsn, sourceURL string, steps int, logger logger.Logger) error {
	const op = "postgres.MigrateDown"

	if steps < 1 {
		return e.Wrap(op, fmt.Errorf("steps must be positive, got %d", steps))
	}

	err := withMigrator(dsn, sourceURL, func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	logger.Infof("rolled back %d migration(s)", steps)
	return nil
}

// MigrationVersion возвращает текущую версию схемы и флаг dirty.
func MigrationVersion(dsn, sourceURL string) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)

	err := withMigrator(dsn, sourceURL, func(m *migrate.Migrate) error {
		var err error
		version, dirty, err = m.Version()
		return err
	})
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	return version, dirty, err
}

func withMigrator(dsn, sourceURL string, fn func(m *migrate.Migrate) error) error {
	const (
		driverName         = "pgx"
		databaseDriverName = "postgres"
	)

	sqlDb, err := sql.Open(driverName, dsn)
	if err != nil {
		return err
	}
	defer sqlDb.Close()

	driver, err := postgres.WithInstance(sqlDb, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, databaseDriverName, driver)
	if err != nil {
		return err
	}

	return fn(m)
}
