package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrGroupNotFound is returned when a group looked up by name does not exist.
var ErrGroupNotFound = errors.New("group not found")

type UserDB struct {
	DB  *sql.DB
	Log *zerolog.Logger
}

// NewUserDB is a constructor that initializes UserDB with DB and Log
func NewUserDB(log *zerolog.Logger) (*UserDB, error) {
	// Get the database connection string from the environment
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Error().Msg("DATABASE_URL environment variable is not set")
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	// Open the database connection
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		db.Close()
		return nil, err
	}

	return &UserDB{
		DB:  db,
		Log: log,
	}, nil
}

func (u *UserDB) Close() error {
	if err := u.DB.Close(); err != nil {
		return err
	}
	u.Log.Info().Msg("database connection closed")
	u.DB = nil

	return nil
}

// Migrate applies all pending schema migrations.
func (u *UserDB) Migrate() error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("error setting migration dialect: %w", err)
	}

	if err := goose.Up(u.DB, "migrations"); err != nil {
		u.Log.Error().Err(err).Msg("error applying migrations")
		return fmt.Errorf("error applying migrations: %w", err)
	}

	version, err := goose.GetDBVersion(u.DB)
	if err != nil {
		return fmt.Errorf("error reading migration version: %w", err)
	}

	u.Log.Info().Int64("version", version).Msg("Database schema is up to date")
	return nil
}

func (u *UserDB) execQuery(ctx context.Context, query string, args ...interface{}) (int64, error) {

	if u.DB == nil {
		return 0, fmt.Errorf("database connection is not established")
	}

	res, err := u.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}
