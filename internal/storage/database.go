// internal/storage/database.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration

	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/core"
	"github.com/Annany2002/jobboard-backend/internal/logger"
)

var (
	customLog = logger.Named("storage")
)

// Store wraps the sqlite connection pool.
type Store struct {
	DB        *sql.DB
	userTable string
}

// Open initializes the sqlite database at cfg.DatabasePath() and ensures the
// users (named after AUTH_USER_MODEL), jobs, applications and token_blacklist
// tables exist.
func Open(cfg *config.Config) (*Store, error) {
	dbPath := cfg.DatabasePath()
	userTable := cfg.UserTable()
	if !core.IsValidIdentifier(userTable) {
		return nil, fmt.Errorf("invalid user table name %q derived from AUTH_USER_MODEL", userTable)
	}
	customLog.Infof("Storage: Initializing database: %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		customLog.Warnf("Storage: Error creating data directory for '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// foreign keys on, WAL mode and a 5s busy timeout
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		customLog.Warnf("Storage: Failed to open db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	store := &Store{DB: db, userTable: userTable}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	customLog.Info("Storage: Database connection successful.")
	return store, nil
}

func (s *Store) migrate() error {
	statements := []struct {
		name string
		sql  string
	}{
		{s.userTable, fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		is_staff INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		date_joined TIMESTAMP NOT NULL
	);`, s.userTable)},
		{"jobs", fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		employment_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		posted_by INTEGER NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (posted_by) REFERENCES %s(id) ON DELETE CASCADE
	);`, s.userTable)},
		{"applications", fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id INTEGER NOT NULL,
		applicant_id INTEGER NOT NULL,
		cover_letter TEXT NOT NULL DEFAULT '',
		resume_name TEXT NOT NULL,
		resume_type TEXT NOT NULL,
		resume_size INTEGER NOT NULL,
		resume_data BLOB NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (job_id, applicant_id),
		FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
		FOREIGN KEY (applicant_id) REFERENCES %s(id) ON DELETE CASCADE
	);`, s.userTable)},
		{"token_blacklist", `
	CREATE TABLE IF NOT EXISTS token_blacklist (
		jti TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		blacklisted_at TIMESTAMP NOT NULL
	);`},
	}

	for _, stmt := range statements {
		if _, err := s.DB.Exec(stmt.sql); err != nil {
			customLog.Warnf("Storage: Failed to create %s table: %v", stmt.name, err)
			return fmt.Errorf("failed to ensure %s table: %w", stmt.name, err)
		}
		customLog.Debugf("Storage: %s table ensured.", stmt.name)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}
