// internal/storage/user_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Annany2002/jobboard-backend/internal/domain"
)

var (
	ErrUserNotFound = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrEmailExists  = errors.New("email already exists")
)

// CreateUser inserts a new user and returns it.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string, isStaff bool) (*domain.User, error) {
	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		IsStaff:      isStaff,
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
	}

	sqlStatement := fmt.Sprintf(`INSERT INTO %s (email, password_hash, is_staff, is_active, date_joined) VALUES (?, ?, ?, ?, ?)`, s.userTable)
	result, err := s.DB.ExecContext(ctx, sqlStatement, user.Email, user.PasswordHash, user.IsStaff, user.IsActive, user.DateJoined)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		customLog.Warnf("Storage: Failed to insert user %s: %v", user.Email, err)
		return nil, fmt.Errorf("database error during user creation: %w", err)
	}

	user.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user ID after creation: %w", err)
	}
	return user, nil
}

// FindUserByEmail retrieves a user by email address (case-insensitive).
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	sqlStatement := fmt.Sprintf(`SELECT id, email, password_hash, is_staff, is_active, date_joined FROM %s WHERE email = ? LIMIT 1`, s.userTable)
	return s.scanUser(s.DB.QueryRowContext(ctx, sqlStatement, strings.ToLower(strings.TrimSpace(email))))
}

// FindUserByID retrieves a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	sqlStatement := fmt.Sprintf(`SELECT id, email, password_hash, is_staff, is_active, date_joined FROM %s WHERE id = ? LIMIT 1`, s.userTable)
	return s.scanUser(s.DB.QueryRowContext(ctx, sqlStatement, id))
}

func (s *Store) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsStaff, &user.IsActive, &user.DateJoined)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		customLog.Warnf("Storage: Failed to scan user: %v", err)
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		sqliteErr.Code == sqlite3.ErrConstraint &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
