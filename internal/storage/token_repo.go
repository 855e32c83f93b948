// internal/storage/token_repo.go
package storage

import (
	"context"
	"fmt"
	"time"
)

// BlacklistToken records a revoked token. Blacklisting twice is a no-op.
func (s *Store) BlacklistToken(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO token_blacklist (jti, user_id, expires_at, blacklisted_at) VALUES (?, ?, ?, ?)`,
		jti, userID, expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		customLog.Warnf("Storage: Failed to blacklist token for user %d: %v", userID, err)
		return fmt.Errorf("database error blacklisting token: %w", err)
	}
	return nil
}

// IsTokenBlacklisted reports whether jti has been revoked.
func (s *Store) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = ?)`, jti).Scan(&exists)
	if err != nil {
		customLog.Warnf("Storage: Failed to check token blacklist: %v", err)
		return false, fmt.Errorf("database error checking token blacklist: %w", err)
	}
	return exists, nil
}

// PurgeExpiredTokens removes blacklist entries whose tokens expired before now.
func (s *Store) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM token_blacklist WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("database error purging token blacklist: %w", err)
	}
	return result.RowsAffected()
}
