package storage

import (
	"fmt"
	"time"
)

// CreateSession replaces whatever session the user had
func (s *Store) CreateSession(record SessionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id = ?`, record.UserID); err != nil {
		return fmt.Errorf("failed to delete existing session: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO sessions (session_id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		record.SessionID, record.UserID, record.CreatedAt, record.ExpiresAt,
	); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return tx.Commit()
}

func (s *Store) GetSession(sessionID string) (*SessionRecord, error) {
	var rec SessionRecord
	err := s.db.QueryRow(
		`SELECT session_id, user_id, created_at, expires_at FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&rec.SessionID, &rec.UserID, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

// DeleteSessionByUserID ends the user's session, if any
func (s *Store) DeleteSessionByUserID(userID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (s *Store) DeleteExpiredSessions() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// IsSessionValid reports whether userID has an unexpired session. A non-empty
// sessionID must also match that session.
func (s *Store) IsSessionValid(sessionID, userID string) (bool, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE user_id = ? AND expires_at > ?`
	args := []any{userID, time.Now().UTC()}
	if sessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, sessionID)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
