package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

// SessionStore persists user sessions in PostgreSQL.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

type sessionRecord struct {
	Token     string     `gorm:"primaryKey;column:token;size:512"`
	UserID    string     `gorm:"column:user_id;index"`
	Email     string     `gorm:"column:email"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Save upserts a session keyed by token.
func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	userID := strings.TrimSpace(session.UserID)
	token := strings.TrimSpace(session.Token)
	if userID == "" || token == "" {
		return errors.New("user id and token are required")
	}
	rec := sessionRecord{Token: token, UserID: userID, Email: session.Email}
	if !session.ExpiresAt.IsZero() {
		expiry := session.ExpiresAt
		rec.ExpiresAt = &expiry
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "email", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
}

// Lookup fetches a live session by token.
func (s *SessionStore) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec sessionRecord
	err := s.db.WithContext(ctx).
		Where("token = ? AND (expires_at IS NULL OR expires_at > ?)", strings.TrimSpace(token), time.Now()).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userports.ErrSessionNotFound
		}
		return nil, err
	}
	session := &domain.Session{Token: rec.Token, UserID: rec.UserID, Email: rec.Email, CreatedAt: rec.CreatedAt}
	if rec.ExpiresAt != nil {
		session.ExpiresAt = *rec.ExpiresAt
	}
	return session, nil
}

// Delete removes every session of a user.
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "user_id = ?", userID).Error
}

// Revoke removes one session by token.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "token = ?", token).Error
}

// PurgeExpired removes all expired sessions. Use for housekeeping or cron.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	now := time.Now()
	result := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", now).Delete(&sessionRecord{})
	return int(result.RowsAffected), result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}

var _ userports.SessionStore = (*SessionStore)(nil)
