// Package postgres stores state slots in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/platform/localstate"
)

// Store persists slots in the state_slots table. The caller owns the DB lifecycle.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed slot store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// slotRecord mirrors the state_slots schema in platform/migrations.
type slotRecord struct {
	Key       string    `gorm:"primaryKey;column:slot_key;size:255"`
	Value     []byte    `gorm:"column:slot_value;type:bytea;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (slotRecord) TableName() string { return "state_slots" }

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.ensureDB(); err != nil {
		return nil, false, err
	}
	var rec slotRecord
	err := s.db.WithContext(ctx).First(&rec, "slot_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Value, true, nil
}

func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if blob == nil {
		blob = []byte{}
	}
	rec := slotRecord{Key: key, Value: blob}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"slot_value", "updated_at"}),
		}).
		Create(&rec).Error
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&slotRecord{}, "slot_key = ?", key).Error
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres state store not configured")
	}
	return nil
}

var _ localstate.Store = (*Store)(nil)
