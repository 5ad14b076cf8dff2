package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository persists profiles in PostgreSQL using GORM.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileRecord struct {
	ID           string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	Name         string    `gorm:"column:name"`
	ContactEmail string    `gorm:"column:contact_email"`
	ContactPhone string    `gorm:"column:contact_phone"`
	Location     string    `gorm:"column:location"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (profileRecord) TableName() string { return "profiles" }

// Save inserts or updates a profile keyed by user id.
func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	record := profileRecord{
		ID:           profile.ID,
		Name:         profile.Name,
		ContactEmail: profile.ContactEmail,
		ContactPhone: profile.ContactPhone,
		Location:     profile.Location,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "contact_email", "contact_phone", "location", "updated_at"}),
		}).
		Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a profile by user id.
func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (*domain.Profile, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record profileRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &domain.Profile{
		ID:           record.ID,
		Name:         record.Name,
		ContactEmail: record.ContactEmail,
		ContactPhone: record.ContactPhone,
		Location:     record.Location,
	}, nil
}

func (r *ProfileRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres profile repository not configured")
	}
	return nil
}
