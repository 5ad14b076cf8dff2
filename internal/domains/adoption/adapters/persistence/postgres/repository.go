package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists adoption requests in PostgreSQL. Change events are
// emitted by the table trigger installed in platform/migrations, not by this type.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The gorm session should have
// TranslateError enabled so unique violations surface as gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type requestRecord struct {
	ID           string    `gorm:"primaryKey;column:id"`
	PetID        string    `gorm:"column:pet_id"`
	RequesterID  string    `gorm:"column:requester_id"`
	OwnerID      string    `gorm:"column:owner_id"`
	Message      string    `gorm:"column:message"`
	ContactEmail string    `gorm:"column:contact_email"`
	ContactPhone string    `gorm:"column:contact_phone"`
	Status       string    `gorm:"column:status"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (requestRecord) TableName() string { return "adoption_requests" }

func newRequestRecord(r *domain.Request) requestRecord {
	return requestRecord{
		ID:           r.ID,
		PetID:        r.PetID,
		RequesterID:  r.RequesterID,
		OwnerID:      r.OwnerID,
		Message:      r.Message,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (rec *requestRecord) toDomain() *domain.Request {
	return &domain.Request{
		ID:           rec.ID,
		PetID:        rec.PetID,
		RequesterID:  rec.RequesterID,
		OwnerID:      rec.OwnerID,
		Message:      rec.Message,
		ContactEmail: rec.ContactEmail,
		ContactPhone: rec.ContactPhone,
		Status:       domain.Status(rec.Status),
		CreatedAt:    rec.CreatedAt.UTC(),
		UpdatedAt:    rec.UpdatedAt.UTC(),
	}
}

// Insert stores a new request; the unique (pet_id, requester_id) index rejects duplicates.
func (r *Repository) Insert(ctx context.Context, request *domain.Request) (*domain.Request, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, errors.New("cannot insert nil request")
	}
	record := newRequestRecord(request)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record requestRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

func (r *Repository) FindByPetAndRequester(ctx context.Context, petID, requesterID string) (*domain.Request, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record requestRecord
	if err := r.db.WithContext(ctx).
		Where("pet_id = ? AND requester_id = ?", petID, requesterID).
		First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

// CompareAndSetStatus issues a single conditional UPDATE ... RETURNING.
func (r *Repository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) (*domain.Request, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []requestRecord
	result := r.db.WithContext(ctx).
		Model(&records).
		Clauses(clause.Returning{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": at})
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 || len(records) == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ports.ErrStatusConflict
	}
	return records[0].toDomain(), nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Request, error) {
	return r.list(ctx, "owner_id = ?", ownerID)
}

func (r *Repository) ListByRequester(ctx context.Context, requesterID string) ([]*domain.Request, error) {
	return r.list(ctx, "requester_id = ?", requesterID)
}

func (r *Repository) ListByPet(ctx context.Context, petID string) ([]*domain.Request, error) {
	return r.list(ctx, "pet_id = ?", petID)
}

// DeleteByPet removes every request for the pet. The trigger emits one delete event per row.
func (r *Repository) DeleteByPet(ctx context.Context, petID string) (int, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Delete(&requestRecord{}, "pet_id = ?", petID)
	if result.Error != nil {
		return 0, translate(result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) list(ctx context.Context, where string, arg string) ([]*domain.Request, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []requestRecord
	if err := r.db.WithContext(ctx).Where(where, arg).Order("created_at DESC, id").Find(&records).Error; err != nil {
		return nil, translate(err)
	}
	list := make([]*domain.Request, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func translate(err error) error {
	var netErr net.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ports.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ports.ErrDuplicate, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", ports.ErrUnavailable, err)
	}
	return err
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository not configured")
	}
	return nil
}
