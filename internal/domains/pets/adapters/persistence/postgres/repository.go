package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists pets in PostgreSQL using GORM-mapped columns.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle
// and is expected to have applied migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type petRecord struct {
	ID          string         `gorm:"primaryKey;column:id;type:varchar(64)"`
	OwnerID     string         `gorm:"column:owner_id;type:varchar(64);index"`
	Name        string         `gorm:"column:name"`
	Species     string         `gorm:"column:species;type:varchar(16);index"`
	Breed       string         `gorm:"column:breed"`
	AgeMonths   int            `gorm:"column:age_months"`
	Size        string         `gorm:"column:size;type:varchar(16)"`
	Gender      string         `gorm:"column:gender;type:varchar(16)"`
	Color       string         `gorm:"column:color"`
	Description string         `gorm:"column:description"`
	ImageURL    string         `gorm:"column:image_url"`
	Location    string         `gorm:"column:location"`
	GoodWith    pq.StringArray `gorm:"column:good_with;type:text[]"`
	MedicalInfo string         `gorm:"column:medical_info"`
	AdoptionFee float64        `gorm:"column:adoption_fee"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

func newPetRecord(p *domain.Pet) petRecord {
	rec := petRecord{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Species:     string(p.Species),
		Breed:       p.Breed,
		AgeMonths:   p.AgeMonths,
		Size:        string(p.Size),
		Gender:      string(p.Gender),
		Color:       p.Color,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Location:    p.Location,
		MedicalInfo: p.MedicalInfo,
		AdoptionFee: p.AdoptionFee,
	}
	if len(p.GoodWith) > 0 {
		rec.GoodWith = pq.StringArray(append([]string{}, p.GoodWith...))
	}
	return rec
}

// Save inserts or updates a pet listing.
func (r *Repository) Save(ctx context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	record := newPetRecord(pet)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":         record.Name,
				"species":      record.Species,
				"breed":        record.Breed,
				"age_months":   record.AgeMonths,
				"size":         record.Size,
				"gender":       record.Gender,
				"color":        record.Color,
				"description":  record.Description,
				"image_url":    record.ImageURL,
				"location":     record.Location,
				"good_with":    record.GoodWith,
				"medical_info": record.MedicalInfo,
				"adoption_fee": record.AdoptionFee,
				"updated_at":   gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, pet.ID)
}

// GetByID fetches a pet by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record petRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return toProjection(&record), nil
}

// Delete removes a pet by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&petRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Search filters listings by species, size and a free-text query over name, breed and location.
func (r *Repository) Search(ctx context.Context, criteria domain.Criteria) ([]*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	criteria = criteria.Normalize()
	query := r.db.WithContext(ctx).Model(&petRecord{})
	if criteria.Species != "" {
		query = query.Where("species = ?", string(criteria.Species))
	}
	if criteria.Size != "" {
		query = query.Where("size = ?", string(criteria.Size))
	}
	if criteria.Query != "" {
		pattern := "%" + escapeLike(criteria.Query) + "%"
		query = query.Where("name ILIKE ? OR breed ILIKE ? OR location ILIKE ?", pattern, pattern, pattern)
	}
	var records []petRecord
	if err := query.Order("created_at DESC, id").Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsToProjections(records), nil
}

// ListByOwner returns every listing created by ownerID.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsToProjections(records), nil
}

func recordsToProjections(records []petRecord) []*projection.Projection[*domain.Pet] {
	list := make([]*projection.Projection[*domain.Pet], 0, len(records))
	for i := range records {
		list = append(list, toProjection(&records[i]))
	}
	return list
}

func toProjection(record *petRecord) *projection.Projection[*domain.Pet] {
	return projection.New(record.toDomain(), record.CreatedAt, record.UpdatedAt)
}

func (r *petRecord) toDomain() *domain.Pet {
	pet := &domain.Pet{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Species:     domain.Species(r.Species),
		Breed:       r.Breed,
		AgeMonths:   r.AgeMonths,
		Size:        domain.Size(r.Size),
		Gender:      domain.Gender(r.Gender),
		Color:       r.Color,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Location:    r.Location,
		MedicalInfo: r.MedicalInfo,
		AdoptionFee: r.AdoptionFee,
	}
	if len(r.GoodWith) > 0 {
		pet.GoodWith = append([]string{}, r.GoodWith...)
	}
	return pet
}

func escapeLike(v string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(v)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository not configured")
	}
	return nil
}
