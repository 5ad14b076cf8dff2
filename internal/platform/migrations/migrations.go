package migrations

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// AdoptionRequestsChannel is the NOTIFY channel fed by the adoption_requests trigger.
const AdoptionRequestsChannel = "adoption_requests_changes"

// Run applies the schema for the bounded contexts. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&petRecord{},
		&adoptionRequestRecord{},
		&profileRecord{},
		&sessionRecord{},
		&slotRecord{},
	); err != nil {
		return err
	}
	for _, stmt := range adoptionTriggerSQL {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("install adoption change trigger: %w", err)
		}
	}
	return nil
}

// Pet schema mirrors the pets Postgres adapter.
type petRecord struct {
	ID          string         `gorm:"primaryKey;column:id;type:varchar(64)"`
	OwnerID     string         `gorm:"column:owner_id;type:varchar(64);index"`
	Name        string         `gorm:"column:name;not null"`
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
	CreatedAt   time.Time      `gorm:"column:created_at;index"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

// Adoption request schema mirrors the adoption Postgres adapter. The unique
// (pet_id, requester_id) index is what rejects duplicate submissions.
type adoptionRequestRecord struct {
	ID           string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	PetID        string    `gorm:"column:pet_id;type:varchar(64);not null;uniqueIndex:uq_adoption_requests_pet_requester,priority:1"`
	RequesterID  string    `gorm:"column:requester_id;type:varchar(64);not null;uniqueIndex:uq_adoption_requests_pet_requester,priority:2;index"`
	OwnerID      string    `gorm:"column:owner_id;type:varchar(64);not null;index"`
	Message      string    `gorm:"column:message;type:text"`
	ContactEmail string    `gorm:"column:contact_email"`
	ContactPhone string    `gorm:"column:contact_phone"`
	Status       string    `gorm:"column:status;type:varchar(16);not null;default:pending"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (adoptionRequestRecord) TableName() string { return "adoption_requests" }

// Profile schema mirrors the users profile repository.
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

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string     `gorm:"primaryKey;column:token;size:512"`
	UserID    string     `gorm:"column:user_id;index"`
	Email     string     `gorm:"column:email"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Slot schema mirrors the localstate Postgres store.
type slotRecord struct {
	Key       string    `gorm:"primaryKey;column:slot_key;size:255"`
	Value     []byte    `gorm:"column:slot_value;type:bytea;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (slotRecord) TableName() string { return "state_slots" }

// The payload leaves out free text so it stays well under the 8000 byte NOTIFY limit.
var adoptionTriggerSQL = []string{
	`CREATE OR REPLACE FUNCTION notify_adoption_request_change() RETURNS trigger AS $$
DECLARE
	old_row json;
	new_row json;
BEGIN
	IF TG_OP <> 'INSERT' THEN
		old_row := json_build_object('id', OLD.id, 'pet_id', OLD.pet_id, 'requester_id', OLD.requester_id,
			'owner_id', OLD.owner_id, 'status', OLD.status, 'created_at', OLD.created_at, 'updated_at', OLD.updated_at);
	END IF;
	IF TG_OP <> 'DELETE' THEN
		new_row := json_build_object('id', NEW.id, 'pet_id', NEW.pet_id, 'requester_id', NEW.requester_id,
			'owner_id', NEW.owner_id, 'status', NEW.status, 'created_at', NEW.created_at, 'updated_at', NEW.updated_at);
	END IF;
	PERFORM pg_notify('` + AdoptionRequestsChannel + `',
		json_build_object('op', lower(TG_OP), 'old', old_row, 'new', new_row)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS adoption_requests_notify ON adoption_requests`,
	`CREATE TRIGGER adoption_requests_notify
	AFTER INSERT OR UPDATE OR DELETE ON adoption_requests
	FOR EACH ROW EXECUTE FUNCTION notify_adoption_request_change()`,
}
