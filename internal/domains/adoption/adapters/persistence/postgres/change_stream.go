package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed/pgnotify"
	"github.com/Apurer/pet-adoption-api/internal/shared/validation"
)

// notification is the JSON document built by notify_adoption_request_change().
type notification struct {
	Op  string    `json:"op" validate:"oneof=insert update delete"`
	Old *rowImage `json:"old" validate:"omitempty"`
	New *rowImage `json:"new" validate:"omitempty"`
}

type rowImage struct {
	ID          string    `json:"id" validate:"required"`
	PetID       string    `json:"pet_id" validate:"required"`
	RequesterID string    `json:"requester_id" validate:"required"`
	OwnerID     string    `json:"owner_id" validate:"required"`
	Status      string    `json:"status" validate:"oneof=pending approved rejected"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *rowImage) toDomain() *domain.Request {
	if r == nil {
		return nil
	}
	return &domain.Request{
		ID:          r.ID,
		PetID:       r.PetID,
		RequesterID: r.RequesterID,
		OwnerID:     r.OwnerID,
		Status:      domain.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// DecodeChange validates a trigger payload and converts it into a typed change event.
// Message and contact fields are not carried; consumers load them when needed.
func DecodeChange(payload []byte) (changefeed.Event[domain.Request], error) {
	var n notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return changefeed.Event[domain.Request]{}, fmt.Errorf("decode adoption change: %w", err)
	}
	if err := validation.Struct(n); err != nil {
		return changefeed.Event[domain.Request]{}, fmt.Errorf("invalid adoption change: %w", err)
	}
	ev := changefeed.Event[domain.Request]{Kind: changefeed.Kind(n.Op), Old: n.Old.toDomain(), New: n.New.toDomain()}
	switch ev.Kind {
	case changefeed.KindInsert:
		if ev.New == nil {
			return ev, fmt.Errorf("invalid adoption change: insert without new row")
		}
		ev.At = ev.New.CreatedAt
	case changefeed.KindUpdate:
		if ev.New == nil || ev.Old == nil {
			return ev, fmt.Errorf("invalid adoption change: update needs old and new rows")
		}
		ev.At = ev.New.UpdatedAt
	case changefeed.KindDelete:
		if ev.Old == nil {
			return ev, fmt.Errorf("invalid adoption change: delete without old row")
		}
		ev.At = time.Now().UTC()
	}
	return ev, nil
}

// ChangeStream forwards trigger notifications from a LISTEN connection to a publisher.
type ChangeStream struct {
	listener *pgnotify.Listener
	feed     changefeed.Publisher[domain.Request]
}

func NewChangeStream(listener *pgnotify.Listener, feed changefeed.Publisher[domain.Request]) *ChangeStream {
	return &ChangeStream{listener: listener, feed: feed}
}

// Run blocks until ctx is cancelled. Malformed payloads are rejected and logged by the listener.
func (s *ChangeStream) Run(ctx context.Context) error {
	return s.listener.Run(ctx, func(_ context.Context, payload []byte) error {
		ev, err := DecodeChange(payload)
		if err != nil {
			return err
		}
		s.feed.Publish(ev)
		return nil
	})
}
