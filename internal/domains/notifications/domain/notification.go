package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type tags what produced a notification.
type Type string

const (
	TypeAdoptionRequest  Type = "adoption_request"
	TypeAdoptionApproved Type = "adoption_approved"
	TypeAdoptionRejected Type = "adoption_rejected"
	TypeMessage          Type = "message"
)

var ErrInvalidType = errors.New("notification type must be adoption_request, adoption_approved, adoption_rejected or message")

func (t Type) Valid() bool {
	switch t {
	case TypeAdoptionRequest, TypeAdoptionApproved, TypeAdoptionRejected, TypeMessage:
		return true
	default:
		return false
	}
}

// Notification is one entry of a user's inbox. The JSON shape is the persisted layout.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
	RelatedID string    `json:"relatedId,omitempty"`
}

// Draft is a notification before it is stamped with id, time and read state.
type Draft struct {
	Type      Type
	Title     string
	Message   string
	RelatedID string
}

// Validate checks the fields a caller controls.
func (d Draft) Validate() error {
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("notification title is required")
	}
	return nil
}

// Stamp turns the draft into an unread notification.
func (d Draft) Stamp(id string, at time.Time) Notification {
	return Notification{
		ID:        id,
		Type:      d.Type,
		Title:     d.Title,
		Message:   d.Message,
		Read:      false,
		Timestamp: at,
		RelatedID: d.RelatedID,
	}
}

// Inbox is a most-recent-first list of notifications. The unread count is
// always derived from the list.
type Inbox struct {
	items []Notification
}

// NewInbox copies items into a new inbox, keeping their order.
func NewInbox(items []Notification) *Inbox {
	return &Inbox{items: append([]Notification(nil), items...)}
}

// Prepend puts n at the head of the list.
func (in *Inbox) Prepend(n Notification) {
	in.items = append([]Notification{n}, in.items...)
}

// MarkAsRead sets read on the matching entry. It reports whether anything changed.
func (in *Inbox) MarkAsRead(id string) bool {
	for i := range in.items {
		if in.items[i].ID == id {
			if in.items[i].Read {
				return false
			}
			in.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllAsRead reports whether any entry was unread.
func (in *Inbox) MarkAllAsRead() bool {
	changed := false
	for i := range in.items {
		if !in.items[i].Read {
			in.items[i].Read = true
			changed = true
		}
	}
	return changed
}

// Clear removes the entry with id, reporting whether it existed.
func (in *Inbox) Clear(id string) bool {
	for i := range in.items {
		if in.items[i].ID == id {
			in.items = append(in.items[:i:i], in.items[i+1:]...)
			return true
		}
	}
	return false
}

func (in *Inbox) UnreadCount() int {
	n := 0
	for _, item := range in.items {
		if !item.Read {
			n++
		}
	}
	return n
}

func (in *Inbox) Len() int { return len(in.items) }

// Items returns a copy of the list.
func (in *Inbox) Items() []Notification {
	return append([]Notification{}, in.items...)
}

// Snapshot is the client view of an inbox.
type Snapshot struct {
	UnreadCount   int            `json:"unreadCount"`
	Notifications []Notification `json:"notifications"`
}

// Snapshot copies the current state.
func (in *Inbox) Snapshot() Snapshot {
	return Snapshot{UnreadCount: in.UnreadCount(), Notifications: in.Items()}
}

// Encode serialises the whole list as a JSON array.
func (in *Inbox) Encode() ([]byte, error) {
	return json.Marshal(in.Items())
}

// DecodeInbox parses a persisted list. A corrupt blob, or one holding an entry
// without id, known type or title, yields an empty inbox together with the
// error so the caller can report it.
func DecodeInbox(blob []byte) (*Inbox, error) {
	if len(blob) == 0 {
		return NewInbox(nil), nil
	}
	var items []Notification
	if err := json.Unmarshal(blob, &items); err != nil {
		return NewInbox(nil), err
	}
	for i, n := range items {
		if err := n.validate(); err != nil {
			return NewInbox(nil), fmt.Errorf("notification %d: %w", i, err)
		}
	}
	return NewInbox(items), nil
}

func (n Notification) validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("notification id is required")
	}
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(n.Title) == "" {
		return errors.New("notification title is required")
	}
	return nil
}
