package application

import (
	adoption "github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
)

// IntentKind names the notification an event calls for.
type IntentKind string

const (
	IntentApproved        IntentKind = "approved"
	IntentRejected        IntentKind = "rejected"
	IntentRequestReceived IntentKind = "request_received"
)

// Intent is a notification to synthesise for RecipientID, before any lookups.
type Intent struct {
	Kind        IntentKind
	RecipientID string
	RequestID   string
	PetID       string
	OwnerID     string
}

// RequesterFilter selects update events on requests submitted by userID.
func RequesterFilter(userID string) changefeed.Filter[adoption.Request] {
	return func(ev changefeed.Event[adoption.Request]) bool {
		return ev.New != nil && ev.New.RequesterID == userID
	}
}

// OwnerFilter selects insert events on requests for pets owned by userID.
func OwnerFilter(userID string) changefeed.Filter[adoption.Request] {
	return func(ev changefeed.Event[adoption.Request]) bool {
		return ev.New != nil && ev.New.OwnerID == userID
	}
}

// PlanStatusChange yields one intent when a request by userID moves from
// pending to a decision. Every other update yields nothing.
func PlanStatusChange(userID string, ev changefeed.Event[adoption.Request]) []Intent {
	if ev.Kind != changefeed.KindUpdate || ev.New == nil || ev.New.RequesterID != userID {
		return nil
	}
	if !adoption.StatusChange(ev.Old, ev.New) {
		return nil
	}
	kind := IntentRejected
	if ev.New.Status == adoption.StatusApproved {
		kind = IntentApproved
	}
	return []Intent{{
		Kind:        kind,
		RecipientID: userID,
		RequestID:   ev.New.ID,
		PetID:       ev.New.PetID,
		OwnerID:     ev.New.OwnerID,
	}}
}

// PlanNewRequest yields one intent when a request is inserted for a pet owned by userID.
func PlanNewRequest(userID string, ev changefeed.Event[adoption.Request]) []Intent {
	if ev.Kind != changefeed.KindInsert || ev.New == nil || ev.New.OwnerID != userID {
		return nil
	}
	return []Intent{{
		Kind:        IntentRequestReceived,
		RecipientID: userID,
		RequestID:   ev.New.ID,
		PetID:       ev.New.PetID,
		OwnerID:     ev.New.OwnerID,
	}}
}
