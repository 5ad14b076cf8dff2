package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/sanitize"
)

// DefaultLookupTimeout bounds each enrichment lookup.
const DefaultLookupTimeout = 5 * time.Second

const placeholder = "Not provided"

// errSkip marks an intent that cannot be rendered and should be dropped.
var errSkip = errors.New("notification skipped")

// Renderer turns intents into drafts, enriching them with pet and owner data.
type Renderer struct {
	lookups ports.Lookups
	timeout time.Duration
}

func NewRenderer(lookups ports.Lookups, timeout time.Duration) *Renderer {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Renderer{lookups: lookups, timeout: timeout}
}

// Render returns the draft for intent. degraded reports a failed owner lookup
// that was replaced by placeholders. err wraps errSkip when the pet is gone;
// any other err is worth retrying.
func (r *Renderer) Render(ctx context.Context, intent Intent) (draft domain.Draft, degraded error, err error) {
	petName, err := r.petName(ctx, intent.PetID)
	if err != nil {
		return domain.Draft{}, nil, err
	}

	switch intent.Kind {
	case IntentApproved:
		contact, lookupErr := r.ownerContact(ctx, intent.OwnerID)
		if lookupErr != nil {
			degraded = fmt.Errorf("owner %s: %w", intent.OwnerID, lookupErr)
		}
		return domain.Draft{
			Type:  domain.TypeAdoptionApproved,
			Title: "Adoption Request Approved!",
			Message: fmt.Sprintf("Your request to adopt %s has been approved! Contact the owner: %s, email: %s, phone: %s.",
				petName, orPlaceholder(contact.Name), orPlaceholder(contact.Email), orPlaceholder(contact.Phone)),
			RelatedID: intent.RequestID,
		}, degraded, nil
	case IntentRejected:
		return domain.Draft{
			Type:      domain.TypeAdoptionRejected,
			Title:     "Adoption Request Rejected",
			Message:   fmt.Sprintf("Your request to adopt %s has been rejected.", petName),
			RelatedID: intent.RequestID,
		}, nil, nil
	case IntentRequestReceived:
		return domain.Draft{
			Type:      domain.TypeAdoptionRequest,
			Title:     "New Adoption Request",
			Message:   fmt.Sprintf("Someone wants to adopt %s. Review the request in My Pets.", petName),
			RelatedID: intent.RequestID,
		}, nil, nil
	default:
		return domain.Draft{}, nil, fmt.Errorf("%w: unknown intent %q", errSkip, intent.Kind)
	}
}

func (r *Renderer) petName(ctx context.Context, petID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	name, err := r.lookups.PetName(ctx, petID)
	if errors.Is(err, ports.ErrPetGone) {
		return "", fmt.Errorf("%w: pet %s: %w", errSkip, petID, err)
	}
	if err != nil {
		return "", fmt.Errorf("pet %s: %w", petID, err)
	}
	return orPlaceholder(sanitize.Text(name)), nil
}

func (r *Renderer) ownerContact(ctx context.Context, ownerID string) (ports.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	contact, err := r.lookups.OwnerContact(ctx, ownerID)
	if err != nil {
		return ports.Contact{}, err
	}
	return ports.Contact{
		Name:  sanitize.Text(contact.Name),
		Email: sanitize.Text(contact.Email),
		Phone: sanitize.Text(contact.Phone),
	}, nil
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}
