package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/memory"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoption/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/validation"
)

const validMessage = "We have a fenced yard and work from home."

type stubDirectory map[string]ports.PetSummary

func (d stubDirectory) Lookup(_ context.Context, petID string) (ports.PetSummary, error) {
	pet, ok := d[petID]
	if !ok {
		return ports.PetSummary{}, ports.ErrPetNotFound
	}
	return pet, nil
}

func newFixture(opts ...Option) (*Service, *adoptionmemory.Repository) {
	repo := adoptionmemory.NewRepository(nil)
	pets := stubDirectory{
		"pet-1": {ID: "pet-1", OwnerID: "owner-1", Name: "Rex"},
		"pet-2": {ID: "pet-2", OwnerID: "owner-1", Name: "Mittens"},
	}
	n := 0
	var mu sync.Mutex
	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("req-%d", n)
	}
	opts = append([]Option{WithIDGenerator(ids)}, opts...)
	return NewService(repo, pets, opts...), repo
}

func submit(petID, requester, message string) adoptiontypes.SubmitInput {
	return adoptiontypes.SubmitInput{
		PetID:        petID,
		RequesterID:  requester,
		ContactEmail: requester + "@example.com",
		Message:      message,
	}
}

func TestSubmitRequest_Success(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newFixture(WithClock(func() time.Time { return at }))

	req, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
	require.NoError(t, err)
	require.Equal(t, "req-1", req.ID)
	require.Equal(t, domain.StatusPending, req.Status)
	require.Equal(t, "owner-1", req.OwnerID)
	require.Equal(t, at, req.CreatedAt)
}

func TestSubmitRequest_RequiresRequester(t *testing.T) {
	svc, _ := newFixture()
	_, err := svc.SubmitRequest(context.Background(), submit("pet-1", "", validMessage))
	require.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestSubmitRequest_ShortMessageInsertsNothing(t *testing.T) {
	svc, repo := newFixture()

	_, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", strings.Repeat("a", 19)))
	require.ErrorIs(t, err, ErrValidation)
	fields, ok := validation.Fields(err)
	require.True(t, ok)
	require.Contains(t, fields, "message")

	list, err := repo.ListByPet(context.Background(), "pet-1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestSubmitRequest_MessageLengthCountsCharacters(t *testing.T) {
	svc, _ := newFixture()
	_, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", strings.Repeat("ü", 20)))
	require.NoError(t, err)
}

func TestSubmitRequest_OverlongMessageIsRejected(t *testing.T) {
	svc, repo := newFixture()

	_, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", strings.Repeat("ü", 4001)))
	require.ErrorIs(t, err, ErrValidation)
	fields, ok := validation.Fields(err)
	require.True(t, ok)
	require.Equal(t, "must be at most 4000 characters", fields["message"])
	list, err := repo.ListByPet(context.Background(), "pet-1")
	require.NoError(t, err)
	require.Empty(t, list)

	req, err := svc.SubmitRequest(context.Background(), submit("pet-1", "bob", strings.Repeat("ü", 4000)))
	require.NoError(t, err)
	require.Len(t, []rune(req.Message), 4000)
}

func TestSubmitRequest_EncodedMarkupIsNotStored(t *testing.T) {
	svc, _ := newFixture()
	req, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice",
		"&lt;script&gt;alert(1)&lt;/script&gt; I would love to adopt"))
	require.NoError(t, err)
	require.Equal(t, "I would love to adopt", req.Message)
}

func TestSubmitRequest_MarkupDoesNotCountTowardsLength(t *testing.T) {
	svc, _ := newFixture()
	_, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", "<b><i>short</i></b><script>x</script>"))
	require.ErrorIs(t, err, ErrValidation)

	req, err := svc.SubmitRequest(context.Background(), submit("pet-1", "bob", "<p>"+validMessage+"</p>"))
	require.NoError(t, err)
	require.Equal(t, validMessage, req.Message)
}

func TestSubmitRequest_InvalidEmail(t *testing.T) {
	svc, _ := newFixture()
	input := submit("pet-1", "alice", validMessage)
	input.ContactEmail = "not-an-email"

	_, err := svc.SubmitRequest(context.Background(), input)
	require.ErrorIs(t, err, ErrValidation)
	fields, ok := validation.Fields(err)
	require.True(t, ok)
	require.Contains(t, fields, "contactEmail")
}

func TestSubmitRequest_UnknownPet(t *testing.T) {
	svc, _ := newFixture()
	_, err := svc.SubmitRequest(context.Background(), submit("pet-404", "alice", validMessage))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitRequest_SelfAdoptionRegardlessOfMessage(t *testing.T) {
	svc, _ := newFixture()
	for _, message := range []string{"", "short", validMessage} {
		_, err := svc.SubmitRequest(context.Background(), submit("pet-1", "owner-1", message))
		require.ErrorIs(t, err, ErrSelfAdoption, "message %q", message)
	}
}

func TestSubmitRequest_SecondSubmissionIsDuplicate(t *testing.T) {
	svc, _ := newFixture()
	_, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
	require.NoError(t, err)

	_, err = svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
	require.ErrorIs(t, err, ErrDuplicateRequest)

	// other pets are unaffected
	_, err = svc.SubmitRequest(context.Background(), submit("pet-2", "alice", validMessage))
	require.NoError(t, err)
}

type racingRepository struct {
	ports.Repository
	ready *sync.WaitGroup
}

// FindByPetAndRequester holds every caller until all have passed the pre-check.
func (r racingRepository) FindByPetAndRequester(ctx context.Context, petID, requesterID string) (*domain.Request, error) {
	r.ready.Done()
	r.ready.Wait()
	return r.Repository.FindByPetAndRequester(ctx, petID, requesterID)
}

func TestSubmitRequest_ConcurrentDuplicatesInsertOnce(t *testing.T) {
	const callers = 2
	inner := adoptionmemory.NewRepository(nil)
	ready := &sync.WaitGroup{}
	ready.Add(callers)
	var idMu sync.Mutex
	n := 0
	svc := NewService(racingRepository{Repository: inner, ready: ready},
		stubDirectory{"pet-1": {ID: "pet-1", OwnerID: "owner-1", Name: "Rex"}},
		WithIDGenerator(func() string {
			idMu.Lock()
			defer idMu.Unlock()
			n++
			return fmt.Sprintf("req-%d", n)
		}),
	)

	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrDuplicateRequest)
		require.ErrorIs(t, err, ports.ErrDuplicate, "rejected by the store, not the pre-check")
	}
	require.Equal(t, 1, succeeded)

	list, err := inner.ListByPet(context.Background(), "pet-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestSetRequestStatus_OwnerDecides(t *testing.T) {
	svc, _ := newFixture()
	req, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
	require.NoError(t, err)

	updated, err := svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{
		RequestID: req.ID, Status: "approved", ActingUserID: "owner-1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, updated.Status)
}

func TestSetRequestStatus_DecidedRequestsAreTerminal(t *testing.T) {
	for _, first := range []string{"approved", "rejected"} {
		for _, second := range []string{"approved", "rejected"} {
			t.Run(first+"_then_"+second, func(t *testing.T) {
				svc, repo := newFixture()
				req, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
				require.NoError(t, err)
				_, err = svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: req.ID, Status: first, ActingUserID: "owner-1"})
				require.NoError(t, err)

				_, err = svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: req.ID, Status: second, ActingUserID: "owner-1"})
				require.ErrorIs(t, err, ErrInvalidTransition)

				stored, err := repo.GetByID(context.Background(), req.ID)
				require.NoError(t, err)
				require.Equal(t, domain.Status(first), stored.Status)
			})
		}
	}
}

func TestSetRequestStatus_NonOwnerIsUnauthorized(t *testing.T) {
	svc, repo := newFixture()
	req, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
	require.NoError(t, err)

	for _, actor := range []string{"alice", "mallory"} {
		_, err = svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: req.ID, Status: "approved", ActingUserID: actor})
		require.ErrorIs(t, err, ErrUnauthorized)
	}
	stored, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status)
}

func TestSetRequestStatus_InputErrors(t *testing.T) {
	svc, _ := newFixture()
	req, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
	require.NoError(t, err)

	_, err = svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: req.ID, Status: "approved"})
	require.ErrorIs(t, err, identity.ErrUnauthenticated)

	_, err = svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: req.ID, Status: "pending", ActingUserID: "owner-1"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: "req-404", Status: "approved", ActingUserID: "owner-1"})
	require.ErrorIs(t, err, ErrNotFound)
}

func submitAll(t *testing.T, svc *Service, requesters ...string) []*domain.Request {
	t.Helper()
	list := make([]*domain.Request, 0, len(requesters))
	for _, requester := range requesters {
		req, err := svc.SubmitRequest(context.Background(), submit("pet-1", requester, validMessage))
		require.NoError(t, err)
		list = append(list, req)
	}
	return list
}

func statusOf(t *testing.T, repo ports.Repository, id string) domain.Status {
	t.Helper()
	req, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return req.Status
}

func TestApprovalPolicy_KeepPending(t *testing.T) {
	svc, repo := newFixture()
	reqs := submitAll(t, svc, "alice", "bob", "carol")

	for _, req := range reqs[:2] {
		_, err := svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: req.ID, Status: "approved", ActingUserID: "owner-1"})
		require.NoError(t, err)
	}
	require.Equal(t, domain.StatusApproved, statusOf(t, repo, reqs[0].ID))
	require.Equal(t, domain.StatusApproved, statusOf(t, repo, reqs[1].ID))
	require.Equal(t, domain.StatusPending, statusOf(t, repo, reqs[2].ID))
}

func TestApprovalPolicy_RejectOthers(t *testing.T) {
	svc, repo := newFixture(WithApprovalPolicy(domain.PolicyRejectOthers))
	reqs := submitAll(t, svc, "alice", "bob", "carol")

	_, err := svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: reqs[1].ID, Status: "approved", ActingUserID: "owner-1"})
	require.NoError(t, err)

	require.Equal(t, domain.StatusRejected, statusOf(t, repo, reqs[0].ID))
	require.Equal(t, domain.StatusApproved, statusOf(t, repo, reqs[1].ID))
	require.Equal(t, domain.StatusRejected, statusOf(t, repo, reqs[2].ID))
}

func TestApprovalPolicy_Exclusive(t *testing.T) {
	svc, repo := newFixture(WithApprovalPolicy(domain.PolicyExclusive))
	reqs := submitAll(t, svc, "alice", "bob")

	_, err := svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: reqs[0].ID, Status: "approved", ActingUserID: "owner-1"})
	require.NoError(t, err)

	_, err = svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: reqs[1].ID, Status: "approved", ActingUserID: "owner-1"})
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, domain.StatusPending, statusOf(t, repo, reqs[1].ID))

	// rejecting stays possible
	_, err = svc.SetRequestStatus(context.Background(), adoptiontypes.StatusInput{RequestID: reqs[1].ID, Status: "rejected", ActingUserID: "owner-1"})
	require.NoError(t, err)
}

func TestGetRequest_VisibleToPartiesOnly(t *testing.T) {
	svc, _ := newFixture()
	req, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
	require.NoError(t, err)

	for _, user := range []string{"alice", "owner-1"} {
		got, err := svc.GetRequest(context.Background(), adoptiontypes.RequestIdentifier{ID: req.ID, ActingUserID: user})
		require.NoError(t, err)
		require.Equal(t, req.ID, got.ID)
	}
	_, err = svc.GetRequest(context.Background(), adoptiontypes.RequestIdentifier{ID: req.ID, ActingUserID: "mallory"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListReceivedAndSent(t *testing.T) {
	svc, _ := newFixture()
	submitAll(t, svc, "alice", "bob")

	received, err := svc.ListReceived(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, received, 2)

	sent, err := svc.ListSent(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, sent, 1)

	_, err = svc.ListSent(context.Background(), "")
	require.ErrorIs(t, err, identity.ErrUnauthenticated)
}

type failingRepository struct {
	ports.Repository
}

func (failingRepository) FindByPetAndRequester(context.Context, string, string) (*domain.Request, error) {
	return nil, fmt.Errorf("%w: dial tcp: connection refused", ports.ErrUnavailable)
}

func TestSubmitRequest_StoreUnavailable(t *testing.T) {
	svc := NewService(failingRepository{Repository: adoptionmemory.NewRepository(nil)},
		stubDirectory{"pet-1": {ID: "pet-1", OwnerID: "owner-1"}})
	_, err := svc.SubmitRequest(context.Background(), submit("pet-1", "alice", validMessage))
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.False(t, errors.Is(err, ErrDuplicateRequest))
}
