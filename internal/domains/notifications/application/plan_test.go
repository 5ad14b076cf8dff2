package application

import (
	"testing"

	"github.com/stretchr/testify/require"

	adoption "github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
)

func request(status adoption.Status) *adoption.Request {
	return &adoption.Request{ID: "req-1", PetID: "pet-1", RequesterID: "alice", OwnerID: "olga", Status: status}
}

func update(from, to adoption.Status) changefeed.Event[adoption.Request] {
	return changefeed.Event[adoption.Request]{Kind: changefeed.KindUpdate, Old: request(from), New: request(to)}
}

func TestPlanStatusChange(t *testing.T) {
	cases := []struct {
		name string
		user string
		ev   changefeed.Event[adoption.Request]
		want []Intent
	}{
		{
			name: "approved",
			user: "alice",
			ev:   update(adoption.StatusPending, adoption.StatusApproved),
			want: []Intent{{Kind: IntentApproved, RecipientID: "alice", RequestID: "req-1", PetID: "pet-1", OwnerID: "olga"}},
		},
		{
			name: "rejected",
			user: "alice",
			ev:   update(adoption.StatusPending, adoption.StatusRejected),
			want: []Intent{{Kind: IntentRejected, RecipientID: "alice", RequestID: "req-1", PetID: "pet-1", OwnerID: "olga"}},
		},
		{name: "other requester", user: "bob", ev: update(adoption.StatusPending, adoption.StatusApproved)},
		{name: "not from pending", user: "alice", ev: update(adoption.StatusApproved, adoption.StatusRejected)},
		{name: "no status change", user: "alice", ev: update(adoption.StatusPending, adoption.StatusPending)},
		{name: "insert", user: "alice", ev: changefeed.Event[adoption.Request]{Kind: changefeed.KindInsert, New: request(adoption.StatusPending)}},
		{name: "missing old image", user: "alice", ev: changefeed.Event[adoption.Request]{Kind: changefeed.KindUpdate, New: request(adoption.StatusApproved)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, PlanStatusChange(tc.user, tc.ev))
		})
	}
}

func TestPlanNewRequest(t *testing.T) {
	insert := changefeed.Event[adoption.Request]{Kind: changefeed.KindInsert, New: request(adoption.StatusPending)}

	require.Equal(t,
		[]Intent{{Kind: IntentRequestReceived, RecipientID: "olga", RequestID: "req-1", PetID: "pet-1", OwnerID: "olga"}},
		PlanNewRequest("olga", insert))
	require.Empty(t, PlanNewRequest("alice", insert))
	require.Empty(t, PlanNewRequest("olga", update(adoption.StatusPending, adoption.StatusApproved)))
}

func TestFilters(t *testing.T) {
	ev := update(adoption.StatusPending, adoption.StatusApproved)
	require.True(t, RequesterFilter("alice")(ev))
	require.False(t, RequesterFilter("olga")(ev))
	require.True(t, OwnerFilter("olga")(ev))
	require.False(t, OwnerFilter("alice")(changefeed.Event[adoption.Request]{Kind: changefeed.KindDelete, Old: request(adoption.StatusPending)}))
}
