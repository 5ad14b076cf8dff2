package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
)

func TestDecodeChange_Update(t *testing.T) {
	payload := `{"op":"update",
		"old":{"id":"r1","pet_id":"p1","requester_id":"alice","owner_id":"bob","status":"pending","created_at":"2024-06-01T12:00:00+00:00","updated_at":"2024-06-01T12:00:00+00:00"},
		"new":{"id":"r1","pet_id":"p1","requester_id":"alice","owner_id":"bob","status":"approved","created_at":"2024-06-01T12:00:00+00:00","updated_at":"2024-06-01T13:30:00.123456+00:00"}}`

	ev, err := DecodeChange([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, changefeed.KindUpdate, ev.Kind)
	require.Equal(t, domain.StatusPending, ev.Old.Status)
	require.Equal(t, domain.StatusApproved, ev.New.Status)
	require.Equal(t, "alice", ev.New.RequesterID)
	require.Equal(t, 13, ev.At.Hour())
}

func TestDecodeChange_Insert(t *testing.T) {
	payload := `{"op":"insert","old":null,
		"new":{"id":"r1","pet_id":"p1","requester_id":"alice","owner_id":"bob","status":"pending","created_at":"2024-06-01T12:00:00+00:00","updated_at":"2024-06-01T12:00:00+00:00"}}`

	ev, err := DecodeChange([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, changefeed.KindInsert, ev.Kind)
	require.Nil(t, ev.Old)
	require.Equal(t, "bob", ev.New.OwnerID)
}

func TestDecodeChange_RejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"op":`,
		"unknown op":     `{"op":"truncate"}`,
		"missing owner":  `{"op":"insert","new":{"id":"r1","pet_id":"p1","requester_id":"alice","status":"pending"}}`,
		"unknown status": `{"op":"insert","new":{"id":"r1","pet_id":"p1","requester_id":"alice","owner_id":"bob","status":"cancelled"}}`,
		"update no old":  `{"op":"update","new":{"id":"r1","pet_id":"p1","requester_id":"alice","owner_id":"bob","status":"approved"}}`,
		"delete no old":  `{"op":"delete"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeChange([]byte(payload))
			require.Error(t, err)
		})
	}
}
