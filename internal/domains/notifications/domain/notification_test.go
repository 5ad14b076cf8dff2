package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func stamped(id string, read bool) Notification {
	n := Draft{Type: TypeMessage, Title: "Hello", Message: id}.Stamp(id, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	n.Read = read
	return n
}

func TestInbox_PrependKeepsMostRecentFirst(t *testing.T) {
	in := NewInbox(nil)
	in.Prepend(stamped("a", false))
	in.Prepend(stamped("b", false))

	items := in.Items()
	require.Equal(t, "b", items[0].ID)
	require.Equal(t, "a", items[1].ID)
	require.Equal(t, 2, in.UnreadCount())
}

func TestInbox_MarkAsReadIsIdempotent(t *testing.T) {
	in := NewInbox([]Notification{stamped("a", false), stamped("b", false)})

	require.True(t, in.MarkAsRead("a"))
	require.False(t, in.MarkAsRead("a"))
	require.False(t, in.MarkAsRead("missing"))

	require.Equal(t, 2, in.Len())
	require.True(t, in.Items()[0].Read)
	require.Equal(t, 1, in.UnreadCount())
}

func TestInbox_MarkAllAsRead(t *testing.T) {
	in := NewInbox([]Notification{stamped("a", false), stamped("b", true), stamped("c", false)})
	require.True(t, in.MarkAllAsRead())
	require.Zero(t, in.UnreadCount())
	require.False(t, in.MarkAllAsRead())
}

func TestInbox_Clear(t *testing.T) {
	in := NewInbox([]Notification{stamped("a", false), stamped("b", false), stamped("c", true)})
	require.True(t, in.Clear("b"))
	require.False(t, in.Clear("b"))

	items := in.Items()
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].ID)
	require.Equal(t, "c", items[1].ID)
	require.Equal(t, 1, in.UnreadCount())
}

func TestInbox_ItemsIsACopy(t *testing.T) {
	in := NewInbox([]Notification{stamped("a", false)})
	items := in.Items()
	items[0].Read = true
	require.Equal(t, 1, in.UnreadCount())
}

func TestInbox_EncodeDecodeRoundTrip(t *testing.T) {
	in := NewInbox([]Notification{stamped("a", false), stamped("b", true)})
	in.items[0].RelatedID = "req-1"

	blob, err := in.Encode()
	require.NoError(t, err)
	decoded, err := DecodeInbox(blob)
	require.NoError(t, err)
	require.Equal(t, in.Items(), decoded.Items())
}

func TestDecodeInbox_CorruptBlobIsEmpty(t *testing.T) {
	for _, blob := range []string{
		"{not json",
		`{"id":"a"}`,
		`[{"id":1}]`,
		`[{},{"type":"bogus","read":false}]`,
		`[{"id":"a","type":"message","title":"Hi"},{"id":"","type":"message","title":"Hi"}]`,
		`[{"id":"a","type":"alert","title":"Hi"}]`,
		`[{"id":"a","type":"message","title":"  "}]`,
	} {
		in, err := DecodeInbox([]byte(blob))
		require.Error(t, err, blob)
		require.NotNil(t, in)
		require.Zero(t, in.Len())
	}

	in, err := DecodeInbox(nil)
	require.NoError(t, err)
	require.Zero(t, in.Len())
}

func TestDraft_Validate(t *testing.T) {
	require.NoError(t, Draft{Type: TypeMessage, Title: "Hi"}.Validate())
	require.ErrorIs(t, Draft{Type: "alert", Title: "Hi"}.Validate(), ErrInvalidType)
	require.Error(t, Draft{Type: TypeMessage}.Validate())
}
