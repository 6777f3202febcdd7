package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Test listing decode fallbacks
func TestListing_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  string
		validate func(t *testing.T, l Listing)
	}{
		{
			name:    "full_listing",
			payload: `{"id":"l1","title":"Vase","description":"Old vase","endsAt":"2030-01-02T15:00:00Z","created":"2025-01-02T15:00:00Z","seller":{"name":"anna"},"media":[{"url":"https://img/1.jpg","alt":"vase"}],"bids":[{"id":"b1","amount":10},{"id":"b2","amount":25}]}`,
			validate: func(t *testing.T, l Listing) {
				require.Equal(t, "l1", l.ID)
				require.Equal(t, "anna", l.Seller.Name)
				require.Len(t, l.Media, 1)
				require.Len(t, l.Bids, 2)
				require.Equal(t, 2, l.BidCount)
				require.Equal(t, 2030, l.EndsAt.Year())
			},
		},
		{
			name:    "missing_optional_fields",
			payload: `{"id":"l2","title":"Chair"}`,
			validate: func(t *testing.T, l Listing) {
				require.NotNil(t, l.Media)
				require.Empty(t, l.Media)
				require.NotNil(t, l.Bids)
				require.Empty(t, l.Bids)
				require.Equal(t, 0, l.BidCount)
				require.True(t, l.EndsAt.IsZero())
				require.Equal(t, "", l.Seller.Name)
			},
		},
		{
			name:    "bid_count_from_nested_count",
			payload: `{"id":"l3","title":"Lamp","_count":{"bids":7}}`,
			validate: func(t *testing.T, l Listing) {
				require.Equal(t, 7, l.BidCount)
				require.Empty(t, l.Bids)
			},
		},
		{
			name:    "malformed_endsAt",
			payload: `{"id":"l4","title":"Desk","endsAt":"tomorrow-ish"}`,
			validate: func(t *testing.T, l Listing) {
				require.True(t, l.EndsAt.IsZero())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var l Listing
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &l))
			tc.validate(t, l)
		})
	}
}

// Test bid decode tolerance
func TestBid_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    string
		wantAmount float64
	}{
		{name: "numeric_amount", payload: `{"id":"b1","amount":42.5}`, wantAmount: 42.5},
		{name: "string_amount", payload: `{"id":"b2","amount":"high"}`, wantAmount: 0},
		{name: "null_amount", payload: `{"id":"b3","amount":null}`, wantAmount: 0},
		{name: "missing_amount", payload: `{"id":"b4"}`, wantAmount: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b Bid
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &b))
			require.Equal(t, tc.wantAmount, b.Amount)
		})
	}
}

func TestListing_Ended(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		endsAt time.Time
		want   bool
	}{
		{name: "past", endsAt: now.Add(-time.Hour), want: true},
		{name: "exactly_now", endsAt: now, want: true},
		{name: "future", endsAt: now.Add(time.Minute), want: false},
		{name: "absent", endsAt: time.Time{}, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := Listing{EndsAt: tc.endsAt}
			require.Equal(t, tc.want, l.Ended(now))
		})
	}
}

func TestSession_Authenticated(t *testing.T) {
	t.Parallel()

	require.False(t, Session{}.Authenticated())
	require.False(t, Session{Token: "t"}.Authenticated())
	require.False(t, Session{Profile: Profile{Name: "anna"}}.Authenticated())
	require.True(t, Session{Token: "t", Profile: Profile{Name: "anna"}}.Authenticated())
}
