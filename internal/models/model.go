package models

import (
	"encoding/json"
	"time"
)

// Media is a single image reference on a listing or profile.
type Media struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Profile represents a marketplace account. Name is the primary key.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Bio     string `json:"bio"`
	Avatar  Media  `json:"avatar"`
	Banner  Media  `json:"banner"`
	Credits int    `json:"credits"`
}

// Session combines the bearer token with the authenticated profile.
// Token and profile are present together or the session counts as
// unauthenticated.
type Session struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// Authenticated reports whether the session holds both a token and a profile.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Profile.Name != ""
}

// Bid is an amount placed against a listing. Bids are append-only; the
// remote service never edits or deletes them.
type Bid struct {
	ID      string    `json:"id"`
	Amount  float64   `json:"amount"`
	Created time.Time `json:"created"`
	Bidder  Profile   `json:"bidder"`

	// Listing is populated only on profile-bid queries that embed the
	// listing the bid was placed on.
	Listing *Listing `json:"listing,omitempty"`
}

// UnmarshalJSON tolerates malformed bid records: a non-numeric amount
// decodes to 0 and an unparseable timestamp decodes to the zero time,
// so one bad bid never fails a whole listing fetch.
func (b *Bid) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string          `json:"id"`
		Amount  json.RawMessage `json:"amount"`
		Created string          `json:"created"`
		Bidder  Profile         `json:"bidder"`
		Listing *Listing        `json:"listing"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.ID = raw.ID
	b.Bidder = raw.Bidder
	b.Listing = raw.Listing
	b.Created = parseTimestamp(raw.Created)

	b.Amount = 0
	if len(raw.Amount) > 0 {
		var amount float64
		if err := json.Unmarshal(raw.Amount, &amount); err == nil {
			b.Amount = amount
		}
	}
	return nil
}

// Listing is an item up for auction, owned by its seller. EndsAt in the
// past marks the listing closed for new bids.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EndsAt      time.Time `json:"endsAt"`
	Created     time.Time `json:"created"`
	Seller      Profile   `json:"seller"`
	Media       []Media   `json:"media"`
	Bids        []Bid     `json:"bids"`
	BidCount    int       `json:"bidCount"`
}

// Ended reports whether the listing is closed for new bids at the given
// instant. The boundary is inclusive: a deadline equal to now counts as
// ended, and a missing deadline is treated as ended too.
func (l Listing) Ended(now time.Time) bool {
	return !l.EndsAt.After(now)
}

// UnmarshalJSON applies the fallback defaults the remote payload shape
// requires: seller, media and bids may be absent depending on query
// flags, and the bid count may arrive nested under "_count" instead of
// as a top-level field.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		EndsAt      string   `json:"endsAt"`
		Created     string   `json:"created"`
		Seller      *Profile `json:"seller"`
		Media       []Media  `json:"media"`
		Bids        []Bid    `json:"bids"`
		Count       struct {
			Bids int `json:"bids"`
		} `json:"_count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.ID = raw.ID
	l.Title = raw.Title
	l.Description = raw.Description
	l.EndsAt = parseTimestamp(raw.EndsAt)
	l.Created = parseTimestamp(raw.Created)

	l.Seller = Profile{}
	if raw.Seller != nil {
		l.Seller = *raw.Seller
	}

	l.Media = raw.Media
	if l.Media == nil {
		l.Media = []Media{}
	}

	l.Bids = raw.Bids
	if l.Bids == nil {
		l.Bids = []Bid{}
	}

	l.BidCount = raw.Count.Bids
	if l.BidCount == 0 {
		l.BidCount = len(l.Bids)
	}
	return nil
}

// parseTimestamp decodes an RFC 3339 timestamp, returning the zero time
// for an absent or malformed value.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
