package viewmodel

import (
	"fmt"
	"sort"
	"time"

	"auction-house/internal/models"
)

// PlaceholderImage is shown for listings without media.
const PlaceholderImage = "/static/placeholder.png"

// PlaceholderAvatar is shown for profiles without an avatar.
const PlaceholderAvatar = "/static/avatar.png"

// HighestBid returns the maximum bid amount on the listing, or 0 when
// the listing has no bids. Malformed bids decode with amount 0 and so
// never win.
func HighestBid(l models.Listing) float64 {
	var highest float64
	for _, b := range l.Bids {
		if b.Amount > highest {
			highest = b.Amount
		}
	}
	return highest
}

// TimeRemaining renders the time left until endsAt relative to now as
// an approximate string in the largest applicable unit. A deadline in
// the past, equal to now, or absent renders as "Ended".
func TimeRemaining(endsAt, now time.Time) string {
	if !endsAt.After(now) {
		return "Ended"
	}

	left := endsAt.Sub(now)
	switch {
	case left >= 24*time.Hour:
		return unitString(int(left.Hours())/24, "day")
	case left >= time.Hour:
		return unitString(int(left.Hours()), "hour")
	default:
		minutes := int(left.Minutes())
		if minutes < 1 {
			minutes = 1
		}
		return unitString(minutes, "minute")
	}
}

func unitString(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("in about 1 %s", unit)
	}
	return fmt.Sprintf("in about %d %ss", n, unit)
}

// ListingImage returns the first media URL, or the placeholder when the
// listing has no usable media.
func ListingImage(l models.Listing) string {
	for _, m := range l.Media {
		if m.URL != "" {
			return m.URL
		}
	}
	return PlaceholderImage
}

// AvatarImage returns the profile avatar URL or the placeholder.
func AvatarImage(p models.Profile) string {
	if p.Avatar.URL != "" {
		return p.Avatar.URL
	}
	return PlaceholderAvatar
}

// FormatDate renders a timestamp as a short human date, or "unknown"
// for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("Jan 2, 2006")
}

// SortBidsDescending returns a copy of the bid history ordered by
// creation time, newest first. The sort is stable: ties and bids with
// missing timestamps keep their response order.
func SortBidsDescending(bids []models.Bid) []models.Bid {
	sorted := append([]models.Bid(nil), bids...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created.After(sorted[j].Created)
	})
	return sorted
}
