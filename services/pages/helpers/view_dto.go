package helpers

import (
	"strings"
	"time"

	"auction-house/internal/models"
	"auction-house/internal/viewmodel"
)

// Form DTOs bound from the page surfaces

type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type RegisterForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Bio      string `form:"bio"`
	Avatar   string `form:"avatar"`
}

// BidForm carries the amount and the highest bid the page was rendered
// with, so the optimistic guard runs against what the bidder saw.
type BidForm struct {
	Amount       float64 `form:"amount"`
	KnownHighest float64 `form:"known_highest"`
}

type ListingForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Media       string `form:"media"`
	EndDate     string `form:"end_date"`
	EndTime     string `form:"end_time"`
}

// MediaURLs splits the one-per-line media textarea into URLs.
func (f ListingForm) MediaURLs() []string {
	var urls []string
	for _, line := range strings.Split(f.Media, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

type ProfileForm struct {
	Bio    string `form:"bio"`
	Avatar string `form:"avatar"`
	Banner string `form:"banner"`
}

// View DTOs handed to the templates

// ListingCard is one tile in a listing grid.
type ListingCard struct {
	ID         string
	Title      string
	ImageURL   string
	TimeLeft   string
	HighestBid float64
	BidCount   int
}

// BidRow is one entry in a bid history panel. Bidder is set on listing
// pages; ListingTitle is set on profile pages, where the bids belong to
// the profile being viewed.
type BidRow struct {
	Bidder       string
	ListingTitle string
	Amount       float64
	Placed       string
}

// ListingDetail is the full listing page payload.
type ListingDetail struct {
	ID          string
	Title       string
	Description string
	SellerName  string
	ImageURL    string
	Images      []models.Media
	TimeLeft    string
	CreatedDate string
	HighestBid  float64
	BidCount    int
	Ended       bool
	CanEdit     bool
	History     []BidRow
}

// ProfileView is the profile page header panel.
type ProfileView struct {
	Name      string
	Bio       string
	AvatarURL string
	BannerURL string
	Credits   int
}

// BuildListingCard derives a grid tile from a listing record.
func BuildListingCard(l models.Listing, now time.Time) ListingCard {
	return ListingCard{
		ID:         l.ID,
		Title:      l.Title,
		ImageURL:   viewmodel.ListingImage(l),
		TimeLeft:   viewmodel.TimeRemaining(l.EndsAt, now),
		HighestBid: viewmodel.HighestBid(l),
		BidCount:   l.BidCount,
	}
}

// BuildListingCards maps a listing slice onto grid tiles.
func BuildListingCards(listings []models.Listing, now time.Time) []ListingCard {
	cards := make([]ListingCard, 0, len(listings))
	for _, l := range listings {
		cards = append(cards, BuildListingCard(l, now))
	}
	return cards
}

// BuildListingDetail derives the listing page payload, including the
// bid history ordered newest first.
func BuildListingDetail(l models.Listing, now time.Time, canEdit bool) ListingDetail {
	history := make([]BidRow, 0, len(l.Bids))
	for _, b := range viewmodel.SortBidsDescending(l.Bids) {
		history = append(history, BidRow{
			Bidder: b.Bidder.Name,
			Amount: b.Amount,
			Placed: viewmodel.FormatDate(b.Created),
		})
	}

	return ListingDetail{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		SellerName:  l.Seller.Name,
		ImageURL:    viewmodel.ListingImage(l),
		Images:      l.Media,
		TimeLeft:    viewmodel.TimeRemaining(l.EndsAt, now),
		CreatedDate: viewmodel.FormatDate(l.Created),
		HighestBid:  viewmodel.HighestBid(l),
		BidCount:    l.BidCount,
		Ended:       l.Ended(now),
		CanEdit:     canEdit,
		History:     history,
	}
}

// BuildProfileView derives the profile header panel.
func BuildProfileView(p models.Profile) ProfileView {
	return ProfileView{
		Name:      p.Name,
		Bio:       p.Bio,
		AvatarURL: viewmodel.AvatarImage(p),
		BannerURL: p.Banner.URL,
		Credits:   p.Credits,
	}
}
