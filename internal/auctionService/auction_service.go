package auction

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/apierrors"
	"auction-house/internal/authstore"
	"auction-house/internal/gateway"
	"auction-house/internal/models"
	"auction-house/utils"

	"golang.org/x/sync/errgroup"
)

// Service implements the mutation and re-sync rules of the front end.
// The remote service stays the sole source of truth for aggregate
// fields: after every accepted mutation the affected records are
// re-fetched in full, never patched locally.
type Service struct {
	api   gateway.AuctionAPI
	store *authstore.Store
}

// NewService creates a Service over the gateway and the auth store.
func NewService(api gateway.AuctionAPI, store *authstore.Store) *Service {
	return &Service{api: api, store: store}
}

// RegisterInput is the new-account form.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Bio       string
	AvatarURL string
}

// ListingInput is the create/edit listing form after end-time assembly.
type ListingInput struct {
	Title       string
	Description string
	MediaURLs   []string
	EndsAt      time.Time
}

// ProfileInput is the edit-profile form. Bio is always submitted;
// avatar and banner are submitted only when a non-empty URL was given.
type ProfileInput struct {
	Bio       string
	AvatarURL string
	BannerURL string
}

// Overview is the joined profile-page payload.
type Overview struct {
	Profile  models.Profile
	Listings []models.Listing
	Bids     []models.Bid
	Wins     []models.Listing
}

// Login authenticates against the remote service and persists the
// resulting session, which raises the auth-changed signal.
func (s *Service) Login(ctx context.Context, email, password string) (models.Session, error) {
	if email == "" || password == "" {
		return models.Session{}, apierrors.Validationf("email and password are required")
	}

	session, err := s.api.Login(ctx, email, password)
	if err != nil {
		return models.Session{}, fmt.Errorf("service: login: %w", err)
	}

	if err := s.store.Save(session); err != nil {
		return models.Session{}, fmt.Errorf("service: persist session: %w", err)
	}

	utils.Info("logged in", map[string]any{"profile": session.Profile.Name})
	return session, nil
}

// Register creates the account and immediately logs it in; the session
// only exists after the follow-up login succeeds.
func (s *Service) Register(ctx context.Context, input RegisterInput) (models.Session, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return models.Session{}, apierrors.Validationf("name, email and password are required")
	}

	payload := gateway.RegisterPayload{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Bio:      input.Bio,
	}
	if input.AvatarURL != "" {
		payload.Avatar = &models.Media{URL: input.AvatarURL, Alt: input.Name}
	}

	if _, err := s.api.Register(ctx, payload); err != nil {
		return models.Session{}, fmt.Errorf("service: register: %w", err)
	}

	return s.Login(ctx, input.Email, input.Password)
}

// Logout clears the stored session and raises the auth-changed signal.
func (s *Service) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("service: clear session: %w", err)
	}
	return nil
}

// CurrentProfile returns the stored session profile, when one exists.
func (s *Service) CurrentProfile() (models.Profile, bool) {
	return s.store.Profile()
}

// BrowseListings fetches the active listing set for the grid pages.
func (s *Service) BrowseListings(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.api.Listings(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("service: browse listings: %w", err)
	}
	return listings, nil
}

// LoadListing fetches one listing with seller and bids embedded.
func (s *Service) LoadListing(ctx context.Context, id string) (models.Listing, error) {
	if id == "" {
		return models.Listing{}, apierrors.Validationf("listing id is required")
	}
	listing, err := s.api.Listing(ctx, id)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: load listing %s: %w", id, err)
	}
	return listing, nil
}

// PlaceBid validates the amount against the currently known highest
// bid, submits it, then re-fetches the full listing and the bidder's
// profile. The returned listing is the confirmed remote state; the
// stored session profile is overwritten so the credits display follows
// the post-bid re-fetch value.
func (s *Service) PlaceBid(ctx context.Context, listingID string, amount, knownHighest float64) (models.Listing, error) {
	session, ok := s.store.Session()
	if !ok {
		return models.Listing{}, fmt.Errorf("service: place bid: %w", apierrors.ErrUnauthorized)
	}
	if amount <= 0 {
		return models.Listing{}, apierrors.Validationf("bid must be a positive amount")
	}
	if amount <= knownHighest {
		return models.Listing{}, apierrors.Validationf("bid must be higher than the current highest bid (%.0f)", knownHighest)
	}

	if err := s.api.PlaceBid(ctx, listingID, amount); err != nil {
		return models.Listing{}, fmt.Errorf("service: place bid on %s: %w", listingID, err)
	}

	fresh, err := s.api.Listing(ctx, listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: refresh listing %s after bid: %w", listingID, err)
	}

	profile, err := s.api.GetProfile(ctx, session.Profile.Name)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: refresh profile after bid: %w", err)
	}
	if err := s.store.Save(models.Session{Token: session.Token, Profile: profile}); err != nil {
		return models.Listing{}, fmt.Errorf("service: persist refreshed profile: %w", err)
	}

	utils.Info("bid placed", map[string]any{
		"listing_id": listingID,
		"amount":     amount,
		"bidder":     session.Profile.Name,
	})
	return fresh, nil
}

// CanEdit reports whether the stored session owns the listing.
func (s *Service) CanEdit(listing models.Listing) bool {
	profile, ok := s.store.Profile()
	return ok && profile.Name != "" && profile.Name == listing.Seller.Name
}

// CreateListing validates the input and creates the listing.
func (s *Service) CreateListing(ctx context.Context, input ListingInput) (models.Listing, error) {
	if _, ok := s.store.Session(); !ok {
		return models.Listing{}, fmt.Errorf("service: create listing: %w", apierrors.ErrUnauthorized)
	}
	if err := validateListingInput(input, time.Now()); err != nil {
		return models.Listing{}, err
	}

	created, err := s.api.CreateListing(ctx, listingPayload(input))
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: create listing: %w", err)
	}

	utils.Info("listing created", map[string]any{"listing_id": created.ID, "title": created.Title})
	return created, nil
}

// UpdateListing replaces the listing's editable fields. The ownership
// guard runs against the current listing before any update call goes
// out.
func (s *Service) UpdateListing(ctx context.Context, current models.Listing, input ListingInput) (models.Listing, error) {
	if _, ok := s.store.Session(); !ok {
		return models.Listing{}, fmt.Errorf("service: update listing: %w", apierrors.ErrUnauthorized)
	}
	if !s.CanEdit(current) {
		return models.Listing{}, fmt.Errorf("service: update listing %s: %w", current.ID, apierrors.ErrNotOwner)
	}
	if err := validateListingInput(input, time.Now()); err != nil {
		return models.Listing{}, err
	}

	updated, err := s.api.UpdateListing(ctx, current.ID, listingPayload(input))
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: update listing %s: %w", current.ID, err)
	}

	utils.Info("listing updated", map[string]any{"listing_id": current.ID})
	return updated, nil
}

// DeleteListing removes the listing. Deletion is irreversible; callers
// navigate away on success, no cached list is patched.
func (s *Service) DeleteListing(ctx context.Context, current models.Listing) error {
	if _, ok := s.store.Session(); !ok {
		return fmt.Errorf("service: delete listing: %w", apierrors.ErrUnauthorized)
	}
	if !s.CanEdit(current) {
		return fmt.Errorf("service: delete listing %s: %w", current.ID, apierrors.ErrNotOwner)
	}

	if err := s.api.DeleteListing(ctx, current.ID); err != nil {
		return fmt.Errorf("service: delete listing %s: %w", current.ID, err)
	}

	utils.Info("listing deleted", map[string]any{"listing_id": current.ID})
	return nil
}

// UpdateProfile submits the changed profile fields and overwrites the
// whole stored session with the server's response, which raises the
// auth-changed signal for the navigation chrome.
func (s *Service) UpdateProfile(ctx context.Context, input ProfileInput) (models.Profile, error) {
	session, ok := s.store.Session()
	if !ok {
		return models.Profile{}, fmt.Errorf("service: update profile: %w", apierrors.ErrUnauthorized)
	}

	payload := gateway.ProfilePayload{Bio: input.Bio}
	if input.AvatarURL != "" {
		payload.Avatar = &models.Media{URL: input.AvatarURL, Alt: session.Profile.Name}
	}
	if input.BannerURL != "" {
		payload.Banner = &models.Media{URL: input.BannerURL, Alt: session.Profile.Name}
	}

	updated, err := s.api.UpdateProfile(ctx, session.Profile.Name, payload)
	if err != nil {
		return models.Profile{}, fmt.Errorf("service: update profile: %w", err)
	}

	if err := s.store.Save(models.Session{Token: session.Token, Profile: updated}); err != nil {
		return models.Profile{}, fmt.Errorf("service: persist updated profile: %w", err)
	}

	utils.Info("profile updated", map[string]any{"profile": updated.Name})
	return updated, nil
}

// ProfileOverview issues the four profile-page fetches concurrently and
// joins them. If any one fails the whole join fails, so no panel ever
// renders from partial data.
func (s *Service) ProfileOverview(ctx context.Context, name string) (Overview, error) {
	if name == "" {
		return Overview{}, apierrors.Validationf("profile name is required")
	}

	var overview Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := s.api.GetProfile(ctx, name)
		overview.Profile = profile
		return err
	})
	g.Go(func() error {
		listings, err := s.api.ProfileListings(ctx, name)
		overview.Listings = listings
		return err
	})
	g.Go(func() error {
		bids, err := s.api.ProfileBids(ctx, name)
		overview.Bids = bids
		return err
	})
	g.Go(func() error {
		wins, err := s.api.ProfileWins(ctx, name)
		overview.Wins = wins
		return err
	})

	if err := g.Wait(); err != nil {
		return Overview{}, fmt.Errorf("service: profile overview for %s: %w", name, err)
	}
	return overview, nil
}

// CombineEndsAt assembles the separate date and time form fields into a
// deadline in the given location.
func CombineEndsAt(dateField, timeField string, loc *time.Location) (time.Time, error) {
	if dateField == "" || timeField == "" {
		return time.Time{}, apierrors.Validationf("an end date and time are required")
	}
	endsAt, err := time.ParseInLocation("2006-01-02 15:04", dateField+" "+timeField, loc)
	if err != nil {
		return time.Time{}, apierrors.Validationf("the end date or time is not valid")
	}
	return endsAt, nil
}

// validateListingInput enforces the create/edit rules, including the
// strictly-in-the-future deadline.
func validateListingInput(input ListingInput, now time.Time) error {
	if input.Title == "" {
		return apierrors.Validationf("a title is required")
	}
	if !input.EndsAt.After(now) {
		return apierrors.Validationf("the end time must be in the future")
	}
	return nil
}

// listingPayload builds the full replacement body the update contract
// requires.
func listingPayload(input ListingInput) gateway.ListingPayload {
	media := make([]models.Media, 0, len(input.MediaURLs))
	for _, u := range input.MediaURLs {
		if u == "" {
			continue
		}
		media = append(media, models.Media{URL: u, Alt: input.Title})
	}
	return gateway.ListingPayload{
		Title:       input.Title,
		Description: input.Description,
		Media:       media,
		EndsAt:      input.EndsAt,
	}
}
