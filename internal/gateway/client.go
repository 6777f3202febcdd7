package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"auction-house/internal/apierrors"
	"auction-house/internal/models"
)

// TokenSource supplies the bearer token for authenticated calls. The
// auth store satisfies this.
type TokenSource interface {
	Token() (string, bool)
}

// AuctionAPI is the full remote surface consumed by the front end. One
// method per remote operation; no method retries or caches.
type AuctionAPI interface {
	Register(ctx context.Context, payload RegisterPayload) (models.Profile, error)
	Login(ctx context.Context, email, password string) (models.Session, error)

	Listings(ctx context.Context, activeOnly bool) ([]models.Listing, error)
	Listing(ctx context.Context, id string) (models.Listing, error)
	CreateListing(ctx context.Context, payload ListingPayload) (models.Listing, error)
	UpdateListing(ctx context.Context, id string, payload ListingPayload) (models.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	PlaceBid(ctx context.Context, listingID string, amount float64) error

	GetProfile(ctx context.Context, name string) (models.Profile, error)
	UpdateProfile(ctx context.Context, name string, payload ProfilePayload) (models.Profile, error)
	ProfileListings(ctx context.Context, name string) ([]models.Listing, error)
	ProfileBids(ctx context.Context, name string) ([]models.Bid, error)
	ProfileWins(ctx context.Context, name string) ([]models.Listing, error)
}

// RegisterPayload is the account-creation body.
type RegisterPayload struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Bio      string        `json:"bio,omitempty"`
	Avatar   *models.Media `json:"avatar,omitempty"`
}

// ListingPayload is the full replacement body for create and update.
type ListingPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Media       []models.Media `json:"media"`
	EndsAt      time.Time      `json:"endsAt"`
}

// ProfilePayload carries only the fields being changed; nil media
// fields are omitted entirely per the partial-update contract.
type ProfilePayload struct {
	Bio    string        `json:"bio"`
	Avatar *models.Media `json:"avatar,omitempty"`
	Banner *models.Media `json:"banner,omitempty"`
}

// Client talks to the remote auction marketplace API. Every call
// attaches the API key; authenticated calls read the bearer token from
// the token source at request time.
type Client struct {
	base   string
	apiKey string
	tokens TokenSource
	http   *http.Client
}

// NewClient builds a gateway client for the given API root.
func NewClient(baseURL, apiKey string, tokens TokenSource) *Client {
	return &Client{
		base:   baseURL,
		apiKey: apiKey,
		tokens: tokens,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope is the uniform remote response shape.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Errors  []remoteIssue   `json:"errors"`
	Message string          `json:"message"`
}

type remoteIssue struct {
	Message string `json:"message"`
}

// errorMessage applies the fallback chain: first structured error
// message, then the top-level message, then a status placeholder.
func (e envelope) errorMessage(status int) string {
	if len(e.Errors) > 0 && e.Errors[0].Message != "" {
		return e.Errors[0].Message
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: %d", status)
}

// do performs one request/response cycle against the remote service and
// decodes the data payload into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, authed bool, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("gateway: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("gateway: build %s %s: %w", method, path, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, ok := c.tokens.Token()
		if !ok {
			return fmt.Errorf("gateway: %s %s: %w", method, path, apierrors.ErrUnauthorized)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read %s %s: %w", method, path, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 400 {
				return &apierrors.RemoteError{Status: resp.StatusCode, Message: fmt.Sprintf("API error: %d", resp.StatusCode)}
			}
			return fmt.Errorf("gateway: decode %s %s: %w", method, path, apierrors.ErrBadResponse)
		}
	}

	if resp.StatusCode >= 400 {
		return &apierrors.RemoteError{Status: resp.StatusCode, Message: env.errorMessage(resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("gateway: %s %s: missing data payload: %w", method, path, apierrors.ErrBadResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("gateway: decode %s %s data: %w", method, path, apierrors.ErrBadResponse)
	}
	return nil
}

// embedded asks the service to expand seller and bid records on listing
// responses.
func embedded(activeOnly bool) url.Values {
	q := url.Values{}
	q.Set("_seller", "true")
	q.Set("_bids", "true")
	if activeOnly {
		q.Set("_active", "true")
	}
	return q
}

func (c *Client) Register(ctx context.Context, payload RegisterPayload) (models.Profile, error) {
	var profile models.Profile
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, payload, false, &profile)
	return profile, err
}

func (c *Client) Login(ctx context.Context, email, password string) (models.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var raw struct {
		models.Profile
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, false, &raw); err != nil {
		return models.Session{}, err
	}
	if raw.AccessToken == "" {
		return models.Session{}, fmt.Errorf("gateway: login response missing token: %w", apierrors.ErrBadResponse)
	}
	return models.Session{Token: raw.AccessToken, Profile: raw.Profile}, nil
}

func (c *Client) Listings(ctx context.Context, activeOnly bool) ([]models.Listing, error) {
	var listings []models.Listing
	err := c.do(ctx, http.MethodGet, "/auction/listings", embedded(activeOnly), nil, false, &listings)
	return listings, err
}

func (c *Client) Listing(ctx context.Context, id string) (models.Listing, error) {
	var listing models.Listing
	err := c.do(ctx, http.MethodGet, "/auction/listings/"+url.PathEscape(id), embedded(false), nil, false, &listing)
	return listing, err
}

func (c *Client) CreateListing(ctx context.Context, payload ListingPayload) (models.Listing, error) {
	var listing models.Listing
	err := c.do(ctx, http.MethodPost, "/auction/listings", nil, payload, true, &listing)
	return listing, err
}

func (c *Client) UpdateListing(ctx context.Context, id string, payload ListingPayload) (models.Listing, error) {
	var listing models.Listing
	err := c.do(ctx, http.MethodPut, "/auction/listings/"+url.PathEscape(id), nil, payload, true, &listing)
	return listing, err
}

func (c *Client) DeleteListing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/auction/listings/"+url.PathEscape(id), nil, nil, true, nil)
}

func (c *Client) PlaceBid(ctx context.Context, listingID string, amount float64) error {
	body := map[string]float64{"amount": amount}
	return c.do(ctx, http.MethodPost, "/auction/listings/"+url.PathEscape(listingID)+"/bids", nil, body, true, nil)
}

func (c *Client) GetProfile(ctx context.Context, name string) (models.Profile, error) {
	var profile models.Profile
	err := c.do(ctx, http.MethodGet, "/auction/profiles/"+url.PathEscape(name), nil, nil, true, &profile)
	return profile, err
}

func (c *Client) UpdateProfile(ctx context.Context, name string, payload ProfilePayload) (models.Profile, error) {
	var profile models.Profile
	err := c.do(ctx, http.MethodPut, "/auction/profiles/"+url.PathEscape(name), nil, payload, true, &profile)
	return profile, err
}

func (c *Client) ProfileListings(ctx context.Context, name string) ([]models.Listing, error) {
	var listings []models.Listing
	err := c.do(ctx, http.MethodGet, "/auction/profiles/"+url.PathEscape(name)+"/listings", embedded(false), nil, true, &listings)
	return listings, err
}

func (c *Client) ProfileBids(ctx context.Context, name string) ([]models.Bid, error) {
	q := url.Values{}
	q.Set("_listings", "true")
	var bids []models.Bid
	err := c.do(ctx, http.MethodGet, "/auction/profiles/"+url.PathEscape(name)+"/bids", q, nil, true, &bids)
	return bids, err
}

func (c *Client) ProfileWins(ctx context.Context, name string) ([]models.Listing, error) {
	var wins []models.Listing
	err := c.do(ctx, http.MethodGet, "/auction/profiles/"+url.PathEscape(name)+"/wins", embedded(false), nil, true, &wins)
	return wins, err
}

var _ AuctionAPI = (*Client)(nil)
