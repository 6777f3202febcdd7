package integrationtests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/authstore"
	"auction-house/internal/chrome"
	"auction-house/internal/gateway"
	"auction-house/internal/server"
	handler "auction-house/services/pages/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// remoteProfile is the fake marketplace's account record.
type remoteProfile struct {
	Name     string
	Email    string
	Password string
	Bio      string
	Credits  int
}

// remoteBid is one accepted bid.
type remoteBid struct {
	ID      string
	Amount  float64
	Bidder  string
	Created time.Time
}

// remoteListing is the fake marketplace's listing record.
type remoteListing struct {
	ID          string
	Title       string
	Description string
	Seller      string
	EndsAt      time.Time
	Created     time.Time
	Bids        []remoteBid
}

// fakeRemote is an in-memory stand-in for the auction marketplace API,
// speaking the same {data, errors, message} envelope. It counts
// mutating calls so tests can assert an operation never reached the
// network.
type fakeRemote struct {
	mu       sync.Mutex
	profiles map[string]*remoteProfile
	listings map[string]*remoteListing

	BidCalls    int
	UpdateCalls int
	DeleteCalls int

	// FailWins makes the wins endpoint return a 500, to exercise the
	// all-or-nothing profile join.
	FailWins bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		profiles: map[string]*remoteProfile{},
		listings: map[string]*remoteListing{},
	}
}

func (f *fakeRemote) addProfile(p remoteProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.Name] = &p
}

func (f *fakeRemote) addListing(l remoteListing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[l.ID] = &l
}

func (f *fakeRemote) credits(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[name].Credits
}

func (f *fakeRemote) hasListing(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.listings[id]
	return ok
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]string{{"message": message}},
	})
}

func (f *fakeRemote) profileJSON(p *remoteProfile) map[string]any {
	return map[string]any{
		"name":    p.Name,
		"email":   p.Email,
		"bio":     p.Bio,
		"credits": p.Credits,
	}
}

func (f *fakeRemote) listingJSON(l *remoteListing) map[string]any {
	bids := make([]map[string]any, 0, len(l.Bids))
	for _, b := range l.Bids {
		bids = append(bids, map[string]any{
			"id":      b.ID,
			"amount":  b.Amount,
			"created": b.Created.Format(time.RFC3339),
			"bidder":  map[string]any{"name": b.Bidder},
		})
	}
	return map[string]any{
		"id":          l.ID,
		"title":       l.Title,
		"description": l.Description,
		"endsAt":      l.EndsAt.Format(time.RFC3339),
		"created":     l.Created.Format(time.RFC3339),
		"seller":      map[string]any{"name": l.Seller},
		"media":       []any{},
		"bids":        bids,
		"_count":      map[string]int{"bids": len(l.Bids)},
	}
}

// caller resolves the bearer token back to a profile name. Tokens are
// issued as "token-<name>".
func (f *fakeRemote) caller(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer token-") {
		return "", false
	}
	name := strings.TrimPrefix(auth, "Bearer token-")
	_, ok := f.profiles[name]
	return name, ok
}

func (f *fakeRemote) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Bio      string `json:"bio"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		defer f.mu.Unlock()
		if _, exists := f.profiles[body.Name]; exists {
			writeError(w, http.StatusBadRequest, "Profile already exists")
			return
		}
		p := &remoteProfile{Name: body.Name, Email: body.Email, Password: body.Password, Bio: body.Bio, Credits: 1000}
		f.profiles[body.Name] = p
		w.WriteHeader(http.StatusCreated)
		writeData(w, f.profileJSON(p))
	})

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		defer f.mu.Unlock()
		for _, p := range f.profiles {
			if p.Email == body.Email && p.Password == body.Password {
				data := f.profileJSON(p)
				data["accessToken"] = "token-" + p.Name
				writeData(w, data)
				return
			}
		}
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	})

	mux.HandleFunc("GET /auction/listings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := make([]map[string]any, 0, len(f.listings))
		for _, l := range f.listings {
			out = append(out, f.listingJSON(l))
		}
		writeData(w, out)
	})

	mux.HandleFunc("GET /auction/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		l, ok := f.listings[r.PathValue("id")]
		if !ok {
			writeError(w, http.StatusNotFound, "Listing not found")
			return
		}
		writeData(w, f.listingJSON(l))
	})

	mux.HandleFunc("POST /auction/listings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		seller, ok := f.caller(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		var body struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			EndsAt      time.Time `json:"endsAt"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		l := &remoteListing{
			ID:          fmt.Sprintf("l%d", len(f.listings)+1),
			Title:       body.Title,
			Description: body.Description,
			Seller:      seller,
			EndsAt:      body.EndsAt,
			Created:     time.Now().UTC(),
		}
		f.listings[l.ID] = l
		w.WriteHeader(http.StatusCreated)
		writeData(w, f.listingJSON(l))
	})

	mux.HandleFunc("PUT /auction/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.UpdateCalls++
		caller, ok := f.caller(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		l, ok := f.listings[r.PathValue("id")]
		if !ok || l.Seller != caller {
			writeError(w, http.StatusForbidden, "You do not own this listing")
			return
		}
		var body struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			EndsAt      time.Time `json:"endsAt"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		l.Title = body.Title
		l.Description = body.Description
		l.EndsAt = body.EndsAt
		writeData(w, f.listingJSON(l))
	})

	mux.HandleFunc("DELETE /auction/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.DeleteCalls++
		caller, ok := f.caller(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		l, ok := f.listings[r.PathValue("id")]
		if !ok || l.Seller != caller {
			writeError(w, http.StatusForbidden, "You do not own this listing")
			return
		}
		delete(f.listings, l.ID)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /auction/listings/{id}/bids", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.BidCalls++
		caller, ok := f.caller(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		l, ok := f.listings[r.PathValue("id")]
		if !ok {
			writeError(w, http.StatusNotFound, "Listing not found")
			return
		}
		var body struct {
			Amount float64 `json:"amount"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		var highest float64
		for _, b := range l.Bids {
			if b.Amount > highest {
				highest = b.Amount
			}
		}
		if body.Amount <= highest {
			writeError(w, http.StatusBadRequest, "Your bid must be higher than the current bid")
			return
		}
		bidder := f.profiles[caller]
		if float64(bidder.Credits) < body.Amount {
			writeError(w, http.StatusBadRequest, "You do not have enough credits")
			return
		}

		bidder.Credits -= int(body.Amount)
		l.Bids = append(l.Bids, remoteBid{
			ID:      fmt.Sprintf("b%d", len(l.Bids)+1),
			Amount:  body.Amount,
			Bidder:  caller,
			Created: time.Now().UTC(),
		})
		w.WriteHeader(http.StatusCreated)
		writeData(w, map[string]any{"id": l.Bids[len(l.Bids)-1].ID, "amount": body.Amount})
	})

	mux.HandleFunc("GET /auction/profiles/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.caller(r); !ok {
			writeError(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		p, ok := f.profiles[r.PathValue("name")]
		if !ok {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeData(w, f.profileJSON(p))
	})

	mux.HandleFunc("PUT /auction/profiles/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		caller, ok := f.caller(r)
		if !ok || caller != r.PathValue("name") {
			writeError(w, http.StatusForbidden, "You can only update your own profile")
			return
		}
		var body struct {
			Bio string `json:"bio"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		p := f.profiles[caller]
		p.Bio = body.Bio
		writeData(w, f.profileJSON(p))
	})

	mux.HandleFunc("GET /auction/profiles/{name}/listings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		name := r.PathValue("name")
		out := make([]map[string]any, 0)
		for _, l := range f.listings {
			if l.Seller == name {
				out = append(out, f.listingJSON(l))
			}
		}
		writeData(w, out)
	})

	mux.HandleFunc("GET /auction/profiles/{name}/bids", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		name := r.PathValue("name")
		out := make([]map[string]any, 0)
		for _, l := range f.listings {
			for _, b := range l.Bids {
				if b.Bidder == name {
					out = append(out, map[string]any{
						"id":      b.ID,
						"amount":  b.Amount,
						"created": b.Created.Format(time.RFC3339),
						"listing": f.listingJSON(l),
					})
				}
			}
		}
		writeData(w, out)
	})

	mux.HandleFunc("GET /auction/profiles/{name}/wins", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.FailWins {
			writeError(w, http.StatusInternalServerError, "wins exploded")
			return
		}
		writeData(w, []any{})
	})

	return mux
}

// testEnv is one fully wired front end over a fake remote.
type testEnv struct {
	Remote *fakeRemote
	Store  *authstore.Store
	Router *gin.Engine
}

// newTestEnv builds the real stack: gateway client, auth store, auction
// service, chrome and router, pointed at an in-process fake remote.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	remote := newFakeRemote()
	ts := httptest.NewServer(remote.handler())
	t.Cleanup(ts.Close)

	store, err := authstore.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	api := gateway.NewClient(ts.URL, "test-key", store)
	svc := auction.NewService(api, store)
	nav := chrome.New(store)
	pages := handler.NewPageHandler(svc, nav)
	router := server.SetupRouter(pages, filepath.Join("..", "..", "templates", "*.tmpl"))

	return &testEnv{Remote: remote, Store: store, Router: router}
}

// Login authenticates through the real login page flow.
func (e *testEnv) Login(t *testing.T, email, password string) {
	t.Helper()
	w := e.PostForm(t, "/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func (e *testEnv) Get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	e.Router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) PostForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	e.Router.ServeHTTP(w, req)
	return w
}
