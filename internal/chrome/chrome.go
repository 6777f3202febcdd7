package chrome

import (
	"sync"

	"auction-house/internal/authstore"
	"auction-house/internal/models"
	"auction-house/internal/viewmodel"
)

// State is the shared navigation chrome rendered on every page: either
// guest mode, or the signed-in user's name, credits and avatar.
type State struct {
	Authenticated bool
	Name          string
	Credits       int
	AvatarURL     string
}

// Nav reflects the auth store into the chrome state. It recomputes on
// demand and whenever the store raises the auth-changed signal, so a
// session mutated by one controller is visible to every page without a
// reload.
type Nav struct {
	mu      sync.RWMutex
	store   *authstore.Store
	current State
}

// New builds the component, performs the initial reflection and
// subscribes to the store.
func New(store *authstore.Store) *Nav {
	n := &Nav{store: store}
	n.Reflect()
	store.Subscribe(func(models.Session, bool) {
		n.Reflect()
	})
	return n
}

// Reflect reads the store and recomputes the chrome state. Reflect is
// idempotent: with unchanged storage it always produces the same state.
func (n *Nav) Reflect() State {
	state := State{}
	if profile, ok := n.store.Profile(); ok {
		state = State{
			Authenticated: true,
			Name:          profile.Name,
			Credits:       profile.Credits,
			AvatarURL:     viewmodel.AvatarImage(profile),
		}
	}

	n.mu.Lock()
	n.current = state
	n.mu.Unlock()
	return state
}

// Current returns the last reflected state.
func (n *Nav) Current() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// RedirectTarget implements the routing policy embedded in the
// reflection step: an authenticated session on the guest landing page
// belongs on the dashboard.
func (n *Nav) RedirectTarget(path string) (string, bool) {
	if path == "/" && n.Current().Authenticated {
		return "/dashboard", true
	}
	return "", false
}
