package handler

import (
	"context"
	"net/http"
	"time"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/apierrors"
	"auction-house/internal/chrome"
	"auction-house/internal/models"
	"auction-house/internal/viewmodel"
	"auction-house/services/pages/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// AuctionServiceInterface is the service surface the page controllers
// depend on.
type AuctionServiceInterface interface {
	Login(ctx context.Context, email, password string) (models.Session, error)
	Register(ctx context.Context, input auction.RegisterInput) (models.Session, error)
	Logout() error
	CurrentProfile() (models.Profile, bool)

	BrowseListings(ctx context.Context) ([]models.Listing, error)
	LoadListing(ctx context.Context, id string) (models.Listing, error)
	PlaceBid(ctx context.Context, listingID string, amount, knownHighest float64) (models.Listing, error)
	CanEdit(listing models.Listing) bool
	CreateListing(ctx context.Context, input auction.ListingInput) (models.Listing, error)
	UpdateListing(ctx context.Context, current models.Listing, input auction.ListingInput) (models.Listing, error)
	DeleteListing(ctx context.Context, current models.Listing) error

	UpdateProfile(ctx context.Context, input auction.ProfileInput) (models.Profile, error)
	ProfileOverview(ctx context.Context, name string) (auction.Overview, error)
}

// PageHandler owns the page surfaces: each handler binds one document's
// fixed set of template hooks, orchestrates fetches through the service
// and re-renders after mutations.
type PageHandler struct {
	service AuctionServiceInterface
	nav     *chrome.Nav
}

func NewPageHandler(service AuctionServiceInterface, nav *chrome.Nav) *PageHandler {
	return &PageHandler{service: service, nav: nav}
}

// render attaches the shared navigation chrome to every page.
func (h *PageHandler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Nav"] = h.nav.Current()
	c.HTML(status, name, data)
}

// requireAuth redirects guests to the login page, reporting whether the
// request may proceed.
func (h *PageHandler) requireAuth(c *gin.Context) bool {
	if h.nav.Current().Authenticated {
		return true
	}
	c.Redirect(http.StatusSeeOther, "/login")
	return false
}

// Home handles GET /. An authenticated session on the guest landing
// page is redirected to the dashboard.
func (h *PageHandler) Home(c *gin.Context) {
	if target, ok := h.nav.RedirectTarget(c.Request.URL.Path); ok {
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	h.listingGrid(c, "home.tmpl")
}

// Dashboard handles GET /dashboard, the authenticated listing grid.
func (h *PageHandler) Dashboard(c *gin.Context) {
	if !h.requireAuth(c) {
		return
	}
	h.listingGrid(c, "dashboard.tmpl")
}

// listingGrid fetches the active listings, applies the client-side
// search filter and renders the grid page.
func (h *PageHandler) listingGrid(c *gin.Context, page string) {
	listings, err := h.service.BrowseListings(c.Request.Context())
	if err != nil {
		helpers.LogPageError(page, err, nil)
		h.render(c, helpers.StatusFor(err), page, gin.H{
			"Error": apierrors.UserMessage(err),
			"Cards": []helpers.ListingCard{},
			"Query": c.Query("q"),
		})
		return
	}

	query := c.Query("q")
	state := viewmodel.NewListingState(listings)
	visible := state.Filter(query)

	h.render(c, http.StatusOK, page, gin.H{
		"Cards": helpers.BuildListingCards(visible, time.Now()),
		"Query": query,
		"Total": len(state.All),
	})
}

// ListingDetail handles GET /listings/:id.
func (h *PageHandler) ListingDetail(c *gin.Context) {
	listing, err := h.service.LoadListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		helpers.LogPageError("listing", err, map[string]any{"listing_id": c.Param("id")})
		h.render(c, helpers.StatusFor(err), "error.tmpl", gin.H{"Message": apierrors.UserMessage(err)})
		return
	}

	h.render(c, http.StatusOK, "listing.tmpl", gin.H{
		"Listing": helpers.BuildListingDetail(listing, time.Now(), h.service.CanEdit(listing)),
	})
}

// PlaceBid handles POST /listings/:id/bids. On success the page is
// re-rendered from the re-fetched listing, so the badge count, highest
// bid and history all reflect confirmed remote state.
func (h *PageHandler) PlaceBid(c *gin.Context) {
	id := c.Param("id")

	var form helpers.BidForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderListingWithError(c, id, apierrors.Validationf("bid must be a positive amount"))
		return
	}

	fresh, err := h.service.PlaceBid(c.Request.Context(), id, form.Amount, form.KnownHighest)
	if err != nil {
		if helpers.RedirectToLogin(c, err) {
			return
		}
		helpers.LogPageError("listing", err, map[string]any{"listing_id": id, "amount": form.Amount})
		h.renderListingWithError(c, id, err)
		return
	}

	h.render(c, http.StatusOK, "listing.tmpl", gin.H{
		"Listing": helpers.BuildListingDetail(fresh, time.Now(), h.service.CanEdit(fresh)),
		"Flash":   "Your bid was placed.",
	})
}

// renderListingWithError re-renders the listing page with a blocking
// message. The re-fetch is read-only; no local state was mutated by the
// failed operation.
func (h *PageHandler) renderListingWithError(c *gin.Context, id string, opErr error) {
	listing, err := h.service.LoadListing(c.Request.Context(), id)
	if err != nil {
		h.render(c, helpers.StatusFor(err), "error.tmpl", gin.H{"Message": apierrors.UserMessage(err)})
		return
	}
	h.render(c, helpers.StatusFor(opErr), "listing.tmpl", gin.H{
		"Listing": helpers.BuildListingDetail(listing, time.Now(), h.service.CanEdit(listing)),
		"Error":   apierrors.UserMessage(opErr),
	})
}

// SellForm handles GET /sell.
func (h *PageHandler) SellForm(c *gin.Context) {
	if !h.requireAuth(c) {
		return
	}
	h.render(c, http.StatusOK, "sell.tmpl", gin.H{"Form": helpers.ListingForm{}})
}

// CreateListing handles POST /sell.
func (h *PageHandler) CreateListing(c *gin.Context) {
	var form helpers.ListingForm
	_ = c.ShouldBind(&form)

	input, err := listingInput(form)
	if err == nil {
		var created models.Listing
		created, err = h.service.CreateListing(c.Request.Context(), input)
		if err == nil {
			c.Redirect(http.StatusSeeOther, "/listings/"+created.ID)
			return
		}
	}

	if helpers.RedirectToLogin(c, err) {
		return
	}
	helpers.LogPageError("sell", err, map[string]any{"title": form.Title})
	h.render(c, helpers.StatusFor(err), "sell.tmpl", gin.H{
		"Form":  form,
		"Error": apierrors.UserMessage(err),
	})
}

// EditListingForm handles GET /listings/:id/edit. A viewer who is not
// the seller is redirected back to the listing before anything else
// happens.
func (h *PageHandler) EditListingForm(c *gin.Context) {
	id := c.Param("id")
	listing, err := h.service.LoadListing(c.Request.Context(), id)
	if err != nil {
		h.render(c, helpers.StatusFor(err), "error.tmpl", gin.H{"Message": apierrors.UserMessage(err)})
		return
	}
	if !h.service.CanEdit(listing) {
		c.Redirect(http.StatusSeeOther, "/listings/"+id)
		return
	}

	h.render(c, http.StatusOK, "edit_listing.tmpl", gin.H{
		"ListingID": id,
		"Form":      listingForm(listing),
	})
}

// UpdateListing handles POST /listings/:id/edit with a full
// replacement payload.
func (h *PageHandler) UpdateListing(c *gin.Context) {
	id := c.Param("id")
	current, err := h.service.LoadListing(c.Request.Context(), id)
	if err != nil {
		h.render(c, helpers.StatusFor(err), "error.tmpl", gin.H{"Message": apierrors.UserMessage(err)})
		return
	}
	if !h.service.CanEdit(current) {
		c.Redirect(http.StatusSeeOther, "/listings/"+id)
		return
	}

	var form helpers.ListingForm
	_ = c.ShouldBind(&form)

	input, err := listingInput(form)
	if err == nil {
		_, err = h.service.UpdateListing(c.Request.Context(), current, input)
		if err == nil {
			c.Redirect(http.StatusSeeOther, "/listings/"+id)
			return
		}
	}

	if helpers.RedirectToLogin(c, err) {
		return
	}
	helpers.LogPageError("edit", err, map[string]any{"listing_id": id})
	h.render(c, helpers.StatusFor(err), "edit_listing.tmpl", gin.H{
		"ListingID": id,
		"Form":      form,
		"Error":     apierrors.UserMessage(err),
	})
}

// DeleteListing handles POST /listings/:id/delete. Success navigates
// away; nothing cached is patched because no cached list exists.
func (h *PageHandler) DeleteListing(c *gin.Context) {
	id := c.Param("id")
	current, err := h.service.LoadListing(c.Request.Context(), id)
	if err != nil {
		h.render(c, helpers.StatusFor(err), "error.tmpl", gin.H{"Message": apierrors.UserMessage(err)})
		return
	}

	if err := h.service.DeleteListing(c.Request.Context(), current); err != nil {
		if helpers.RedirectToLogin(c, err) {
			return
		}
		helpers.LogPageError("listing", err, map[string]any{"listing_id": id})
		h.renderListingWithError(c, id, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// ProfilePage handles GET /profiles/:name. The four panels come from
// one concurrent join; a single failure renders the error page rather
// than partial panels.
func (h *PageHandler) ProfilePage(c *gin.Context) {
	if !h.requireAuth(c) {
		return
	}

	name := c.Param("name")
	overview, err := h.service.ProfileOverview(c.Request.Context(), name)
	if err != nil {
		if helpers.RedirectToLogin(c, err) {
			return
		}
		helpers.LogPageError("profile", err, map[string]any{"profile": name})
		h.render(c, helpers.StatusFor(err), "error.tmpl", gin.H{"Message": apierrors.UserMessage(err)})
		return
	}

	now := time.Now()
	bids := make([]helpers.BidRow, 0, len(overview.Bids))
	for _, b := range viewmodel.SortBidsDescending(overview.Bids) {
		row := helpers.BidRow{Amount: b.Amount, Placed: viewmodel.FormatDate(b.Created)}
		if b.Listing != nil {
			row.ListingTitle = b.Listing.Title
		}
		bids = append(bids, row)
	}

	viewer, _ := h.service.CurrentProfile()
	h.render(c, http.StatusOK, "profile.tmpl", gin.H{
		"Profile":  helpers.BuildProfileView(overview.Profile),
		"Listings": helpers.BuildListingCards(overview.Listings, now),
		"Bids":     bids,
		"Wins":     helpers.BuildListingCards(overview.Wins, now),
		"IsOwn":    viewer.Name == overview.Profile.Name,
	})
}

// AccountForm handles GET /account, the edit-profile page.
func (h *PageHandler) AccountForm(c *gin.Context) {
	if !h.requireAuth(c) {
		return
	}

	profile, _ := h.service.CurrentProfile()
	h.render(c, http.StatusOK, "account.tmpl", gin.H{
		"Form": helpers.ProfileForm{
			Bio:    profile.Bio,
			Avatar: profile.Avatar.URL,
			Banner: profile.Banner.URL,
		},
	})
}

// UpdateProfile handles POST /account. Bio is always submitted; avatar
// and banner only when a non-empty URL was entered.
func (h *PageHandler) UpdateProfile(c *gin.Context) {
	var form helpers.ProfileForm
	_ = c.ShouldBind(&form)

	updated, err := h.service.UpdateProfile(c.Request.Context(), auction.ProfileInput{
		Bio:       form.Bio,
		AvatarURL: form.Avatar,
		BannerURL: form.Banner,
	})
	if err != nil {
		if helpers.RedirectToLogin(c, err) {
			return
		}
		helpers.LogPageError("account", err, nil)
		h.render(c, helpers.StatusFor(err), "account.tmpl", gin.H{
			"Form":  form,
			"Error": apierrors.UserMessage(err),
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/profiles/"+updated.Name)
}

// LoginForm handles GET /login.
func (h *PageHandler) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.tmpl", gin.H{"Email": ""})
}

// Login handles POST /login.
func (h *PageHandler) Login(c *gin.Context) {
	var form helpers.LoginForm
	_ = c.ShouldBind(&form)

	session, err := h.service.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		helpers.LogPageError("login", err, map[string]any{"email": form.Email})
		h.render(c, helpers.StatusFor(err), "login.tmpl", gin.H{
			"Email": form.Email,
			"Error": apierrors.UserMessage(err),
		})
		return
	}

	utils.Info("login page: session established", map[string]any{"profile": session.Profile.Name})
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// RegisterForm handles GET /register.
func (h *PageHandler) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.tmpl", gin.H{"Form": helpers.RegisterForm{}})
}

// Register handles POST /register.
func (h *PageHandler) Register(c *gin.Context) {
	var form helpers.RegisterForm
	_ = c.ShouldBind(&form)

	_, err := h.service.Register(c.Request.Context(), auction.RegisterInput{
		Name:      form.Name,
		Email:     form.Email,
		Password:  form.Password,
		Bio:       form.Bio,
		AvatarURL: form.Avatar,
	})
	if err != nil {
		helpers.LogPageError("register", err, map[string]any{"name": form.Name})
		h.render(c, helpers.StatusFor(err), "register.tmpl", gin.H{
			"Form":  form,
			"Error": apierrors.UserMessage(err),
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout handles POST /logout.
func (h *PageHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(); err != nil {
		helpers.LogPageError("logout", err, nil)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// listingInput assembles the service input from the bound form,
// including the end-time construction in the viewer's local zone.
func listingInput(form helpers.ListingForm) (auction.ListingInput, error) {
	endsAt, err := auction.CombineEndsAt(form.EndDate, form.EndTime, time.Local)
	if err != nil {
		return auction.ListingInput{}, err
	}
	return auction.ListingInput{
		Title:       form.Title,
		Description: form.Description,
		MediaURLs:   form.MediaURLs(),
		EndsAt:      endsAt,
	}, nil
}

// listingForm prefills the edit form from the current listing.
func listingForm(l models.Listing) helpers.ListingForm {
	var media string
	for i, m := range l.Media {
		if i > 0 {
			media += "\n"
		}
		media += m.URL
	}

	form := helpers.ListingForm{
		Title:       l.Title,
		Description: l.Description,
		Media:       media,
	}
	if !l.EndsAt.IsZero() {
		local := l.EndsAt.In(time.Local)
		form.EndDate = local.Format("2006-01-02")
		form.EndTime = local.Format("15:04")
	}
	return form
}
