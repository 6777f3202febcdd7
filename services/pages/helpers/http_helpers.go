package helpers

import (
	"errors"
	"net/http"

	"auction-house/internal/apierrors"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// RedirectToLogin sends the viewer to the login page when the error is
// an authorization failure, reporting whether it did so. Authorization
// errors redirect instead of rendering inline.
func RedirectToLogin(c *gin.Context, err error) bool {
	if !errors.Is(err, apierrors.ErrUnauthorized) {
		return false
	}
	c.Redirect(http.StatusSeeOther, "/login")
	return true
}

// StatusFor maps a domain error onto the page response status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apierrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apierrors.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, apierrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apierrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apierrors.ErrRemote), errors.Is(err, apierrors.ErrBadResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// LogPageError standardizes failed-operation logging in the handlers.
func LogPageError(page string, err error, ctx map[string]any) {
	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["page"] = page
	ctx["error"] = err.Error()
	utils.Warn(page+": operation failed", ctx)
}
