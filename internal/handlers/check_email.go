package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/fluxio-api/internal/models"
	"github.com/sbilibin2017/fluxio-api/internal/validators"
)

// EmailChecker reports whether an email is registered.
type EmailChecker interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
}

// NewCheckEmailHandler returns an HTTP handler for the email existence check.
// @Summary Check email
// @Description Reports whether an account with the email exists
// @Tags auth
// @Accept json
// @Produce json
// @Param checkEmailRequest body models.CheckEmailRequest true "Email to check"
// @Success 200 {object} models.Envelope{data=models.CheckEmailResult}
// @Failure 400 {object} models.Envelope "Email missing or malformed"
// @Failure 413 {object} models.Envelope "Request body too large"
// @Failure 500 {object} models.Envelope "Internal server error"
// @Router /check-email [post]
func NewCheckEmailHandler(svc EmailChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CheckEmailRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := validators.ValidateCheckEmail(req); err != nil {
			writeServiceError(w, err)
			return
		}

		exists, err := svc.CheckEmail(r.Context(), req.Email)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, models.CheckEmailResult{Exists: exists})
	}
}
