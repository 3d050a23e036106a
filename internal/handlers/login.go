package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/fluxio-api/internal/models"
	"github.com/sbilibin2017/fluxio-api/internal/validators"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Verifies credentials and records the login time
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Envelope{data=models.User} "Authenticated user"
// @Failure 400 {object} models.Envelope "Invalid request body"
// @Failure 401 {object} models.Envelope "Invalid credentials"
// @Failure 413 {object} models.Envelope "Request body too large"
// @Failure 500 {object} models.Envelope "Internal server error"
// @Router /login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := validators.ValidateLogin(req); err != nil {
			writeServiceError(w, err)
			return
		}

		user, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, user)
	}
}
