package handlers

//go:generate mockgen -destination=handlers_mock.go -package=handlers . Registerer,Loginer,EmailChecker,DBPinger

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/fluxio-api/internal/models"
	"github.com/sbilibin2017/fluxio-api/internal/validators"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new account. Email and username must be unique. The password is hashed before storing.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body models.RegisterRequest true "User registration request"
// @Success 201 {object} models.Envelope{data=models.User} "User successfully registered"
// @Failure 400 {object} models.Envelope "Missing fields, invalid email or short password"
// @Failure 409 {object} models.Envelope "Email or username already taken"
// @Failure 413 {object} models.Envelope "Request body too large"
// @Failure 500 {object} models.Envelope "Internal server error"
// @Router /register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := validators.ValidateRegister(req); err != nil {
			writeServiceError(w, err)
			return
		}

		user, err := svc.Register(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, user)
	}
}
