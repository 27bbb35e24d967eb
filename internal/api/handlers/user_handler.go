package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/taskloft/taskloft-be/internal/auth"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/services"
)

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	service  services.UserServiceProvider
	strategy auth.TokenStrategy
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, strategy auth.TokenStrategy) *UserHandler {
	return &UserHandler{service: service, strategy: strategy}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"fullName"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		FullName:  payload.FullName,
		Bio:       payload.Bio,
		AvatarURL: payload.AvatarURL,
	})
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication and token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		// Same log line for unknown email and wrong password.
		log.Warn().Msg("Failed authentication attempt")
		writeError(w, err)
		return
	}

	token, err := h.strategy.Issue(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetMe returns the authenticated user's account.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	user, err := h.service.GetByID(r.Context(), current.ID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", current.ID).Msg("Failed to get user")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe applies a partial update to the authenticated user's account.
// Omitted fields are left unchanged; a supplied password is re-hashed.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.Update(r.Context(), current.ID, payload)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", current.ID).Msg("Failed to update user")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteMe permanently removes the authenticated user's account and tasks.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	deleted, err := h.service.Delete(r.Context(), current.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", current.ID).Msg("Failed to delete user")
		writeError(w, err)
		return
	}
	if !deleted {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
