package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/nevroth/nevroth/internal/auth"
	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/models"
	"github.com/nevroth/nevroth/internal/store"
)

const minPasswordLength = 8

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandler struct {
	Store     store.Store
	SecretKey []byte
	TokenTTL  time.Duration
	Logger    logging.Logger
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	type SignupRequest struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}

	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(w, r, h.Logger, common.Validationf("invalid email address"))
		return
	}
	if req.FullName == "" {
		respondError(w, r, h.Logger, common.Validationf("full name is required"))
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, r, h.Logger, common.Validationf("password must be at least %d characters", minPasswordLength))
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	user := &models.User{
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  hashedPassword,
		CreatedAt: time.Now(),
	}

	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	h.Logger.Info(r.Context(), "user signed up", "user_id", user.ID)
	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := decodeJSON(r, &creds); err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	user, err := h.Store.GetUserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		respondError(w, r, h.Logger, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.Password, creds.Password) {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(user.ID, h.SecretKey, h.TokenTTL)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"access": token})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	user, err := h.Store.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.Logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
