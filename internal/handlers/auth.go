package handlers

import (
	"net/http"

	"github.com/aserras/webfront/internal/services/brain"
	"github.com/aserras/webfront/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SessionCookieConfig describes the session cookie handed to browsers
// after a successful login or signup.
type SessionCookieConfig struct {
	Name   string
	Secure bool
	MaxAge int
}

// AuthHandler proxies authentication to the Brain backend and manages the
// browser session cookie. No credentials are verified locally.
type AuthHandler struct {
	brain  *brain.Client
	cookie SessionCookieConfig
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(brainClient *brain.Client, cookie SessionCookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{brain: brainClient, cookie: cookie, logger: logger}
}

// RegisterRoutes registers auth routes on the given router.
// The router should already have the /auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/signup", h.Signup).Methods("POST")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents an account creation request
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthResponse is returned on successful login or signup.
type AuthResponse struct {
	Status   string `json:"status"`
	Redirect string `json:"redirect"`
}

// Login authenticates against the Brain backend and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondDetail(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.brain.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondBrainError(w, h.logger, err)
		return
	}

	token := result.SessionToken()
	if token == "" {
		respondDetail(w, http.StatusBadGateway, "login succeeded but no session token was issued")
		return
	}

	h.setSessionCookie(w, token)
	h.logger.Info("user_logged_in")
	respondJSON(w, http.StatusOK, AuthResponse{Status: "ok", Redirect: "/dashboard"})
}

// Signup registers a new account and sets the session cookie.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondDetail(w, http.StatusBadRequest, "name, email and a password of at least 8 characters are required")
		return
	}

	result, err := h.brain.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondBrainError(w, h.logger, err)
		return
	}

	token := result.SessionToken()
	if token == "" {
		respondDetail(w, http.StatusBadGateway, "signup succeeded but no session token was issued")
		return
	}

	h.setSessionCookie(w, token)
	h.logger.Info("user_signed_up")
	respondJSON(w, http.StatusOK, AuthResponse{Status: "ok", Redirect: "/dashboard"})
}

// Logout clears the session cookie. The Brain backend keeps no server-side
// session to invalidate.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   h.cookie.MaxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
