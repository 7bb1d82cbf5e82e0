package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/http/respond"
	"budgetbuddy/internal/models/dto"
	"budgetbuddy/internal/storage"
)

// AuthHandler owns signup, login, and password-reset endpoints.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /signup", h.handleSignup)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /forgot-password", h.handleForgotPassword)
	mux.HandleFunc("POST /reset-password/{token}", h.handleResetPassword)
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	token, user, err := h.svc.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "Username or email already exists")
		default:
			log.Printf("signup error: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, dto.AuthResponse{Message: "User registered", Token: token, User: user})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrInvalidCredentials):
			respond.Error(w, http.StatusUnauthorized, "Invalid password")
		default:
			log.Printf("login error: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	respond.JSON(w, http.StatusOK, dto.AuthResponse{Message: "Login successful", Token: token, User: user})
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Email == "" {
		respond.Error(w, http.StatusBadRequest, "Email required")
		return
	}

	if err := h.svc.InitiateReset(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "User not found")
		default:
			log.Printf("forgot-password error: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to initiate reset")
		}
		return
	}

	respond.Message(w, http.StatusOK, "Password reset link sent to your email")
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.svc.CompleteReset(r.Context(), token, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordRequired):
			respond.Error(w, http.StatusBadRequest, "Password required")
		case errors.Is(err, auth.ErrResetInvalid):
			respond.Error(w, http.StatusBadRequest, "Invalid or expired token")
		default:
			log.Printf("reset-password error: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}

	respond.Message(w, http.StatusOK, "Password successfully reset")
}
