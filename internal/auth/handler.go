package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ayush/todo-api/internal/apperr"
	"github.com/ayush/todo-api/internal/middleware"
	"github.com/ayush/todo-api/internal/models"
	"github.com/ayush/todo-api/internal/respond"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperr.Validation("invalid request body"))
		return
	}

	user, err := h.svc.Register(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	log.Printf("auth: registered user %s", user.ID)
	respond.Message(w, http.StatusCreated, "user created successfully")
}

// Login authenticates a user and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperr.Validation("invalid request body"))
		return
	}

	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindUserNotFound, apperr.KindInvalidCredentials:
			// Same answer for both so usernames cannot be enumerated.
			respond.Error(w, apperr.ErrInvalidCredentials)
		default:
			respond.Error(w, err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, models.LoginResponse{Token: token})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, apperr.ErrUnauthenticated)
		return
	}

	user, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUserNotFound {
			// The token outlived its account.
			respond.Error(w, apperr.ErrForbidden)
			return
		}
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, user)
}
