package todo

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/todo-api/internal/apperr"
	"github.com/ayush/todo-api/internal/middleware"
	"github.com/ayush/todo-api/internal/models"
	"github.com/ayush/todo-api/internal/respond"
)

// DeleteResponse is the body of DELETE /api/todos/{id}.
type DeleteResponse struct {
	Message string `json:"message"`
	Deleted bool   `json:"deleted"`
}

// Handler holds todo HTTP handlers. Every route must sit behind
// middleware.RequireAuth.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, apperr.ErrUnauthenticated)
	}
	return id, ok
}

// Create adds a todo for the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}

	var req models.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperr.Validation("invalid request body"))
		return
	}

	todo, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, todo)
}

// List returns all todos for the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}

	todos, err := h.svc.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, todos)
}

// Get returns a single todo owned by the caller.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}

	todo, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if todo == nil {
		respond.Error(w, apperr.ErrNotFound)
		return
	}
	respond.JSON(w, http.StatusOK, todo)
}

// Update patches a todo. A missing todo and someone else's todo both answer
// 200 with a null body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}

	var patch models.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.Error(w, apperr.Validation("invalid request body"))
		return
	}

	todo, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, todo)
}

// Delete removes a todo owned by the caller.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, DeleteResponse{Message: "todo deleted", Deleted: deleted})
}

// Export archives the caller's todos and returns the snapshot as a download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}

	data, err := h.svc.Export(r.Context(), userID)
	if err != nil {
		log.Printf("todo export error: %v", err)
		respond.Error(w, err)
		return
	}
	writeSnapshot(w, data)
}

// LatestExport streams the caller's last archived snapshot.
func (h *Handler) LatestExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}

	data, err := h.svc.LatestExport(r.Context(), userID)
	if err != nil {
		log.Printf("todo export fetch error: %v", err)
		respond.Error(w, err)
		return
	}
	if data == nil {
		respond.Error(w, apperr.ErrNotFound)
		return
	}
	writeSnapshot(w, data)
}

func writeSnapshot(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=todos.json")
	w.Write(data)
}
