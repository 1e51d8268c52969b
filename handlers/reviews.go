package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"cinelog/services/review"
	"cinelog/services/reviews"
)

// ReviewsHandler exposes quick capture and review CRUD through the
// persistence bridge.
type ReviewsHandler struct {
	quick  *review.Quick
	bridge *reviews.Bridge
}

// NewReviewsHandler creates a reviews handler.
func NewReviewsHandler(quick *review.Quick, bridge *reviews.Bridge) *ReviewsHandler {
	return &ReviewsHandler{quick: quick, bridge: bridge}
}

// Create captures a review directly, without a conversation.
// POST /api/reviews
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var capture review.QuickCapture
	if err := json.NewDecoder(r.Body).Decode(&capture); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.quick.Submit(r.Context(), userID(r), capture)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrInvalidRating), errors.Is(err, review.ErrUnknownTag):
			jsonError(w, err.Error(), http.StatusBadRequest)
		default:
			jsonError(w, "Failed to save review: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"review": saved})
}

// List returns the local review and watch-record state.
// GET /api/reviews
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	store := h.bridge.Store()
	jsonResponse(w, map[string]interface{}{
		"reviews": store.Reviews(),
		"watched": store.Watched(),
	})
}

type updateRequest struct {
	Rating  int      `json:"rating"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// Update rewrites a confirmed review.
// PUT /api/reviews/{id}
func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.bridge.Update(r.Context(), userID(r), id, req.Rating, req.Content, req.Tags)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrUnconfirmed):
			jsonError(w, "Review is still being saved; try again shortly", http.StatusConflict)
		case errors.Is(err, reviews.ErrNotFound):
			jsonError(w, "Review not found", http.StatusNotFound)
		default:
			jsonError(w, "Failed to update review: "+err.Error(), http.StatusBadGateway)
		}
		return
	}
	jsonResponse(w, map[string]interface{}{"review": saved})
}

// Delete removes a confirmed review.
// DELETE /api/reviews/{id}
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.bridge.Delete(r.Context(), userID(r), id); err != nil {
		switch {
		case errors.Is(err, reviews.ErrUnconfirmed):
			jsonError(w, "Review is still being saved; try again shortly", http.StatusConflict)
		case errors.Is(err, reviews.ErrNotFound):
			jsonError(w, "Review not found", http.StatusNotFound)
		default:
			jsonError(w, "Failed to delete review: "+err.Error(), http.StatusBadGateway)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh reloads local state from the remote store for the caller.
// POST /api/reviews/refresh
func (h *ReviewsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.bridge.Refresh(r.Context(), userID(r)); err != nil {
		jsonError(w, "Failed to refresh reviews: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes attaches review routes to the router.
func (h *ReviewsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/reviews", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/reviews", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/reviews/refresh", h.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/api/reviews/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/api/reviews/{id}", h.Delete).Methods(http.MethodDelete)
}
