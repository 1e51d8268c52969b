package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"cinelog/models"
	"cinelog/services/review"
)

type movieLookup interface {
	Movie(ctx context.Context, id int) (*models.MovieDetail, error)
}

// ChatHandler exposes the conversational review flow over HTTP.
type ChatHandler struct {
	sessions *review.Manager
	movies   movieLookup
}

// NewChatHandler creates a chat handler.
func NewChatHandler(sessions *review.Manager, movies movieLookup) *ChatHandler {
	return &ChatHandler{sessions: sessions, movies: movies}
}

type createSessionRequest struct {
	MovieID int `json:"movieId"`
}

type sessionResponse struct {
	SessionID  string                `json:"sessionId"`
	State      review.State          `json:"state"`
	Movie      *models.SelectedMovie `json:"movie,omitempty"`
	Transcript []models.ChatTurn     `json:"transcript"`
	Ready      bool                  `json:"readyToSummarize"`
}

func sessionPayload(id string, s *review.Session) sessionResponse {
	return sessionResponse{
		SessionID:  id,
		State:      s.State(),
		Movie:      s.Movie(),
		Transcript: s.Transcript(),
		Ready:      s.ReadyToSummarize(),
	}
}

// CreateSession starts a review session for a movie. Any session the
// caller already had is abandoned.
// POST /api/chat/sessions
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.MovieID == 0 {
		jsonError(w, "movieId is required", http.StatusBadRequest)
		return
	}

	detail, err := h.movies.Movie(r.Context(), req.MovieID)
	if err != nil {
		jsonError(w, "Failed to load movie: "+err.Error(), http.StatusBadGateway)
		return
	}

	owner := userID(r)
	if owner == "" {
		// Guests get a throwaway owner key; their sessions are only
		// addressable by session id.
		owner = "guest-" + uuid.NewString()
	}

	id, session := h.sessions.Begin(owner, models.SelectedMovieFromDetail(*detail))
	jsonResponse(w, sessionPayload(id, session))
}

type messageRequest struct {
	Text string `json:"text"`
}

// PostMessage appends a user turn and returns the assistant's reply.
// POST /api/chat/sessions/{id}/messages
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := h.sessions.Get(id)
	if err != nil {
		jsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	reply, err := session.Send(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrBusy):
			jsonError(w, "Previous message still processing", http.StatusConflict)
		case errors.Is(err, review.ErrNoActiveSession):
			jsonError(w, "Session has no active conversation", http.StatusConflict)
		default:
			jsonError(w, "Failed to send message: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	payload := sessionPayload(id, session)
	jsonResponse(w, map[string]interface{}{
		"reply":   reply,
		"session": payload,
	})
}

// Summarize condenses the transcript into a review seed.
// POST /api/chat/sessions/{id}/summary
func (h *ChatHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := h.sessions.Get(id)
	if err != nil {
		jsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	summary, err := session.Summarize(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, review.ErrNotReady):
			jsonError(w, "Keep chatting a little longer before summarizing", http.StatusConflict)
		case errors.Is(err, review.ErrNoActiveSession):
			jsonError(w, "Session has no active conversation", http.StatusConflict)
		default:
			jsonError(w, "Failed to summarize: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	jsonResponse(w, map[string]interface{}{"summary": summary})
}

type submitRequest struct {
	Rating  int      `json:"rating"`
	Tags    []string `json:"tags,omitempty"`
	Content string   `json:"content"`
}

// Submit persists the review and ends the session.
// POST /api/chat/sessions/{id}/submit
func (h *ChatHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := h.sessions.Get(id)
	if err != nil {
		jsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := session.Submit(r.Context(), userID(r), req.Rating, req.Tags, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrInvalidRating), errors.Is(err, review.ErrUnknownTag):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, review.ErrNoActiveSession):
			jsonError(w, "Session has no active conversation", http.StatusConflict)
		default:
			jsonError(w, "Failed to save review: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	h.sessions.Remove(id)
	jsonResponse(w, map[string]interface{}{"review": saved})
}

// Abandon cancels the session and discards its transcript.
// DELETE /api/chat/sessions/{id}
func (h *ChatHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.sessions.End(id)
	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes attaches chat routes to the router.
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/chat/sessions", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/sessions/{id}/messages", h.PostMessage).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/sessions/{id}/summary", h.Summarize).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/sessions/{id}/submit", h.Submit).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/sessions/{id}", h.Abandon).Methods(http.MethodDelete)
}
