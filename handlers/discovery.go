package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cinelog/services/discovery"
)

// DiscoveryHandler serves the daily rotating discovery sections.
type DiscoveryHandler struct {
	discoverySvc *discovery.Service
}

// NewDiscoveryHandler creates a discovery handler.
func NewDiscoveryHandler(discoverySvc *discovery.Service) *DiscoveryHandler {
	return &DiscoveryHandler{discoverySvc: discoverySvc}
}

// Today returns the sections selected for the current calendar day.
// Sections whose fetch failed come back with empty candidate lists so the
// client renders a partial page.
// GET /api/discovery/today
func (h *DiscoveryHandler) Today(w http.ResponseWriter, r *http.Request) {
	day := time.Now()

	sections, err := h.discoverySvc.Sections(r.Context(), day)
	if err != nil {
		if errors.Is(err, discovery.ErrEmptyTable) {
			jsonError(w, "Catalog misconfigured: "+err.Error(), http.StatusInternalServerError)
			return
		}
		jsonError(w, "Failed to build discovery page: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"date":     day.Format("2006-01-02"),
		"sections": sections,
	})
}

// Moods lists the mood descriptors available for mood-based picks.
// GET /api/discovery/moods
func (h *DiscoveryHandler) Moods(w http.ResponseWriter, r *http.Request) {
	type moodEntry struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}
	moods := make([]moodEntry, 0, len(discovery.MoodTable))
	for _, m := range discovery.MoodTable {
		moods = append(moods, moodEntry{ID: m.ID, Label: m.Label})
	}
	jsonResponse(w, map[string]interface{}{"moods": moods})
}

// MoodPick returns today's pick for one mood.
// GET /api/discovery/moods/{id}
func (h *DiscoveryHandler) MoodPick(w http.ResponseWriter, r *http.Request) {
	moodID := mux.Vars(r)["id"]

	pick, err := h.discoverySvc.MoodPick(r.Context(), time.Now(), moodID)
	if err != nil {
		if errors.Is(err, discovery.ErrUnknownMood) {
			jsonError(w, "Unknown mood: "+moodID, http.StatusNotFound)
			return
		}
		jsonError(w, "Failed to pick for mood: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if pick == nil {
		jsonResponse(w, map[string]interface{}{"movie": nil})
		return
	}
	jsonResponse(w, map[string]interface{}{"movie": pick})
}

// RegisterRoutes attaches discovery routes to the router.
func (h *DiscoveryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/discovery/today", h.Today).Methods(http.MethodGet)
	r.HandleFunc("/api/discovery/moods", h.Moods).Methods(http.MethodGet)
	r.HandleFunc("/api/discovery/moods/{id}", h.MoodPick).Methods(http.MethodGet)
}
