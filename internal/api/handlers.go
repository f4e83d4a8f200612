package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/moodloop/insight-server/internal/cache"
	"github.com/moodloop/insight-server/internal/config"
	"github.com/moodloop/insight-server/internal/db"
	"github.com/moodloop/insight-server/internal/insights"
	"github.com/moodloop/insight-server/internal/models"
)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}

type Handlers struct {
	cfg        *config.Config
	db         *db.DB
	service    *insights.Service
	cacheStore *cache.Store
}

func NewHandlers(cfg *config.Config, database *db.DB, service *insights.Service, cacheStore *cache.Store) *Handlers {
	return &Handlers{
		cfg:        cfg,
		db:         database,
		service:    service,
		cacheStore: cacheStore,
	}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	cacheStatus := "available"
	if !h.cacheStore.Available() {
		cacheStatus = "degraded"
	}
	if err := h.db.Ping(); err != nil {
		cacheStatus = "error: " + err.Error()
	}

	resp := models.HealthResponse{
		Status:   "ok",
		Provider: h.service.ProviderName(),
		Cache:    cacheStatus,
		Version:  "1.0.0",
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// GetInsights handles GET /api/v1/insights
func (h *Handlers) GetInsights(w http.ResponseWriter, r *http.Request) {
	owner := GetOwner(r)

	result, err := h.service.Generate(r.Context(), owner)
	if err != nil {
		log.Printf("Insights generation failed for %s: %v", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to generate insights", "GENERATION_ERROR")
		return
	}

	resp := models.InsightsResponse{
		Insights:   result.Insights,
		AIEnhanced: result.AIEnhanced,
		Cached:     result.Cached,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// CreateMood handles POST /api/v1/moods
func (h *Handlers) CreateMood(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	if !models.ValidMood(req.Mood) {
		writeError(w, http.StatusBadRequest, "mood must be one of excellent, good, neutral, bad, terrible", "INVALID_MOOD")
		return
	}
	if req.EnergyLevel < 1 || req.EnergyLevel > 10 {
		writeError(w, http.StatusBadRequest, "energy_level must be between 1 and 10", "INVALID_ENERGY")
		return
	}

	owner := GetOwner(r)
	record := models.MoodRecord{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		Mood:        req.Mood,
		EnergyLevel: req.EnergyLevel,
		Notes:       req.Notes,
		OccurredAt:  parseOccurredAt(req.OccurredAt),
	}

	if err := h.db.InsertMood(record); err != nil {
		log.Printf("Failed to insert mood for %s: %v", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to store record", "WRITE_ERROR")
		return
	}

	// Content changed; the next insights read must regenerate.
	h.cacheStore.Invalidate(owner)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(models.RecordResponse{ID: record.ID, Status: models.StatusReceived})
}

// ListMoods handles GET /api/v1/moods
func (h *Handlers) ListMoods(w http.ResponseWriter, r *http.Request) {
	owner := GetOwner(r)
	moods, err := h.db.ListRecentMoods(owner, 50)
	if err != nil {
		log.Printf("Failed to list moods for %s: %v", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to read records", "READ_ERROR")
		return
	}
	if moods == nil {
		moods = []models.MoodRecord{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string][]models.MoodRecord{"moods": moods})
}

// CreateJournal handles POST /api/v1/journals
func (h *Handlers) CreateJournal(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required", "MISSING_CONTENT")
		return
	}
	if req.Mood != "" && !models.ValidMood(req.Mood) {
		writeError(w, http.StatusBadRequest, "mood must be one of excellent, good, neutral, bad, terrible", "INVALID_MOOD")
		return
	}

	owner := GetOwner(r)
	record := models.JournalRecord{
		ID:         uuid.NewString(),
		OwnerID:    owner,
		Title:      req.Title,
		Content:    req.Content,
		Mood:       req.Mood,
		Tags:       req.Tags,
		OccurredAt: parseOccurredAt(req.OccurredAt),
	}

	if err := h.db.InsertJournal(record); err != nil {
		log.Printf("Failed to insert journal for %s: %v", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to store record", "WRITE_ERROR")
		return
	}

	h.cacheStore.Invalidate(owner)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(models.RecordResponse{ID: record.ID, Status: models.StatusReceived})
}

// ListJournals handles GET /api/v1/journals
func (h *Handlers) ListJournals(w http.ResponseWriter, r *http.Request) {
	owner := GetOwner(r)
	journals, err := h.db.ListRecentJournals(owner, 30)
	if err != nil {
		log.Printf("Failed to list journals for %s: %v", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to read records", "READ_ERROR")
		return
	}
	if journals == nil {
		journals = []models.JournalRecord{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string][]models.JournalRecord{"journals": journals})
}

// parseOccurredAt uses the client timestamp when it parses, server time
// otherwise.
func parseOccurredAt(ts string) time.Time {
	if ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			return parsed
		}
	}
	return time.Now().UTC()
}
