// Package insights orchestrates the enrichment flow: fingerprint the owner's
// current records, serve the cached result when nothing changed, otherwise
// regenerate via the remote provider under the daily budget, repairing its
// reply or falling back to the offline heuristic. Every recoverable failure
// funnels into the heuristic path; the flow always produces a valid artifact.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/moodloop/insight-server/internal/cache"
	"github.com/moodloop/insight-server/internal/fingerprint"
	"github.com/moodloop/insight-server/internal/heuristic"
	"github.com/moodloop/insight-server/internal/models"
	"github.com/moodloop/insight-server/internal/provider"
	"github.com/moodloop/insight-server/internal/ratelimit"
	"github.com/moodloop/insight-server/internal/repair"
)

// Bounds on how much history feeds one enrichment cycle.
const (
	moodFetchLimit    = 50
	journalFetchLimit = 30
)

// RecordSource reads an owner's recent records, newest first. *db.DB
// implements it.
type RecordSource interface {
	ListRecentMoods(ownerID string, limit int) ([]models.MoodRecord, error)
	ListRecentJournals(ownerID string, limit int) ([]models.JournalRecord, error)
}

// Result is what one enrichment cycle hands back to the caller.
type Result struct {
	Insights   *models.EnhancedInsights `json:"insights"`
	AIEnhanced bool                     `json:"ai_enhanced"`
	Cached     bool                     `json:"-"`
}

// Service composes the enrichment pipeline. Construct once per process and
// share across requests; the limiter and cache circuit are its only mutable
// state.
type Service struct {
	records RecordSource
	cache   *cache.Store
	limiter *ratelimit.Limiter
	prov    provider.Provider // nil when no provider is configured
}

func NewService(records RecordSource, cacheStore *cache.Store, limiter *ratelimit.Limiter, prov provider.Provider) *Service {
	return &Service{
		records: records,
		cache:   cacheStore,
		limiter: limiter,
		prov:    prov,
	}
}

// ProviderName reports the configured provider, "none" when absent.
func (s *Service) ProviderName() string {
	if s.prov == nil {
		return "none"
	}
	return s.prov.Name()
}

// Generate runs one enrichment cycle for an owner. Only a records-store
// failure or a canceled context can return an error; provider, repair and
// cache failures all degrade internally.
func (s *Service) Generate(ctx context.Context, ownerID string) (*Result, error) {
	moods, err := s.records.ListRecentMoods(ownerID, moodFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("listing mood records: %w", err)
	}
	journals, err := s.records.ListRecentJournals(ownerID, journalFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("listing journal records: %w", err)
	}

	hash := fingerprint.Compute(moods, journals, s.ProviderName())

	if s.cache.IsValid(ownerID, hash) {
		if payload, ok := s.cache.Get(ownerID); ok {
			if result := decodeCached(payload); result != nil {
				log.Printf("insights: cache.hit owner=%s hash=%.12s", ownerID, hash)
				return result, nil
			}
		}
	}
	log.Printf("insights: cache.miss owner=%s hash=%.12s", ownerID, hash)

	result := s.regenerate(ctx, ownerID, moods, journals)

	// An aborted attempt must not poison the cache.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.persist(ownerID, hash, result)
	return result, nil
}

// regenerate decides the path: provider when configured, budgeted and
// responsive, heuristic otherwise.
func (s *Service) regenerate(ctx context.Context, ownerID string, moods []models.MoodRecord, journals []models.JournalRecord) *Result {
	if len(moods) == 0 && len(journals) == 0 {
		// Nothing to enrich; don't spend a provider call on it.
		return s.heuristicResult(ownerID, moods, journals, "no_records")
	}
	if s.prov == nil {
		return s.heuristicResult(ownerID, moods, journals, "no_provider")
	}
	if !s.limiter.TryConsume(ownerID) {
		return s.heuristicResult(ownerID, moods, journals, "rate_limited")
	}

	log.Printf("insights: provider.call owner=%s provider=%s", ownerID, s.prov.Name())
	raw, err := s.prov.Enrich(ctx, provider.EnrichInput{Moods: moods, Journals: journals})
	if err != nil {
		return s.heuristicResult(ownerID, moods, journals, classifyProviderErr(err))
	}

	payload, err := repair.Payload(raw)
	if err != nil {
		log.Printf("insights: repair.degraded owner=%s: %v", ownerID, err)
		return s.heuristicResult(ownerID, moods, journals, "repair_exhausted")
	}

	return &Result{
		Insights:   assemble(payload, moods, journals),
		AIEnhanced: true,
	}
}

func (s *Service) heuristicResult(ownerID string, moods []models.MoodRecord, journals []models.JournalRecord, reason string) *Result {
	log.Printf("insights: provider.fallback owner=%s reason=%s", ownerID, reason)
	return &Result{
		Insights:   heuristic.Build(moods, journals),
		AIEnhanced: false,
	}
}

// persist writes the final payload regardless of which path produced it, so
// repeated calls on unchanged data are cache hits even when degraded.
func (s *Service) persist(ownerID, hash string, result *Result) {
	blob, err := json.Marshal(result)
	if err != nil {
		log.Printf("insights: marshaling result for cache owner=%s: %v", ownerID, err)
		return
	}
	s.cache.Put(ownerID, hash, string(blob))
}

// assemble merges the provider payload with locally computed summaries; the
// provider is never asked for prose the records already determine.
func assemble(payload *models.ProviderPayload, moods []models.MoodRecord, journals []models.JournalRecord) *models.EnhancedInsights {
	return &models.EnhancedInsights{
		MoodSummary:       heuristic.MoodSummary(moods),
		JournalSummary:    heuristic.JournalSummary(journals),
		Sentiment:         payload.Sentiment,
		Predictions:       payload.Predictions,
		GeneratedInsights: payload.Insights,
		Recommendations:   payload.Recommendations,
		WeeklyTrend:       heuristic.WeeklyTrend(moods, payload.Sentiment),
	}
}

func decodeCached(payload string) *Result {
	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil || result.Insights == nil {
		return nil
	}
	result.Cached = true
	return &result
}

func classifyProviderErr(err error) string {
	var quotaErr *provider.QuotaError
	var transientErr *provider.TransientError
	var malformedErr *provider.MalformedError
	switch {
	case errors.Is(err, provider.ErrNoCredential):
		return "no_credential"
	case errors.As(err, &quotaErr):
		return "provider_quota"
	case errors.As(err, &transientErr):
		return "provider_transient"
	case errors.As(err, &malformedErr):
		return "provider_malformed"
	default:
		return "provider_error"
	}
}
