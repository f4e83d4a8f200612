// Package provider issues one inference request per enrichment cycle against
// a remote model API. A single consolidated prompt batches sentiment,
// prediction, insight and recommendation generation into one round trip, so
// one cycle costs one rate-limit consumption. The client validates transport
// level well-formedness only; parsing the domain JSON is the repair
// pipeline's job.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/moodloop/insight-server/internal/config"
	"github.com/moodloop/insight-server/internal/models"
)

// callTimeout bounds the single outbound call per cycle.
const callTimeout = 30 * time.Second

// EnrichInput carries both record collections for one owner.
type EnrichInput struct {
	Moods    []models.MoodRecord
	Journals []models.JournalRecord
}

// Provider is the single capability the orchestrator depends on. One
// implementation per remote API, selected at construction time; the
// orchestrator never branches on provider identity.
type Provider interface {
	Name() string
	// Enrich returns the raw text payload of the model reply.
	Enrich(ctx context.Context, input EnrichInput) (string, error)
}

// New selects a provider implementation from config. Returns nil for
// "none", which callers treat the same as a missing credential.
func New(cfg *config.Config) Provider {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(cfg.ProviderURL, cfg.ProviderKey, cfg.ProviderModel)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.ProviderURL, cfg.ProviderKey, cfg.ProviderModel)
	default:
		return nil
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: callTimeout}
}

// classifyStatus maps a non-2xx status to the error taxonomy.
func classifyStatus(status int, body string) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &QuotaError{Status: status}
	case status >= 500:
		return &TransientError{Err: fmt.Errorf("status %d: %s", status, body)}
	default:
		return &MalformedError{Reason: body}
	}
}
