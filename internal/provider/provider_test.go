package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/moodloop/insight-server/internal/models"
)

func sampleInput() EnrichInput {
	return EnrichInput{
		Moods: []models.MoodRecord{
			{Mood: models.MoodGood, EnergyLevel: 7, Notes: "productive afternoon", OccurredAt: time.Now()},
		},
		Journals: []models.JournalRecord{
			{Title: "Tuesday", Content: "Long walk after work, felt calm.", Tags: []string{"walk"}, OccurredAt: time.Now()},
		},
	}
}

func TestGeminiEnrich(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "{\"insights\": []}"}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini(server.URL, "test-key", "")
	text, err := g.Enrich(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if text != `{"insights": []}` {
		t.Errorf("Enrich() = %q", text)
	}
	if gotPath != "/v1beta/models/"+defaultGeminiModel+":generateContent" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key query param = %q", gotKey)
	}
}

func TestOpenAIEnrich(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "analysis text"}}]}`))
	}))
	defer server.Close()

	o := NewOpenAI(server.URL, "sk-test", "")
	text, err := o.Enrich(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if text != "analysis text" {
		t.Errorf("Enrich() = %q", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("request path = %q", gotPath)
	}
}

func TestEnrichMissingCredential(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	for _, p := range []Provider{
		NewGemini(server.URL, "", ""),
		NewOpenAI(server.URL, "", ""),
	} {
		if _, err := p.Enrich(context.Background(), sampleInput()); !errors.Is(err, ErrNoCredential) {
			t.Errorf("%s: error = %v, want ErrNoCredential", p.Name(), err)
		}
	}
	if calls != 0 {
		t.Errorf("missing credential must not reach the network, got %d calls", calls)
	}
}

func TestEnrichErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{
			name:   "429 is a quota error",
			status: http.StatusTooManyRequests,
			check: func(err error) bool {
				var qe *QuotaError
				return errors.As(err, &qe) && qe.Status == http.StatusTooManyRequests
			},
		},
		{
			name:   "500 is transient",
			status: http.StatusInternalServerError,
			check: func(err error) bool {
				var te *TransientError
				return errors.As(err, &te)
			},
		},
		{
			name:   "503 is transient",
			status: http.StatusServiceUnavailable,
			check: func(err error) bool {
				var te *TransientError
				return errors.As(err, &te)
			},
		},
		{
			name:   "400 is malformed",
			status: http.StatusBadRequest,
			check: func(err error) bool {
				var me *MalformedError
				return errors.As(err, &me)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream says no", tt.status)
			}))
			defer server.Close()

			g := NewGemini(server.URL, "test-key", "")
			_, err := g.Enrich(context.Background(), sampleInput())
			if err == nil || !tt.check(err) {
				t.Errorf("error = %v, wrong classification", err)
			}
		})
	}
}

func TestEnrichMalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "internal proxy page"},
		{name: "empty candidates", body: `{"candidates": []}`},
		{name: "empty text", body: `{"candidates": [{"content": {"parts": [{"text": ""}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g := NewGemini(server.URL, "test-key", "")
			_, err := g.Enrich(context.Background(), sampleInput())
			var me *MalformedError
			if !errors.As(err, &me) {
				t.Errorf("error = %v, want MalformedError", err)
			}
		})
	}
}

func TestEnrichConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	o := NewOpenAI(server.URL, "sk-test", "")
	_, err := o.Enrich(context.Background(), sampleInput())
	var te *TransientError
	if !errors.As(err, &te) {
		t.Errorf("error = %v, want TransientError", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleInput())

	for _, want := range []string{
		"mood=good energy=7/10",
		"Tuesday: Long walk after work, felt calm.",
		"[walk]",
		"moodPrediction",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptEmptySections(t *testing.T) {
	prompt := BuildPrompt(EnrichInput{})
	if !strings.Contains(prompt, "(none)") {
		t.Error("empty sections should render as (none)")
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := truncate(long, 120)
	if len(got) != 120 {
		t.Errorf("len = %d, want 120", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated text should end with ellipsis")
	}
	if truncate("short", 120) != "short" {
		t.Error("short text should pass through untouched")
	}
}
