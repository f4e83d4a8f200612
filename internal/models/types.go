package models

import "time"

// Mood levels, best to worst
const (
	MoodExcellent = "excellent"
	MoodGood      = "good"
	MoodNeutral   = "neutral"
	MoodBad       = "bad"
	MoodTerrible  = "terrible"
)

// MoodScore maps a mood level to its numeric score (excellent=5 .. terrible=1).
// Unknown moods score 3 so a malformed row doesn't skew predictions.
func MoodScore(mood string) int {
	switch mood {
	case MoodExcellent:
		return 5
	case MoodGood:
		return 4
	case MoodNeutral:
		return 3
	case MoodBad:
		return 2
	case MoodTerrible:
		return 1
	default:
		return 3
	}
}

// ValidMood reports whether a mood level is one of the five known values.
func ValidMood(mood string) bool {
	switch mood {
	case MoodExcellent, MoodGood, MoodNeutral, MoodBad, MoodTerrible:
		return true
	}
	return false
}

// MoodRecord is a single mood check-in. Owned by the records store,
// read-only once fetched.
type MoodRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Mood        string    `json:"mood"`
	EnergyLevel int       `json:"energy_level"` // 1-10
	Notes       string    `json:"notes,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// JournalRecord is a single journal entry.
type JournalRecord struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Title      string    `json:"title,omitempty"`
	Content    string    `json:"content"`
	Mood       string    `json:"mood,omitempty"`
	Tags       []string  `json:"tags"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sentiment classifications
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Mood predictions
const (
	PredictionImprove = "likely_improve"
	PredictionDecline = "likely_decline"
	PredictionStable  = "stable"
)

// SentimentAnalysis summarizes the emotional tone of recent journal entries.
type SentimentAnalysis struct {
	OverallSentiment  string   `json:"overallSentiment"` // positive|negative|neutral
	SentimentScore    float64  `json:"sentimentScore"`   // [-1, 1]
	EmotionalKeywords []string `json:"emotionalKeywords"`
	StressIndicators  []string `json:"stressIndicators"`
}

// PredictiveInsights projects mood direction from recent check-ins.
type PredictiveInsights struct {
	MoodPrediction     string   `json:"moodPrediction"` // likely_improve|likely_decline|stable
	RiskFactors        []string `json:"riskFactors"`
	PositiveFactors    []string `json:"positiveFactors"`
	NextWeekPrediction string   `json:"nextWeekPrediction"`
}

// EnhancedInsights is the computed enrichment artifact. The provider path and
// the heuristic path both produce this shape; callers cannot tell them apart.
type EnhancedInsights struct {
	MoodSummary       string             `json:"moodSummary"`
	JournalSummary    string             `json:"journalSummary"`
	Sentiment         SentimentAnalysis  `json:"sentiment"`
	Predictions       PredictiveInsights `json:"predictions"`
	GeneratedInsights []string           `json:"generatedInsights"`
	Recommendations   []string           `json:"recommendations"`
	WeeklyTrend       string             `json:"weeklyTrend"` // positive|negative|neutral
}

// ProviderPayload is the domain JSON expected inside a provider's text reply.
type ProviderPayload struct {
	Sentiment       SentimentAnalysis  `json:"sentiment"`
	Predictions     PredictiveInsights `json:"predictions"`
	Insights        []string           `json:"insights"`
	Recommendations []string           `json:"recommendations"`
}

// CreateMoodRequest is the body for POST /moods
type CreateMoodRequest struct {
	Mood        string `json:"mood"`
	EnergyLevel int    `json:"energy_level"`
	Notes       string `json:"notes,omitempty"`
	OccurredAt  string `json:"occurred_at,omitempty"` // RFC3339, defaults to server time
}

// CreateJournalRequest is the body for POST /journals
type CreateJournalRequest struct {
	Title      string   `json:"title,omitempty"`
	Content    string   `json:"content"`
	Mood       string   `json:"mood,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	OccurredAt string   `json:"occurred_at,omitempty"`
}

// RecordResponse is returned after creating a record
type RecordResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// InsightsResponse is returned by the insights endpoint
type InsightsResponse struct {
	Insights   *EnhancedInsights `json:"insights"`
	AIEnhanced bool              `json:"ai_enhanced"`
	Cached     bool              `json:"cached"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Cache    string `json:"cache"`
	Version  string `json:"version"`
}

// Status constants
const (
	StatusReceived = "received"
)
