// Package heuristic computes insights offline, without network or rate-limit
// interaction. Everything here is deterministic: identical input record sets
// produce identical output, so cached heuristic results stay stable across
// regenerations.
package heuristic

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/moodloop/insight-server/internal/models"
)

// predictionWindow is how many recent mood check-ins feed the prediction.
const predictionWindow = 7

var wordRegex = regexp.MustCompile(`[a-zA-Z]+`)

// AnalyzeSentiment scans journal text against the fixed lexicons and scores
// overall tone.
func AnalyzeSentiment(journals []models.JournalRecord) models.SentimentAnalysis {
	var positiveCount, negativeCount int
	keywordSet := make(map[string]bool)
	stressSet := make(map[string]bool)

	for _, j := range journals {
		text := strings.ToLower(j.Title + " " + j.Content)
		for _, word := range wordRegex.FindAllString(text, -1) {
			switch {
			case positiveWords[word]:
				positiveCount++
				keywordSet[word] = true
			case negativeWords[word]:
				negativeCount++
				keywordSet[word] = true
			}
			if stressWords[word] {
				stressSet[word] = true
			}
		}
	}

	entries := len(journals)
	if entries < 1 {
		entries = 1
	}
	score := float64(positiveCount-negativeCount) / float64(entries)
	score = clamp(score, -1, 1)

	overall := models.SentimentNeutral
	if score > 0.1 {
		overall = models.SentimentPositive
	} else if score < -0.1 {
		overall = models.SentimentNegative
	}

	return models.SentimentAnalysis{
		OverallSentiment:  overall,
		SentimentScore:    score,
		EmotionalKeywords: sortedKeys(keywordSet),
		StressIndicators:  sortedKeys(stressSet),
	}
}

// Predict projects mood direction from the most recent check-ins. Moods are
// expected newest first, as the records store returns them.
func Predict(moods []models.MoodRecord) models.PredictiveInsights {
	recent := moods
	if len(recent) > predictionWindow {
		recent = recent[:predictionWindow]
	}

	result := models.PredictiveInsights{
		MoodPrediction:  models.PredictionStable,
		RiskFactors:     []string{},
		PositiveFactors: []string{},
	}

	if len(recent) == 0 {
		result.NextWeekPrediction = "Not enough mood data yet to project the coming week."
		return result
	}

	var scoreSum, energySum, lowDays, highDays int
	for _, m := range recent {
		scoreSum += models.MoodScore(m.Mood)
		energySum += m.EnergyLevel
		switch m.Mood {
		case models.MoodBad, models.MoodTerrible:
			lowDays++
		case models.MoodExcellent, models.MoodGood:
			highDays++
		}
	}
	avgScore := float64(scoreSum) / float64(len(recent))
	avgEnergy := float64(energySum) / float64(len(recent))

	if avgScore > 3.5 {
		result.MoodPrediction = models.PredictionImprove
	} else if avgScore < 2.5 {
		result.MoodPrediction = models.PredictionDecline
	}

	if lowDays > 2 {
		result.RiskFactors = append(result.RiskFactors,
			fmt.Sprintf("%d of the last %d check-ins were difficult days", lowDays, len(recent)))
	}
	if avgEnergy < 4 {
		result.RiskFactors = append(result.RiskFactors, "Energy levels have been running low")
	}
	if highDays > 2 {
		result.PositiveFactors = append(result.PositiveFactors,
			fmt.Sprintf("%d of the last %d check-ins were good or excellent", highDays, len(recent)))
	}
	if avgEnergy >= 7 {
		result.PositiveFactors = append(result.PositiveFactors, "Energy levels have been consistently high")
	}

	switch result.MoodPrediction {
	case models.PredictionImprove:
		result.NextWeekPrediction = "Recent check-ins trend upward; next week looks likely to continue improving."
	case models.PredictionDecline:
		result.NextWeekPrediction = "Recent check-ins trend downward; next week may be harder without a change of pace."
	default:
		result.NextWeekPrediction = "Mood has been steady; expect a similar week ahead."
	}

	return result
}

// Insights assembles observations from record counts and averages.
func Insights(moods []models.MoodRecord, journals []models.JournalRecord) []string {
	var insights []string

	if len(moods) == 0 && len(journals) == 0 {
		return []string{"No activity recorded yet. Start with a mood check-in or a short journal entry."}
	}

	if len(moods) > 0 {
		avg := averageMoodScore(moods)
		switch {
		case avg > 3.5:
			insights = append(insights, fmt.Sprintf("Across %d recent check-ins your mood has been mostly positive.", len(moods)))
		case avg < 2.5:
			insights = append(insights, fmt.Sprintf("Across %d recent check-ins your mood has been mostly low.", len(moods)))
		default:
			insights = append(insights, fmt.Sprintf("Across %d recent check-ins your mood has been fairly balanced.", len(moods)))
		}
	} else {
		insights = append(insights, "No mood check-ins recorded recently; journal entries carry this analysis.")
	}

	if len(journals) >= 3 {
		insights = append(insights, fmt.Sprintf("You have kept a steady journaling habit with %d recent entries.", len(journals)))
	} else if len(journals) > 0 {
		insights = append(insights, "A few journal entries exist; more regular writing sharpens these insights.")
	}

	return insights
}

// Recommendations assembles suggestions from the same thresholds.
func Recommendations(moods []models.MoodRecord, journals []models.JournalRecord) []string {
	var recs []string

	if len(moods) == 0 {
		recs = append(recs, "Log a daily mood check-in to build a baseline.")
	} else if averageMoodScore(moods) < 2.5 {
		recs = append(recs, "Consider a short daily walk or reaching out to someone you trust.")
		recs = append(recs, "Small routines (sleep, meals, light exercise) tend to steady low stretches.")
	} else {
		recs = append(recs, "Keep up the habits that are working; consistency beats intensity.")
	}

	if len(journals) == 0 {
		recs = append(recs, "Try a short journal entry; even two sentences helps track what drives your mood.")
	}

	return recs
}

// Build produces a complete insights artifact from the heuristic path alone.
func Build(moods []models.MoodRecord, journals []models.JournalRecord) *models.EnhancedInsights {
	sentiment := AnalyzeSentiment(journals)
	predictions := Predict(moods)

	return &models.EnhancedInsights{
		MoodSummary:       MoodSummary(moods),
		JournalSummary:    JournalSummary(journals),
		Sentiment:         sentiment,
		Predictions:       predictions,
		GeneratedInsights: Insights(moods, journals),
		Recommendations:   Recommendations(moods, journals),
		WeeklyTrend:       WeeklyTrend(moods, sentiment),
	}
}

// MoodSummary describes the mood check-in window in one line.
func MoodSummary(moods []models.MoodRecord) string {
	if len(moods) == 0 {
		return "No mood check-ins recorded."
	}
	avg := averageMoodScore(moods)
	return fmt.Sprintf("%d check-ins with an average mood score of %.1f out of 5.", len(moods), avg)
}

// JournalSummary describes the journal window in one line.
func JournalSummary(journals []models.JournalRecord) string {
	if len(journals) == 0 {
		return "No journal entries recorded."
	}
	return fmt.Sprintf("%d journal entries covering your recent days.", len(journals))
}

// WeeklyTrend leans on mood scores when check-ins exist, otherwise on
// journal sentiment.
func WeeklyTrend(moods []models.MoodRecord, sentiment models.SentimentAnalysis) string {
	if len(moods) > 0 {
		avg := averageMoodScore(moods)
		if avg > 3.5 {
			return models.SentimentPositive
		}
		if avg < 2.5 {
			return models.SentimentNegative
		}
		return models.SentimentNeutral
	}
	return sentiment.OverallSentiment
}

func averageMoodScore(moods []models.MoodRecord) float64 {
	if len(moods) == 0 {
		return 0
	}
	var sum int
	for _, m := range moods {
		sum += models.MoodScore(m.Mood)
	}
	return float64(sum) / float64(len(moods))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
