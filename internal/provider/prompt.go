package provider

import (
	"fmt"
	"strings"

	"github.com/moodloop/insight-server/internal/models"
)

const enrichPrompt = `You are a wellbeing analyst. Analyze the following mood check-ins and journal entries and produce insights.

RULES:
1. Base every statement on the provided records only; invent nothing.
2. moodPrediction must be exactly one of likely_improve, likely_decline, stable.
3. overallSentiment must be exactly one of positive, negative, neutral.
4. sentimentScore is a number between -1 and 1.
5. Respond with JSON only, no markdown fences, no commentary.

MOOD CHECK-INS (newest first):
%s

JOURNAL ENTRIES (newest first):
%s

OUTPUT FORMAT (JSON):
{
  "sentiment": {
    "overallSentiment": "positive|negative|neutral",
    "sentimentScore": 0.0,
    "emotionalKeywords": ["..."],
    "stressIndicators": ["..."]
  },
  "predictions": {
    "moodPrediction": "likely_improve|likely_decline|stable",
    "riskFactors": ["..."],
    "positiveFactors": ["..."],
    "nextWeekPrediction": "one sentence"
  },
  "insights": ["2-4 short observations"],
  "recommendations": ["2-4 short suggestions"]
}

Analyze now:`

// BuildPrompt renders the consolidated prompt for one enrichment cycle.
func BuildPrompt(input EnrichInput) string {
	return fmt.Sprintf(enrichPrompt, formatMoods(input.Moods), formatJournals(input.Journals))
}

func formatMoods(moods []models.MoodRecord) string {
	if len(moods) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, m := range moods {
		fmt.Fprintf(&sb, "- mood=%s energy=%d/10", m.Mood, m.EnergyLevel)
		if m.Notes != "" {
			fmt.Fprintf(&sb, " notes=%q", truncate(m.Notes, 120))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatJournals(journals []models.JournalRecord) string {
	if len(journals) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, j := range journals {
		if j.Title != "" {
			fmt.Fprintf(&sb, "- %s: ", j.Title)
		} else {
			sb.WriteString("- ")
		}
		sb.WriteString(truncate(j.Content, 400))
		if j.Mood != "" {
			fmt.Fprintf(&sb, " (mood: %s)", j.Mood)
		}
		if len(j.Tags) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(j.Tags, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
