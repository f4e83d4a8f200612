// Package repair recovers structured data from malformed provider output.
// Providers wrap JSON in markdown fences, leave trailing commas, confuse
// arrays with objects, or mis-escape quotes; each strategy here is a pure
// text transform, applied in order until one parses. Exhaustion is a typed
// failure the orchestrator treats like any other malformed provider reply.
package repair

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/moodloop/insight-server/internal/models"
)

// ErrExhausted is returned when no strategy produced a parseable document.
var ErrExhausted = errors.New("all repair strategies exhausted")

var (
	fenceRegex         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
	quotedRunRegex     = regexp.MustCompile(`"([^"]{10,})"`)
)

// Payload parses a provider reply into the expected domain payload. Missing
// keys are default-filled; moodPrediction always comes back as one of the
// known values.
func Payload(raw string) (*models.ProviderPayload, error) {
	doc, err := object(raw)
	if err != nil {
		return nil, err
	}

	// At least one expected key must exist, otherwise this is some other
	// JSON the provider happened to emit.
	if _, ok := firstPresent(doc, "sentiment", "predictions", "insights", "recommendations"); !ok {
		return nil, ErrExhausted
	}

	payload := &models.ProviderPayload{}
	if rawSec, ok := doc["sentiment"]; ok {
		json.Unmarshal(rawSec, &payload.Sentiment)
	}
	if rawSec, ok := doc["predictions"]; ok {
		json.Unmarshal(rawSec, &payload.Predictions)
	}
	payload.Insights = stringSection(doc, "insights")
	payload.Recommendations = stringSection(doc, "recommendations")

	applyDefaults(payload)
	return payload, nil
}

// object runs the ordered object strategies over raw text.
func object(raw string) (map[string]json.RawMessage, error) {
	base := stripFences(raw)

	candidates := []string{
		base,
		trimToJSON(base),
		removeTrailingCommas(trimToJSON(base)),
		unwrapArray(removeTrailingCommas(trimToJSON(base))),
		wrapObject(removeTrailingCommas(base)),
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		var doc map[string]json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &doc); err == nil {
			return doc, nil
		}
	}
	return nil, ErrExhausted
}

// StringList extracts a list of strings from raw text expected to contain a
// JSON string array, degrading through manual extraction, quoted-run
// matching and finally sentence segmentation. Never returns an error; a
// hopeless input yields an empty slice.
func StringList(raw string) []string {
	base := removeTrailingCommas(stripFences(raw))

	var direct []string
	if err := json.Unmarshal([]byte(base), &direct); err == nil {
		return nonEmpty(direct)
	}

	if items := splitBracketed(base); len(items) > 0 {
		return items
	}

	if matches := quotedRunRegex.FindAllStringSubmatch(base, -1); len(matches) > 0 {
		items := make([]string, 0, len(matches))
		for _, m := range matches {
			items = append(items, m[1])
		}
		return items
	}

	return sentences(base, 3)
}

func stripFences(s string) string {
	if m := fenceRegex.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// trimToJSON slices from the first opening brace/bracket to the matching
// last closer, dropping prose the model wrapped around the document.
func trimToJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	end := strings.LastIndexAny(s, "}]")
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

func removeTrailingCommas(s string) string {
	return trailingCommaRegex.ReplaceAllString(s, "$1")
}

// unwrapArray recovers the single-object-wrapped-in-array confusion some
// providers produce.
func unwrapArray(s string) string {
	if !strings.HasPrefix(s, "[") {
		return ""
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return ""
	}
	for _, item := range items {
		trimmed := strings.TrimSpace(string(item))
		if strings.HasPrefix(trimmed, "{") {
			return trimmed
		}
	}
	return ""
}

// wrapObject adds missing outer braces around what looks like bare
// key/value content.
func wrapObject(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return ""
	}
	if !strings.Contains(s, `":`) {
		return ""
	}
	return "{" + s + "}"
}

// splitBracketed locates the outermost bracket pair and splits its body on
// top-level commas, stripping wrapping quotes per element. Tracks bracket
// depth only, so an element with a mis-escaped quote still comes out whole.
func splitBracketed(s string) []string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil
	}
	body := s[start+1 : end]

	var items []string
	depth := 0
	elemStart := 0
	for i, r := range body {
		switch r {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, body[elemStart:i])
				elemStart = i + 1
			}
		}
	}
	items = append(items, body[elemStart:])

	var cleaned []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, `"`)
		item = strings.TrimSpace(item)
		if item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}

// sentences naively segments text, keeping runs longer than 20 characters.
func sentences(s string, max int) []string {
	var items []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		part = strings.TrimSpace(part)
		if len(part) > 20 {
			items = append(items, part)
		}
		if len(items) >= max {
			break
		}
	}
	if items == nil {
		return []string{}
	}
	return items
}

// stringSection decodes a []string section, degrading to StringList when the
// section itself is malformed.
func stringSection(doc map[string]json.RawMessage, key string) []string {
	rawSec, ok := doc[key]
	if !ok {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal(rawSec, &items); err == nil {
		return nonEmpty(items)
	}
	var single string
	if err := json.Unmarshal(rawSec, &single); err == nil && single != "" {
		return []string{single}
	}
	return StringList(string(rawSec))
}

// applyDefaults fills anything a partial reply left out so downstream code
// never sees a nil list or an unknown enum value.
func applyDefaults(p *models.ProviderPayload) {
	switch p.Predictions.MoodPrediction {
	case models.PredictionImprove, models.PredictionDecline, models.PredictionStable:
	default:
		p.Predictions.MoodPrediction = models.PredictionStable
	}
	switch p.Sentiment.OverallSentiment {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
	default:
		p.Sentiment.OverallSentiment = models.SentimentNeutral
	}
	if p.Sentiment.SentimentScore > 1 {
		p.Sentiment.SentimentScore = 1
	}
	if p.Sentiment.SentimentScore < -1 {
		p.Sentiment.SentimentScore = -1
	}
	if p.Sentiment.EmotionalKeywords == nil {
		p.Sentiment.EmotionalKeywords = []string{}
	}
	if p.Sentiment.StressIndicators == nil {
		p.Sentiment.StressIndicators = []string{}
	}
	if p.Predictions.RiskFactors == nil {
		p.Predictions.RiskFactors = []string{}
	}
	if p.Predictions.PositiveFactors == nil {
		p.Predictions.PositiveFactors = []string{}
	}
	if p.Insights == nil {
		p.Insights = []string{}
	}
	if p.Recommendations == nil {
		p.Recommendations = []string{}
	}
}

func firstPresent(doc map[string]json.RawMessage, keys ...string) (string, bool) {
	for _, k := range keys {
		if _, ok := doc[k]; ok {
			return k, true
		}
	}
	return "", false
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
