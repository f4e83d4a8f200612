// Package fingerprint derives a change-detecting digest of an owner's current
// record set. The digest is a cache key, not a security primitive: it only has
// to change when record content or counts change, and stay stable when they
// don't, regardless of fetch order.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/moodloop/insight-server/internal/models"
)

// Compute builds the fingerprint for one owner's records. Volatile fields
// (row ids, exact timestamps) are excluded from the hashed content; counts are
// included so adding or removing a record always invalidates. providerID is
// mixed in so switching providers forces regeneration.
func Compute(moods []models.MoodRecord, journals []models.JournalRecord, providerID string) string {
	moodParts := make([]string, len(moods))
	for i, m := range moods {
		moodParts[i] = fmt.Sprintf("%s|%d", normalize(m.Mood), m.EnergyLevel)
	}

	journalParts := make([]string, len(journals))
	for i, j := range journals {
		journalParts[i] = strings.Join([]string{
			normalize(j.Title),
			normalize(j.Content),
			normalize(j.Mood),
		}, "|")
	}

	// Sort the joined content strings themselves so the digest cannot depend
	// on fetch order, including ties on occurred_at.
	sort.Strings(moodParts)
	sort.Strings(journalParts)

	h := sha256.New()
	fmt.Fprintf(h, "v1:%d:%d:%s\n", len(moods), len(journals), providerID)
	h.Write([]byte(strings.Join(moodParts, "\n")))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(journalParts, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
