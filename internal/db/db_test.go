package db

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/moodloop/insight-server/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestInsertAndListMoods(t *testing.T) {
	database := setupTestDB(t)
	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	records := []models.MoodRecord{
		{ID: "m1", OwnerID: "alice", Mood: models.MoodGood, EnergyLevel: 7, Notes: "slept well", OccurredAt: base},
		{ID: "m2", OwnerID: "alice", Mood: models.MoodBad, EnergyLevel: 3, OccurredAt: base.Add(48 * time.Hour)},
		{ID: "m3", OwnerID: "alice", Mood: models.MoodNeutral, EnergyLevel: 5, OccurredAt: base.Add(24 * time.Hour)},
		{ID: "m4", OwnerID: "bob", Mood: models.MoodExcellent, EnergyLevel: 9, OccurredAt: base},
	}
	for _, m := range records {
		if err := database.InsertMood(m); err != nil {
			t.Fatalf("InsertMood(%s) error: %v", m.ID, err)
		}
	}

	moods, err := database.ListRecentMoods("alice", 10)
	if err != nil {
		t.Fatalf("ListRecentMoods() error: %v", err)
	}
	if len(moods) != 3 {
		t.Fatalf("got %d moods, want 3", len(moods))
	}

	// Newest first.
	gotIDs := []string{moods[0].ID, moods[1].ID, moods[2].ID}
	if !reflect.DeepEqual(gotIDs, []string{"m2", "m3", "m1"}) {
		t.Errorf("order = %v, want [m2 m3 m1]", gotIDs)
	}
	if moods[2].Notes != "slept well" {
		t.Errorf("Notes = %q", moods[2].Notes)
	}
	if !moods[2].OccurredAt.Equal(base) {
		t.Errorf("OccurredAt = %v, want %v", moods[2].OccurredAt, base)
	}
}

func TestListRecentMoodsLimit(t *testing.T) {
	database := setupTestDB(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		m := models.MoodRecord{
			ID: string(rune('a' + i)), OwnerID: "alice",
			Mood: models.MoodNeutral, EnergyLevel: 5,
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := database.InsertMood(m); err != nil {
			t.Fatalf("InsertMood() error: %v", err)
		}
	}

	moods, err := database.ListRecentMoods("alice", 2)
	if err != nil {
		t.Fatalf("ListRecentMoods() error: %v", err)
	}
	if len(moods) != 2 {
		t.Errorf("got %d moods, want 2", len(moods))
	}
}

func TestInsertAndListJournals(t *testing.T) {
	database := setupTestDB(t)
	base := time.Date(2026, 8, 20, 21, 0, 0, 0, time.UTC)

	entries := []models.JournalRecord{
		{ID: "j1", OwnerID: "alice", Title: "Monday", Content: "Busy day.", Mood: models.MoodNeutral,
			Tags: []string{"work", "deadline"}, OccurredAt: base},
		{ID: "j2", OwnerID: "alice", Content: "Untitled thoughts.", OccurredAt: base.Add(24 * time.Hour)},
	}
	for _, j := range entries {
		if err := database.InsertJournal(j); err != nil {
			t.Fatalf("InsertJournal(%s) error: %v", j.ID, err)
		}
	}

	journals, err := database.ListRecentJournals("alice", 10)
	if err != nil {
		t.Fatalf("ListRecentJournals() error: %v", err)
	}
	if len(journals) != 2 {
		t.Fatalf("got %d journals, want 2", len(journals))
	}
	if journals[0].ID != "j2" {
		t.Errorf("first = %s, want j2 (newest first)", journals[0].ID)
	}
	if !reflect.DeepEqual(journals[1].Tags, []string{"work", "deadline"}) {
		t.Errorf("Tags = %v", journals[1].Tags)
	}
	if journals[0].Title != "" || journals[0].Mood != "" {
		t.Error("optional fields should round-trip as empty")
	}
}

func TestListUnknownOwnerEmpty(t *testing.T) {
	database := setupTestDB(t)

	moods, err := database.ListRecentMoods("nobody", 10)
	if err != nil {
		t.Fatalf("ListRecentMoods() error: %v", err)
	}
	if len(moods) != 0 {
		t.Errorf("got %d moods, want 0", len(moods))
	}
}

func TestCacheUpsertAndGet(t *testing.T) {
	database := setupTestDB(t)
	expires := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

	if err := database.UpsertCache("alice", "hash-1", `{"v": 1}`, expires); err != nil {
		t.Fatalf("UpsertCache() error: %v", err)
	}

	row, err := database.GetCache("alice")
	if err != nil {
		t.Fatalf("GetCache() error: %v", err)
	}
	if row == nil {
		t.Fatal("GetCache() = nil, want row")
	}
	if row.DataHash != "hash-1" || row.InsightsData != `{"v": 1}` {
		t.Errorf("row = %+v", row)
	}
	if !row.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt = %v, want %v", row.ExpiresAt, expires)
	}

	// Second upsert replaces, never duplicates.
	if err := database.UpsertCache("alice", "hash-2", `{"v": 2}`, expires.Add(time.Hour)); err != nil {
		t.Fatalf("UpsertCache() error: %v", err)
	}
	row, err = database.GetCache("alice")
	if err != nil {
		t.Fatalf("GetCache() error: %v", err)
	}
	if row.DataHash != "hash-2" {
		t.Errorf("DataHash = %q, want hash-2", row.DataHash)
	}
}

func TestGetCacheMissing(t *testing.T) {
	database := setupTestDB(t)

	row, err := database.GetCache("nobody")
	if err != nil {
		t.Fatalf("GetCache() error: %v", err)
	}
	if row != nil {
		t.Errorf("GetCache() = %+v, want nil", row)
	}
}

func TestDeleteCache(t *testing.T) {
	database := setupTestDB(t)

	if err := database.UpsertCache("alice", "h", "{}", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("UpsertCache() error: %v", err)
	}
	if err := database.DeleteCache("alice"); err != nil {
		t.Fatalf("DeleteCache() error: %v", err)
	}
	row, err := database.GetCache("alice")
	if err != nil {
		t.Fatalf("GetCache() error: %v", err)
	}
	if row != nil {
		t.Error("row should be gone after delete")
	}

	// Deleting an absent row is a no-op.
	if err := database.DeleteCache("alice"); err != nil {
		t.Errorf("DeleteCache() on missing row error: %v", err)
	}
}

func TestSweepExpiredCache(t *testing.T) {
	database := setupTestDB(t)
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

	fixtures := []struct {
		owner   string
		expires time.Time
	}{
		{"expired-1", now.Add(-time.Hour)},
		{"expired-2", now.Add(-time.Minute)},
		{"live", now.Add(time.Hour)},
	}
	for _, f := range fixtures {
		if err := database.UpsertCache(f.owner, "h", "{}", f.expires); err != nil {
			t.Fatalf("UpsertCache(%s) error: %v", f.owner, err)
		}
	}

	n, err := database.SweepExpiredCache(now)
	if err != nil {
		t.Fatalf("SweepExpiredCache() error: %v", err)
	}
	if n != 2 {
		t.Errorf("swept %d rows, want 2", n)
	}

	row, err := database.GetCache("live")
	if err != nil {
		t.Fatalf("GetCache() error: %v", err)
	}
	if row == nil {
		t.Error("unexpired row should survive the sweep")
	}
}
