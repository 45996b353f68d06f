// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package database

import (
	"context"
	"testing"

	"github.com/mbellows/discograph/internal/config"
	"github.com/mbellows/discograph/internal/models"
)

// testDBSemaphore serializes DuckDB usage across parallel tests. Concurrent
// CGO calls from many in-memory databases can hang under CI resource
// pressure, so only one test holds a live connection at a time.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database. The semaphore is held
// for the entire test lifecycle and released via t.Cleanup.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if cerr := db.Close(); cerr != nil {
			t.Errorf("Failed to close test database: %v", cerr)
		}
	})

	return db
}

func strPtr(s string) *string {
	return &s
}

func mustCreate(t *testing.T, db *DB, a *models.Artist) {
	t.Helper()
	if err := db.CreateArtist(context.Background(), a); err != nil {
		t.Fatalf("CreateArtist(%s) failed: %v", a.ID, err)
	}
}

func TestCreateAndGetArtist(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	artist := &models.Artist{
		ID:       "queen",
		Name:     "Queen",
		Genre:    strPtr("Rock"),
		Bio:      strPtr("Formed in London in 1970."),
		ImageURL: strPtr("https://example.com/queen.jpg"),
		Songs:    []string{"Bohemian Rhapsody", "Don't Stop Me Now"},
	}
	mustCreate(t, db, artist)

	got, err := db.GetArtist(ctx, "queen")
	if err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}

	if got.Name != "Queen" {
		t.Errorf("Name = %q, want %q", got.Name, "Queen")
	}
	if got.Genre == nil || *got.Genre != "Rock" {
		t.Errorf("Genre = %v, want Rock", got.Genre)
	}
	if len(got.Songs) != 2 || got.Songs[0] != "Bohemian Rhapsody" {
		t.Errorf("Songs = %v, want ordered song list", got.Songs)
	}
	if got.Popularity != 0 {
		t.Errorf("Popularity = %d, want 0 for new artists", got.Popularity)
	}
}

func TestGetArtistNotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	_, err := db.GetArtist(context.Background(), "nope")
	if err != ErrNotFound {
		t.Errorf("GetArtist(missing) = %v, want ErrNotFound", err)
	}
}

func TestCreateArtistConflict(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	mustCreate(t, db, &models.Artist{ID: "dup", Name: "First"})

	err := db.CreateArtist(context.Background(), &models.Artist{ID: "dup", Name: "Second"})
	if err != ErrConflict {
		t.Fatalf("CreateArtist(duplicate) = %v, want ErrConflict", err)
	}

	// The original must be untouched.
	got, err := db.GetArtist(context.Background(), "dup")
	if err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}
	if got.Name != "First" {
		t.Errorf("Name = %q, want %q after rejected duplicate", got.Name, "First")
	}
}

func TestUpdateArtistFields(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreate(t, db, &models.Artist{
		ID:    "abba",
		Name:  "ABBA",
		Genre: strPtr("Pop"),
		Songs: []string{"Waterloo"},
	})

	err := db.UpdateArtistFields(ctx, "abba", models.ArtistUpdate{
		Bio: strPtr("Swedish supergroup."),
	})
	if err != nil {
		t.Fatalf("UpdateArtistFields failed: %v", err)
	}

	got, err := db.GetArtist(ctx, "abba")
	if err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}
	if got.Bio == nil || *got.Bio != "Swedish supergroup." {
		t.Errorf("Bio = %v, want updated bio", got.Bio)
	}
	// Untouched fields keep their values.
	if got.Genre == nil || *got.Genre != "Pop" {
		t.Errorf("Genre = %v, want Pop", got.Genre)
	}
	if len(got.Songs) != 1 {
		t.Errorf("Songs = %v, want untouched song list", got.Songs)
	}
}

func TestUpdateArtistFieldsNotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	err := db.UpdateArtistFields(context.Background(), "ghost", models.ArtistUpdate{
		Name: strPtr("Ghost"),
	})
	if err != ErrNotFound {
		t.Errorf("UpdateArtistFields(missing) = %v, want ErrNotFound", err)
	}
}

func TestUpdateArtistFieldsEmptyUpdate(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	mustCreate(t, db, &models.Artist{ID: "x", Name: "X"})

	// An empty update degenerates to an existence check.
	if err := db.UpdateArtistFields(context.Background(), "x", models.ArtistUpdate{}); err != nil {
		t.Errorf("UpdateArtistFields(empty) = %v, want nil", err)
	}
	if err := db.UpdateArtistFields(context.Background(), "y", models.ArtistUpdate{}); err != ErrNotFound {
		t.Errorf("UpdateArtistFields(empty, missing) = %v, want ErrNotFound", err)
	}
}

func TestReplaceSongs(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreate(t, db, &models.Artist{
		ID:    "toto",
		Name:  "Toto",
		Songs: []string{"Africa", "Rosanna"},
	})

	if err := db.ReplaceSongs(ctx, "toto", []string{"Hold the Line"}); err != nil {
		t.Fatalf("ReplaceSongs failed: %v", err)
	}

	got, err := db.GetArtist(ctx, "toto")
	if err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}
	if len(got.Songs) != 1 || got.Songs[0] != "Hold the Line" {
		t.Errorf("Songs = %v, want full replacement", got.Songs)
	}

	// An empty list clears the songs entirely.
	if err := db.ReplaceSongs(ctx, "toto", nil); err != nil {
		t.Fatalf("ReplaceSongs(empty) failed: %v", err)
	}
	got, err = db.GetArtist(ctx, "toto")
	if err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}
	if len(got.Songs) != 0 {
		t.Errorf("Songs = %v, want empty after clear", got.Songs)
	}
}

func TestReplaceSongsNotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	err := db.ReplaceSongs(context.Background(), "ghost", []string{"Song"})
	if err != ErrNotFound {
		t.Errorf("ReplaceSongs(missing) = %v, want ErrNotFound", err)
	}
}

func TestDeleteArtist(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreate(t, db, &models.Artist{
		ID:    "gone",
		Name:  "Gone",
		Songs: []string{"One", "Two"},
	})

	if err := db.DeleteArtist(ctx, "gone"); err != nil {
		t.Fatalf("DeleteArtist failed: %v", err)
	}

	if _, err := db.GetArtist(ctx, "gone"); err != ErrNotFound {
		t.Errorf("GetArtist(deleted) = %v, want ErrNotFound", err)
	}

	// Song rows must be gone too.
	var count int
	row := db.Conn().QueryRow(`SELECT count(*) FROM songs WHERE artist_id = 'gone'`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("counting songs failed: %v", err)
	}
	if count != 0 {
		t.Errorf("orphaned song rows = %d, want 0", count)
	}

	if err := db.DeleteArtist(ctx, "gone"); err != ErrNotFound {
		t.Errorf("DeleteArtist(missing) = %v, want ErrNotFound", err)
	}
}

func TestListArtists(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreate(t, db, &models.Artist{ID: "a1", Name: "Aretha Franklin", Genre: strPtr("Soul")})
	mustCreate(t, db, &models.Artist{ID: "a2", Name: "Bob Dylan", Genre: strPtr("Folk"),
		Songs: []string{"Hurricane"}})
	mustCreate(t, db, &models.Artist{ID: "a3", Name: "Carole King", Genre: strPtr("Pop")})

	tests := []struct {
		name      string
		q         string
		page      int
		pageSize  int
		wantIDs   []string
		wantTotal int64
	}{
		{
			name:      "no filter returns all, name-ordered",
			q:         "",
			page:      1,
			pageSize:  10,
			wantIDs:   []string{"a1", "a2", "a3"},
			wantTotal: 3,
		},
		{
			name:      "filter by name is case-insensitive",
			q:         "dylan",
			page:      1,
			pageSize:  10,
			wantIDs:   []string{"a2"},
			wantTotal: 1,
		},
		{
			name:      "filter matches genre",
			q:         "soul",
			page:      1,
			pageSize:  10,
			wantIDs:   []string{"a1"},
			wantTotal: 1,
		},
		{
			name:      "filter matches song titles",
			q:         "hurricane",
			page:      1,
			pageSize:  10,
			wantIDs:   []string{"a2"},
			wantTotal: 1,
		},
		{
			name:      "second page with total from full match set",
			q:         "",
			page:      2,
			pageSize:  2,
			wantIDs:   []string{"a3"},
			wantTotal: 3,
		},
		{
			name:      "page past the end is empty, not an error",
			q:         "",
			page:      9,
			pageSize:  10,
			wantIDs:   []string{},
			wantTotal: 3,
		},
		{
			name:      "no matches",
			q:         "zzz",
			page:      1,
			pageSize:  10,
			wantIDs:   []string{},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		artists, total, err := db.ListArtists(ctx, tt.q, tt.page, tt.pageSize)
		if err != nil {
			t.Errorf("%s: ListArtists failed: %v", tt.name, err)
			continue
		}
		if total != tt.wantTotal {
			t.Errorf("%s: total = %d, want %d", tt.name, total, tt.wantTotal)
		}
		if len(artists) != len(tt.wantIDs) {
			t.Errorf("%s: got %d artists, want %d", tt.name, len(artists), len(tt.wantIDs))
			continue
		}
		for i, want := range tt.wantIDs {
			if artists[i].ID != want {
				t.Errorf("%s: artists[%d].ID = %q, want %q", tt.name, i, artists[i].ID, want)
			}
		}
	}
}

func TestListArtistsMetacharactersMatchLiterally(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreate(t, db, &models.Artist{ID: "m1", Name: "100% Hits"})
	mustCreate(t, db, &models.Artist{ID: "m2", Name: "1000 Hits"})
	mustCreate(t, db, &models.Artist{ID: "m3", Name: "snake_case"})
	mustCreate(t, db, &models.Artist{ID: "m4", Name: "snakeXcase"})

	tests := []struct {
		name    string
		q       string
		wantIDs []string
	}{
		{
			name:    "percent is a literal character, not a wildcard",
			q:       "100%",
			wantIDs: []string{"m1"},
		},
		{
			name:    "underscore is a literal character, not a wildcard",
			q:       "snake_",
			wantIDs: []string{"m3"},
		},
		{
			name:    "backslash is a literal character",
			q:       `snake\`,
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		artists, total, err := db.ListArtists(ctx, tt.q, 1, 10)
		if err != nil {
			t.Errorf("%s: ListArtists failed: %v", tt.name, err)
			continue
		}
		if total != int64(len(tt.wantIDs)) {
			t.Errorf("%s: total = %d, want %d", tt.name, total, len(tt.wantIDs))
		}
		if len(artists) != len(tt.wantIDs) {
			t.Errorf("%s: got %d artists, want %d", tt.name, len(artists), len(tt.wantIDs))
			continue
		}
		for i, want := range tt.wantIDs {
			if artists[i].ID != want {
				t.Errorf("%s: artists[%d].ID = %q, want %q", tt.name, i, artists[i].ID, want)
			}
		}
	}
}

func TestListFeatured(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	names := []struct {
		id  string
		pop int
	}{
		{"f1", 10}, {"f2", 90}, {"f3", 50}, {"f4", 70}, {"f5", 30}, {"f6", 60},
	}
	for _, n := range names {
		mustCreate(t, db, &models.Artist{ID: n.id, Name: n.id, Popularity: n.pop})
	}

	featured, err := db.ListFeatured(ctx, 5)
	if err != nil {
		t.Fatalf("ListFeatured failed: %v", err)
	}

	wantOrder := []string{"f2", "f4", "f6", "f3", "f5"}
	if len(featured) != len(wantOrder) {
		t.Fatalf("got %d featured artists, want %d", len(featured), len(wantOrder))
	}
	for i, want := range wantOrder {
		if featured[i].ID != want {
			t.Errorf("featured[%d].ID = %q, want %q", i, featured[i].ID, want)
		}
	}
}

func TestUpsertArtist(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	artist := &models.Artist{
		ID:         "seeded",
		Name:       "Seeded Artist",
		Genre:      strPtr("Jazz"),
		Popularity: 42,
		Songs:      []string{"First", "Second"},
	}

	created, err := db.UpsertArtist(ctx, artist)
	if err != nil {
		t.Fatalf("UpsertArtist failed: %v", err)
	}
	if !created {
		t.Error("first upsert should report created")
	}

	// Re-seed with a different popularity and an overlapping song list.
	again := &models.Artist{
		ID:         "seeded",
		Name:       "Seeded Artist (updated)",
		Genre:      strPtr("Fusion"),
		Popularity: 99,
		Songs:      []string{"Second", "Third"},
	}
	created, err = db.UpsertArtist(ctx, again)
	if err != nil {
		t.Fatalf("UpsertArtist(again) failed: %v", err)
	}
	if created {
		t.Error("second upsert should not report created")
	}

	got, err := db.GetArtist(ctx, "seeded")
	if err != nil {
		t.Fatalf("GetArtist failed: %v", err)
	}
	if got.Name != "Seeded Artist (updated)" {
		t.Errorf("Name = %q, want refreshed name", got.Name)
	}
	if got.Popularity != 42 {
		t.Errorf("Popularity = %d, want 42 preserved across re-seed", got.Popularity)
	}
	wantSongs := []string{"First", "Second", "Third"}
	if len(got.Songs) != len(wantSongs) {
		t.Fatalf("Songs = %v, want %v", got.Songs, wantSongs)
	}
	for i, want := range wantSongs {
		if got.Songs[i] != want {
			t.Errorf("Songs[%d] = %q, want %q", i, got.Songs[i], want)
		}
	}
}
