// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

// Package seed loads an artists.json dataset into the catalog.
//
// Seeding is an upsert: new artists are inserted with a random popularity
// score, existing artists get their fields refreshed but keep the score
// they already have, and songs are appended with duplicates skipped.
// Running the seeder twice over the same dataset is a no-op apart from
// field refreshes.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mbellows/discograph/internal/database"
	"github.com/mbellows/discograph/internal/logging"
	"github.com/mbellows/discograph/internal/models"
)

// defaultCandidates are probed in order when no explicit path is given.
var defaultCandidates = []string{
	"artists.json",
	"data/artists.json",
	"/data/artists.json",
}

// datasetArtist is one entry of the artists.json dataset.
type datasetArtist struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Image string   `json:"image"`
	Genre string   `json:"genre"`
	Bio   string   `json:"bio"`
	Songs []string `json:"songs"`
}

// Summary reports what a seeding run did.
type Summary struct {
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"-"`
}

// Run seeds the catalog from the dataset at path. When path is empty the
// default candidate locations are probed. Entries without an id or name
// are skipped with a warning rather than aborting the run.
func Run(ctx context.Context, db *database.DB, path string) (*Summary, error) {
	start := time.Now()

	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(resolved) //nolint:gosec // Path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", resolved, err)
	}

	var dataset []datasetArtist
	if err := json.Unmarshal(raw, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", resolved, err)
	}

	summary := &Summary{}
	for _, entry := range dataset {
		artist, ok := toArtist(entry)
		if !ok {
			logging.Warn().
				Str("id", entry.ID).
				Msg("Skipping dataset entry without id or name")
			summary.Skipped++
			continue
		}

		created, err := db.UpsertArtist(ctx, artist)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert artist %s: %w", artist.ID, err)
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	summary.Duration = time.Since(start)
	logging.Info().
		Str("dataset", resolved).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Dur("duration", summary.Duration).
		Msg("Seeding complete")

	return summary, nil
}

// resolvePath picks the dataset file to load.
func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("dataset not found at %s: %w", path, err)
		}
		return path, nil
	}
	for _, candidate := range defaultCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no artists.json dataset found (tried %s)",
		strings.Join(defaultCandidates, ", "))
}

// toArtist shapes a dataset entry into a storage record. New artists get
// a random popularity score between 1 and 100; the repository keeps the
// existing score when the artist is already present.
func toArtist(entry datasetArtist) (*models.Artist, bool) {
	id := strings.TrimSpace(entry.ID)
	name := strings.TrimSpace(entry.Name)
	if id == "" || name == "" {
		return nil, false
	}

	songs := make([]string, 0, len(entry.Songs))
	for _, title := range entry.Songs {
		if t := strings.TrimSpace(title); t != "" {
			songs = append(songs, t)
		}
	}

	return &models.Artist{
		ID:         id,
		Name:       name,
		ImageURL:   optional(entry.Image),
		Genre:      optional(entry.Genre),
		Bio:        optional(entry.Bio),
		Popularity: rand.IntN(100) + 1,
		Songs:      songs,
	}, true
}

// optional maps a possibly-empty string to a nullable column value.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
