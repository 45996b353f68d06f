// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package models

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestNewArtistPayloadWireShape(t *testing.T) {
	t.Parallel()

	a := &Artist{
		ID:         "queen",
		Name:       "Queen",
		Popularity: 77,
	}

	raw, err := json.Marshal(NewArtistPayload(a))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	body := string(raw)

	// Optional text fields are null, never omitted.
	for _, field := range []string{`"image":null`, `"genre":null`, `"bio":null`} {
		if !strings.Contains(body, field) {
			t.Errorf("payload %s missing %s", body, field)
		}
	}
	// nil songs serialize as an empty array, not null.
	if !strings.Contains(body, `"songs":[]`) {
		t.Errorf("payload %s should carry empty songs array", body)
	}
	// Popularity stays internal outside the featured listing.
	if strings.Contains(body, "popularity") {
		t.Errorf("payload %s must not expose popularity", body)
	}
}

func TestNewFeaturedPayloadExposesPopularity(t *testing.T) {
	t.Parallel()

	a := &Artist{ID: "queen", Name: "Queen", Popularity: 77}

	raw, err := json.Marshal(NewFeaturedPayload(a))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(raw), `"popularity":77`) {
		t.Errorf("featured payload %s missing popularity", raw)
	}
}

func TestArtistUpdateEmpty(t *testing.T) {
	t.Parallel()

	if !(ArtistUpdate{}).Empty() {
		t.Error("zero update should be empty")
	}

	name := "x"
	if (ArtistUpdate{Name: &name}).Empty() {
		t.Error("update with a field should not be empty")
	}
}
