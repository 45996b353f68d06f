// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

// Package models defines the storage records and wire shapes for the artist
// catalog. Storage records mirror the database rows; payload types mirror the
// external JSON contract exactly (optional text fields are null when absent,
// never omitted, and songs are always a flat list of title strings).
package models

// Artist is the storage record for an artist row plus its owned song titles.
// ImageURL, Genre and Bio use pointers so that NULL columns survive the
// round-trip without being flattened to "".
type Artist struct {
	ID         string
	Name       string
	ImageURL   *string
	Genre      *string
	Bio        *string
	Popularity int
	Songs      []string
}

// ArtistUpdate carries a partial update: nil fields are left untouched.
// Songs is handled separately (full replacement) and is not part of the
// artist row update.
type ArtistUpdate struct {
	Name     *string
	ImageURL *string
	Genre    *string
	Bio      *string
}

// Empty reports whether the update carries no artist-row fields.
func (u ArtistUpdate) Empty() bool {
	return u.Name == nil && u.ImageURL == nil && u.Genre == nil && u.Bio == nil
}

// ArtistPayload is the external JSON shape of an artist.
// Popularity is only populated for the featured listing.
type ArtistPayload struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Image      *string  `json:"image"`
	Genre      *string  `json:"genre"`
	Bio        *string  `json:"bio"`
	Popularity *int     `json:"popularity,omitempty"`
	Songs      []string `json:"songs"`
}

// NewArtistPayload shapes a storage record into the external contract.
func NewArtistPayload(a *Artist) *ArtistPayload {
	songs := a.Songs
	if songs == nil {
		songs = []string{}
	}
	return &ArtistPayload{
		ID:    a.ID,
		Name:  a.Name,
		Image: a.ImageURL,
		Genre: a.Genre,
		Bio:   a.Bio,
		Songs: songs,
	}
}

// NewFeaturedPayload shapes a storage record for the featured listing,
// which additionally exposes the popularity score.
func NewFeaturedPayload(a *Artist) *ArtistPayload {
	p := NewArtistPayload(a)
	pop := a.Popularity
	p.Popularity = &pop
	return p
}

// ArtistListResponse is the body of GET /api/artists.
type ArtistListResponse struct {
	Items    []*ArtistPayload `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// FeaturedResponse is the body of GET /api/featured.
type FeaturedResponse struct {
	Items []*ArtistPayload `json:"items"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	OK bool `json:"ok"`
}
