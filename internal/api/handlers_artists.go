// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mbellows/discograph/internal/database"
	"github.com/mbellows/discograph/internal/logging"
	"github.com/mbellows/discograph/internal/models"
	"github.com/mbellows/discograph/internal/validation"
)

// ListArtists handles GET /api/artists.
// Supports full-text filtering over name, genre and song titles via ?q=,
// with stable name-ordered paging.
func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, verr := ParseListArtistsRequest(r, &h.cfg.API)
	if verr != nil {
		rw.ValidationError(verr)
		return
	}

	artists, total, err := h.db.ListArtists(r.Context(), req.Query, req.Page, req.PageSize)
	if err != nil {
		rw.InternalError(err)
		return
	}

	items := make([]*models.ArtistPayload, len(artists))
	for i, a := range artists {
		items[i] = models.NewArtistPayload(a)
	}

	rw.OK(models.ArtistListResponse{
		Items:    items,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// GetArtist handles GET /api/artist/{id}.
func (h *Handler) GetArtist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, verr := artistID(r)
	if verr != nil {
		rw.ValidationError(verr)
		return
	}

	artist, err := h.db.GetArtist(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("artist not found")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.OK(models.NewArtistPayload(artist))
}

// CreateArtist handles POST /api/artists.
func (h *Handler) CreateArtist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, verr := ParseCreateArtistRequest(r)
	if verr != nil {
		rw.ValidationError(verr)
		return
	}

	artist := req.ToArtist()
	err := h.db.CreateArtist(r.Context(), artist)
	if errors.Is(err, database.ErrConflict) {
		rw.Conflict("an artist with this id already exists")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("artist_id", artist.ID).
		Int("songs", len(artist.Songs)).
		Msg("Artist created")

	rw.Created(models.NewArtistPayload(artist))
}

// UpdateArtist handles PATCH /api/artist/{id}.
// Present row fields are applied in place; a present songs field replaces
// the whole song list. The response carries a fresh read of the artist so
// the client sees exactly what was persisted.
func (h *Handler) UpdateArtist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, verr := artistID(r)
	if verr != nil {
		rw.ValidationError(verr)
		return
	}

	req, verr := ParseUpdateArtistRequest(r)
	if verr != nil {
		rw.ValidationError(verr)
		return
	}

	update := req.ToUpdate()
	if !update.Empty() {
		err := h.db.UpdateArtistFields(r.Context(), id, update)
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("artist not found")
			return
		}
		if err != nil {
			rw.InternalError(err)
			return
		}
	}

	if req.Songs != nil {
		err := h.db.ReplaceSongs(r.Context(), id, *req.Songs)
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("artist not found")
			return
		}
		if err != nil {
			rw.InternalError(err)
			return
		}
	}

	artist, err := h.db.GetArtist(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("artist not found")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("artist_id", id).
		Bool("songs_replaced", req.Songs != nil).
		Msg("Artist updated")

	rw.OK(models.NewArtistPayload(artist))
}

// DeleteArtist handles DELETE /api/artist/{id}.
// Songs and the artist row are removed in one transaction.
func (h *Handler) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, verr := artistID(r)
	if verr != nil {
		rw.ValidationError(verr)
		return
	}

	err := h.db.DeleteArtist(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("artist not found")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("artist_id", id).
		Msg("Artist deleted")

	rw.NoContent()
}

// Featured handles GET /api/featured: the top artists by popularity.
// Unlike the other artist views, the featured payload exposes the score.
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	artists, err := h.db.ListFeatured(r.Context(), featuredLimit)
	if err != nil {
		rw.InternalError(err)
		return
	}

	items := make([]*models.ArtistPayload, len(artists))
	for i, a := range artists {
		items[i] = models.NewFeaturedPayload(a)
	}

	rw.OK(models.FeaturedResponse{Items: items})
}

// maxArtistIDLen matches the length cap on artist ids at creation.
const maxArtistIDLen = 64

// artistID extracts and validates the {id} path parameter: trimmed,
// non-empty, at most 64 characters.
func artistID(r *http.Request) (string, *validation.RequestValidationError) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		return "", validation.NewRequestValidationError("id", "required", "id is required")
	}
	if len(id) > maxArtistIDLen {
		return "", validation.NewRequestValidationError("id", "max",
			fmt.Sprintf("id must be at most %d characters", maxArtistIDLen))
	}
	return id, nil
}
