// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mbellows/discograph/internal/config"
	"github.com/mbellows/discograph/internal/models"
	"github.com/mbellows/discograph/internal/validation"
)

// Request schemas are strict: unknown body keys and unknown query
// parameters are rejected with a validation error rather than ignored.
// Optional text fields are trimmed, and an empty string counts as absent.

// decodeStrictJSON decodes the request body into dst, rejecting unknown
// fields and malformed JSON.
func decodeStrictJSON(r *http.Request, dst interface{}) *validation.RequestValidationError {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return validation.NewRequestValidationError("body", "json", "invalid request body: "+err.Error())
	}
	return nil
}

// trimOptional trims an optional text field, mapping "" to absent.
func trimOptional(p *string) *string {
	if p == nil {
		return nil
	}
	t := strings.TrimSpace(*p)
	if t == "" {
		return nil
	}
	return &t
}

// ================================================================================
// List
// ================================================================================

// listArtistsParams are the only query parameters GET /api/artists accepts.
var listArtistsParams = map[string]bool{
	"q":        true,
	"page":     true,
	"pageSize": true,
}

// ListArtistsRequest is the parsed and validated list query.
type ListArtistsRequest struct {
	Query    string
	Page     int `validate:"gte=1"`
	PageSize int `validate:"gte=1"`
}

// ParseListArtistsRequest parses the list query parameters, applying the
// configured paging defaults and bounds. Unknown parameters are rejected.
func ParseListArtistsRequest(r *http.Request, cfg *config.APIConfig) (*ListArtistsRequest, *validation.RequestValidationError) {
	query := r.URL.Query()
	for key := range query {
		if !listArtistsParams[key] {
			return nil, validation.NewRequestValidationError(key, "unknown",
				fmt.Sprintf("unknown query parameter %q", key))
		}
	}

	req := &ListArtistsRequest{
		Query:    strings.TrimSpace(query.Get("q")),
		Page:     1,
		PageSize: cfg.DefaultPageSize,
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, validation.NewRequestValidationError("page", "integer", "page must be an integer")
		}
		req.Page = page
	}

	if raw := query.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, validation.NewRequestValidationError("pageSize", "integer", "pageSize must be an integer")
		}
		req.PageSize = size
	}

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if req.PageSize > cfg.MaxPageSize {
		return nil, validation.NewRequestValidationError("pageSize", "lte",
			fmt.Sprintf("pageSize must be at most %d", cfg.MaxPageSize))
	}

	return req, nil
}

// ================================================================================
// Create
// ================================================================================

// CreateArtistRequest is the body of POST /api/artists.
// Only id and name carry constraints; image, genre, bio and song titles are
// free-form text.
type CreateArtistRequest struct {
	ID    string   `json:"id"   validate:"required,max=64"`
	Name  string   `json:"name" validate:"required,max=128"`
	Image string   `json:"image"`
	Genre string   `json:"genre"`
	Bio   string   `json:"bio"`
	Songs SongList `json:"songs"`
}

// ParseCreateArtistRequest decodes, normalizes and validates the create body.
func ParseCreateArtistRequest(r *http.Request) (*CreateArtistRequest, *validation.RequestValidationError) {
	req := &CreateArtistRequest{}
	if verr := decodeStrictJSON(r, req); verr != nil {
		return nil, verr
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	req.Image = strings.TrimSpace(req.Image)
	req.Genre = strings.TrimSpace(req.Genre)
	req.Bio = strings.TrimSpace(req.Bio)

	// Songs are already normalized by SongList.UnmarshalJSON; an absent
	// field defaults to an empty list.
	if req.Songs == nil {
		req.Songs = SongList{}
	}

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// ToArtist shapes the request into a storage record. Empty optional fields
// become NULL columns; popularity starts at zero.
func (req *CreateArtistRequest) ToArtist() *models.Artist {
	return &models.Artist{
		ID:       req.ID,
		Name:     req.Name,
		ImageURL: optionalField(req.Image),
		Genre:    optionalField(req.Genre),
		Bio:      optionalField(req.Bio),
		Songs:    req.Songs,
	}
}

func optionalField(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ================================================================================
// Update
// ================================================================================

// UpdateArtistRequest is the body of PATCH /api/artist/{id}. All fields are
// optional; at least one recognized field must survive normalization.
// A present songs field replaces the whole song list (an empty list clears
// it); an absent songs field leaves the songs untouched.
type UpdateArtistRequest struct {
	Name  *string   `json:"name" validate:"omitempty,max=128"`
	Image *string   `json:"image"`
	Genre *string   `json:"genre"`
	Bio   *string   `json:"bio"`
	Songs *SongList `json:"songs"`
}

// ParseUpdateArtistRequest decodes, normalizes and validates the update body.
func ParseUpdateArtistRequest(r *http.Request) (*UpdateArtistRequest, *validation.RequestValidationError) {
	req := &UpdateArtistRequest{}
	if verr := decodeStrictJSON(r, req); verr != nil {
		return nil, verr
	}

	req.Name = trimOptional(req.Name)
	req.Image = trimOptional(req.Image)
	req.Genre = trimOptional(req.Genre)
	req.Bio = trimOptional(req.Bio)

	if req.Name == nil && req.Image == nil && req.Genre == nil &&
		req.Bio == nil && req.Songs == nil {
		return nil, validation.NewRequestValidationError("body", "required",
			"at least one of name, image, genre, bio, songs must be provided")
	}

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// ToUpdate shapes the request into a partial artist-row update. Songs are
// not part of the row update; the handler replaces them separately.
func (req *UpdateArtistRequest) ToUpdate() models.ArtistUpdate {
	return models.ArtistUpdate{
		Name:     req.Name,
		ImageURL: req.Image,
		Genre:    req.Genre,
		Bio:      req.Bio,
	}
}
