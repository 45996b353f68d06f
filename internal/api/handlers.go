// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package api

import (
	"github.com/mbellows/discograph/internal/config"
	"github.com/mbellows/discograph/internal/database"
)

// featuredLimit is how many artists the featured listing returns.
const featuredLimit = 5

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	db  *database.DB
	cfg *config.Config
}

// NewHandler creates a new API handler.
func NewHandler(db *database.DB, cfg *config.Config) *Handler {
	return &Handler{
		db:  db,
		cfg: cfg,
	}
}
