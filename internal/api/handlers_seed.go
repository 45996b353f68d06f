// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package api

import (
	"net/http"

	"github.com/mbellows/discograph/internal/logging"
	"github.com/mbellows/discograph/internal/seed"
)

// SeedDataset handles POST /api/admin/seed: loads the configured
// artists.json dataset into the catalog. Disabled in production, where the
// endpoint answers 404 so the admin surface stays invisible.
func (h *Handler) SeedDataset(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.cfg.IsProduction() {
		rw.NotFound("not found")
		return
	}

	summary, err := seed.Run(r.Context(), h.db, h.cfg.Database.SeedPath)
	if err != nil {
		rw.InternalError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Msg("Dataset seeded via admin endpoint")

	rw.OK(summary)
}
