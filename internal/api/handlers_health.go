// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package api

import (
	"net/http"

	"github.com/mbellows/discograph/internal/logging"
	"github.com/mbellows/discograph/internal/models"
)

// Health handles GET /api/health.
// The body is {"ok": true} as long as the process can serve requests.
// A failing database ping is logged but does not flip the response; the
// endpoint reports liveness, not readiness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: database ping failed")
	}

	NewResponseWriter(w, r).OK(models.HealthResponse{OK: true})
}
