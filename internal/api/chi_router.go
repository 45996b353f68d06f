// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbellows/discograph/internal/config"
	"github.com/mbellows/discograph/internal/database"
	"github.com/mbellows/discograph/internal/middleware"
)

// Router wires handlers and middleware into the HTTP routing table.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the given database and configuration.
func NewRouter(db *database.DB, cfg *config.Config) *Router {
	return &Router{
		handler: NewHandler(db, cfg),
		chiMiddleware: NewChiMiddlewareFromConfig(
			cfg.Security.CORSOrigins,
			cfg.Security.RateLimitReqs,
			cfg.Security.RateLimitWindow,
			cfg.Security.RateLimitDisabled,
		),
	}
}

// chiMiddlewareFunc adapts http.HandlerFunc middleware to Chi's shape.
func chiMiddlewareFunc(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	// CORS must be global to handle OPTIONS preflight.
	r.Use(chiMiddlewareFunc(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Health endpoint: permissive rate limiting for monitoring probes.
	r.Route("/api/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
	})

	// Catalog endpoints.
	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddlewareFunc(middleware.PrometheusMetrics))

		// Reads
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Get("/artists", router.handler.ListArtists)
			r.Get("/artist/{id}", router.handler.GetArtist)
			r.Get("/featured", router.handler.Featured)
		})

		// Writes get a tighter limit.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())

			r.Post("/artists", router.handler.CreateArtist)
			r.Patch("/artist/{id}", router.handler.UpdateArtist)
			r.Delete("/artist/{id}", router.handler.DeleteArtist)

			r.Post("/admin/seed", router.handler.SeedDataset)
		})
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
