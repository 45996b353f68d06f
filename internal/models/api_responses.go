// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package models

// APIError is the structured error body returned on any failure.
type APIError struct {
	// Code is a machine-readable error code, e.g. VALIDATION_ERROR.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details carries additional error detail, such as per-field
	// validation failures. Omitted when empty.
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError for the wire.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}
