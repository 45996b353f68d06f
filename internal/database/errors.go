// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package database

import "errors"

var (
	// ErrNotFound is returned when the requested artist does not exist.
	ErrNotFound = errors.New("artist not found")

	// ErrConflict is returned when creating an artist whose id is taken.
	ErrConflict = errors.New("artist already exists")
)
