// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package api

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// SongList is the flexible song input shape: clients may send either a JSON
// array of title strings or a single comma-separated string. Both forms pass
// through the same normalization, so downstream code only ever sees a
// trimmed, de-duplicated list.
type SongList []string

// UnmarshalJSON accepts ["a", "b"] or "a, b".
func (s *SongList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = NormalizeSongTitles(strings.Split(single, ","))
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("songs must be an array of strings or a comma-separated string")
	}
	*s = NormalizeSongTitles(list)
	return nil
}

// NormalizeSongTitles is the single normalization point for song input:
// titles are trimmed, empties dropped, and duplicates removed keeping the
// first occurrence. Every code path that accepts songs goes through here.
func NormalizeSongTitles(titles []string) []string {
	out := make([]string, 0, len(titles))
	seen := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		t := strings.TrimSpace(title)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
