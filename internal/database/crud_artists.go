// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mbellows/discograph/internal/logging"
	"github.com/mbellows/discograph/internal/metrics"
	"github.com/mbellows/discograph/internal/models"
)

// ListArtists returns one page of artists matching the search term, plus the
// total match count before paging. The term matches case-insensitively
// against artist name, genre and song titles. Empty term matches everything.
//
// Ordering is name ASC with id as tiebreaker, so paging is stable.
func (db *DB) ListArtists(ctx context.Context, q string, page, pageSize int) ([]*models.Artist, int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", "artists", time.Since(start)) }()

	// The term must match literally, so LIKE metacharacters are escaped.
	q = escapeSearchTerm(q)

	where := `WHERE ($1 = ''
		OR a.name ILIKE '%' || $1 || '%' ESCAPE '\'
		OR coalesce(a.genre, '') ILIKE '%' || $1 || '%' ESCAPE '\'
		OR EXISTS (
			SELECT 1 FROM songs s
			WHERE s.artist_id = a.id AND s.title ILIKE '%' || $1 || '%' ESCAPE '\'
		))`

	var total int64
	countQuery := `SELECT count(*) FROM artists a ` + where
	if err := db.conn.QueryRowContext(ctx, countQuery, q).Scan(&total); err != nil {
		metrics.RecordDBQueryError("list", "artists")
		return nil, 0, fmt.Errorf("failed to count artists: %w", err)
	}

	pageQuery := `SELECT a.id, a.name, a.image_url, a.genre, a.bio, a.popularity
		FROM artists a ` + where + `
		ORDER BY a.name ASC, a.id ASC
		LIMIT $2 OFFSET $3`

	offset := (page - 1) * pageSize
	rows, err := db.conn.QueryContext(ctx, pageQuery, q, pageSize, offset)
	if err != nil {
		metrics.RecordDBQueryError("list", "artists")
		return nil, 0, fmt.Errorf("failed to list artists: %w", err)
	}
	defer closeRows(rows)

	artists, err := scanArtists(rows)
	if err != nil {
		metrics.RecordDBQueryError("list", "artists")
		return nil, 0, err
	}

	if err := db.attachSongs(ctx, artists); err != nil {
		metrics.RecordDBQueryError("list", "songs")
		return nil, 0, err
	}

	return artists, total, nil
}

// GetArtist returns a single artist with its songs, or ErrNotFound.
func (db *DB) GetArtist(ctx context.Context, id string) (*models.Artist, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get", "artists", time.Since(start)) }()

	query := `SELECT id, name, image_url, genre, bio, popularity
		FROM artists WHERE id = $1`

	a := &models.Artist{}
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.ImageURL, &a.Genre, &a.Bio, &a.Popularity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RecordDBQueryError("get", "artists")
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}

	if err := db.attachSongs(ctx, []*models.Artist{a}); err != nil {
		metrics.RecordDBQueryError("get", "songs")
		return nil, err
	}

	return a, nil
}

// CreateArtist inserts a new artist and its songs in one transaction.
// Returns ErrConflict when the id is already taken.
func (db *DB) CreateArtist(ctx context.Context, a *models.Artist) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("create", "artists", time.Since(start)) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.rollbackOnError(tx, &err)

	var exists bool
	existsQuery := `SELECT EXISTS (SELECT 1 FROM artists WHERE id = $1)`
	if err = tx.QueryRowContext(ctx, existsQuery, a.ID).Scan(&exists); err != nil {
		metrics.RecordDBQueryError("create", "artists")
		return fmt.Errorf("failed to check artist existence: %w", err)
	}
	if exists {
		err = ErrConflict
		return err
	}

	insertArtist := `INSERT INTO artists (id, name, image_url, genre, bio, popularity)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.ExecContext(ctx, insertArtist,
		a.ID, a.Name, a.ImageURL, a.Genre, a.Bio, a.Popularity); err != nil {
		metrics.RecordDBQueryError("create", "artists")
		return fmt.Errorf("failed to insert artist: %w", err)
	}

	if err = insertSongs(ctx, tx, a.ID, a.Songs); err != nil {
		metrics.RecordDBQueryError("create", "songs")
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateArtistFields applies a partial update to an artist row. Nil fields
// are left untouched. An empty update degenerates to an existence check.
// Returns ErrNotFound when the artist does not exist.
func (db *DB) UpdateArtistFields(ctx context.Context, id string, update models.ArtistUpdate) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("update", "artists", time.Since(start)) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.rollbackOnError(tx, &err)

	if err = artistMustExist(ctx, tx, id); err != nil {
		return err
	}

	if !update.Empty() {
		var (
			sets []string
			args []interface{}
		)
		addSet := func(column string, value interface{}) {
			args = append(args, value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
		if update.Name != nil {
			addSet("name", *update.Name)
		}
		if update.ImageURL != nil {
			addSet("image_url", *update.ImageURL)
		}
		if update.Genre != nil {
			addSet("genre", *update.Genre)
		}
		if update.Bio != nil {
			addSet("bio", *update.Bio)
		}

		args = append(args, id)
		query := fmt.Sprintf("UPDATE artists SET %s WHERE id = $%d",
			strings.Join(sets, ", "), len(args))
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			metrics.RecordDBQueryError("update", "artists")
			return fmt.Errorf("failed to update artist: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReplaceSongs replaces an artist's entire song list in one transaction:
// existing rows are deleted and the new titles inserted in order. An empty
// list clears the songs. Returns ErrNotFound when the artist does not exist.
func (db *DB) ReplaceSongs(ctx context.Context, id string, songs []string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace", "songs", time.Since(start)) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.rollbackOnError(tx, &err)

	if err = artistMustExist(ctx, tx, id); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM songs WHERE artist_id = $1`, id); err != nil {
		metrics.RecordDBQueryError("replace", "songs")
		return fmt.Errorf("failed to clear songs: %w", err)
	}

	if err = insertSongs(ctx, tx, id, songs); err != nil {
		metrics.RecordDBQueryError("replace", "songs")
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteArtist removes an artist and its songs in one transaction.
// Songs go first since there is no FK cascade. Returns ErrNotFound when
// the artist does not exist.
func (db *DB) DeleteArtist(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete", "artists", time.Since(start)) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.rollbackOnError(tx, &err)

	if _, err = tx.ExecContext(ctx, `DELETE FROM songs WHERE artist_id = $1`, id); err != nil {
		metrics.RecordDBQueryError("delete", "songs")
		return fmt.Errorf("failed to delete songs: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM artists WHERE id = $1`, id)
	if err != nil {
		metrics.RecordDBQueryError("delete", "artists")
		return fmt.Errorf("failed to delete artist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListFeatured returns the most popular artists, highest popularity first,
// with id as tiebreaker for a deterministic order.
func (db *DB) ListFeatured(ctx context.Context, limit int) ([]*models.Artist, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("featured", "artists", time.Since(start)) }()

	query := `SELECT id, name, image_url, genre, bio, popularity
		FROM artists
		ORDER BY popularity DESC, id ASC
		LIMIT $1`

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		metrics.RecordDBQueryError("featured", "artists")
		return nil, fmt.Errorf("failed to list featured artists: %w", err)
	}
	defer closeRows(rows)

	artists, err := scanArtists(rows)
	if err != nil {
		metrics.RecordDBQueryError("featured", "artists")
		return nil, err
	}

	if err := db.attachSongs(ctx, artists); err != nil {
		metrics.RecordDBQueryError("featured", "songs")
		return nil, err
	}

	return artists, nil
}

// UpsertArtist inserts the artist if it is new, otherwise refreshes its
// fields in place. Popularity is only written on first insert; re-seeding
// an existing artist keeps the score it already has. Songs are appended
// (duplicates skipped), never removed. Used by the dataset seeder.
//
// Reports whether the artist was newly created.
func (db *DB) UpsertArtist(ctx context.Context, a *models.Artist) (created bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "artists", time.Since(start)) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.rollbackOnError(tx, &err)

	var exists bool
	existsQuery := `SELECT EXISTS (SELECT 1 FROM artists WHERE id = $1)`
	if err = tx.QueryRowContext(ctx, existsQuery, a.ID).Scan(&exists); err != nil {
		metrics.RecordDBQueryError("upsert", "artists")
		return false, fmt.Errorf("failed to check artist existence: %w", err)
	}

	if exists {
		update := `UPDATE artists SET name = $1, image_url = $2, genre = $3, bio = $4
			WHERE id = $5`
		if _, err = tx.ExecContext(ctx, update,
			a.Name, a.ImageURL, a.Genre, a.Bio, a.ID); err != nil {
			metrics.RecordDBQueryError("upsert", "artists")
			return false, fmt.Errorf("failed to update artist: %w", err)
		}
	} else {
		insert := `INSERT INTO artists (id, name, image_url, genre, bio, popularity)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err = tx.ExecContext(ctx, insert,
			a.ID, a.Name, a.ImageURL, a.Genre, a.Bio, a.Popularity); err != nil {
			metrics.RecordDBQueryError("upsert", "artists")
			return false, fmt.Errorf("failed to insert artist: %w", err)
		}
	}

	if err = appendSongs(ctx, tx, a.ID, a.Songs); err != nil {
		metrics.RecordDBQueryError("upsert", "songs")
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return !exists, nil
}

// attachSongs loads the songs for every artist in the slice with a single
// query and distributes them in position order.
func (db *DB) attachSongs(ctx context.Context, artists []*models.Artist) error {
	if len(artists) == 0 {
		return nil
	}

	byID := make(map[string]*models.Artist, len(artists))
	placeholders := make([]string, len(artists))
	args := make([]interface{}, len(artists))
	for i, a := range artists {
		byID[a.ID] = a
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = a.ID
	}

	query := fmt.Sprintf(`SELECT artist_id, title FROM songs
		WHERE artist_id IN (%s)
		ORDER BY artist_id, position`, strings.Join(placeholders, ", "))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load songs: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var artistID, title string
		if err := rows.Scan(&artistID, &title); err != nil {
			return fmt.Errorf("failed to scan song row: %w", err)
		}
		if a, ok := byID[artistID]; ok {
			a.Songs = append(a.Songs, title)
		}
	}
	return rows.Err()
}

// insertSongs inserts titles with positions 1..n. Duplicate titles within
// the list are skipped via the (artist_id, title) unique constraint.
func insertSongs(ctx context.Context, tx *sql.Tx, artistID string, songs []string) error {
	if len(songs) == 0 {
		return nil
	}

	insert := `INSERT INTO songs (artist_id, position, title) VALUES ($1, $2, $3)
		ON CONFLICT (artist_id, title) DO NOTHING`
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare song insert: %w", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close prepared statement")
		}
	}()

	for i, title := range songs {
		if _, err := stmt.ExecContext(ctx, artistID, i+1, title); err != nil {
			return fmt.Errorf("failed to insert song: %w", err)
		}
	}
	return nil
}

// appendSongs adds titles after the artist's current last position,
// skipping titles the artist already has.
func appendSongs(ctx context.Context, tx *sql.Tx, artistID string, songs []string) error {
	if len(songs) == 0 {
		return nil
	}

	var next int
	maxQuery := `SELECT coalesce(max(position), 0) FROM songs WHERE artist_id = $1`
	if err := tx.QueryRowContext(ctx, maxQuery, artistID).Scan(&next); err != nil {
		return fmt.Errorf("failed to read song positions: %w", err)
	}

	insert := `INSERT INTO songs (artist_id, position, title) VALUES ($1, $2, $3)
		ON CONFLICT (artist_id, title) DO NOTHING`
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare song insert: %w", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close prepared statement")
		}
	}()

	for _, title := range songs {
		next++
		if _, err := stmt.ExecContext(ctx, artistID, next, title); err != nil {
			return fmt.Errorf("failed to append song: %w", err)
		}
	}
	return nil
}

// likeEscaper escapes LIKE metacharacters so a search term matches itself
// rather than acting as a pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeSearchTerm(q string) string {
	return likeEscaper.Replace(q)
}

// artistMustExist returns ErrNotFound unless the artist row exists.
func artistMustExist(ctx context.Context, tx *sql.Tx, id string) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM artists WHERE id = $1)`
	if err := tx.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check artist existence: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// scanArtists reads artist rows without songs.
func scanArtists(rows *sql.Rows) ([]*models.Artist, error) {
	artists := []*models.Artist{}
	for rows.Next() {
		a := &models.Artist{}
		if err := rows.Scan(&a.ID, &a.Name, &a.ImageURL, &a.Genre, &a.Bio, &a.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan artist row: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// rollbackOnError rolls the transaction back when the surrounding
// operation failed, logging rollback failures alongside the original error.
func (db *DB) rollbackOnError(tx *sql.Tx, err *error) {
	if *err == nil {
		return
	}
	if rbErr := tx.Rollback(); rbErr != nil {
		logging.Error().
			Err(rbErr).
			AnErr("original_error", *err).
			Msg("Transaction rollback failed")
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close rows")
	}
}
