package store

import (
	"database/sql"
	"fmt"

	"github.com/evert/musicdb/internal/catalog"
)

// ApplyInsertion executes an insertion plan in a single transaction, in
// the plan's FK-safe order: new dimension rows, then the song, then its
// file row. A constraint violation rolls the whole plan back and comes
// back wrapped with the offending row, because it means the resolution
// pre-checks missed a case and should fail loudly.
func (s *Store) ApplyInsertion(plan *catalog.InsertionPlan) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if plan.NewGenre != nil {
			_, err := tx.Exec(s.rebind(`
				INSERT INTO genres (genre_id, genre_nm) VALUES (?, ?)`),
				plan.NewGenre.GenreID, plan.NewGenre.Name)
			if err != nil {
				return fmt.Errorf("insert genre %d %q: %w", plan.NewGenre.GenreID, plan.NewGenre.Name, err)
			}
		}
		if plan.NewArtist != nil {
			_, err := tx.Exec(s.rebind(`
				INSERT INTO artists (artist_id, artist_nm) VALUES (?, ?)`),
				plan.NewArtist.ArtistID, plan.NewArtist.Name)
			if err != nil {
				return fmt.Errorf("insert artist %d %q: %w", plan.NewArtist.ArtistID, plan.NewArtist.Name, err)
			}
		}
		if plan.NewAlbum != nil {
			_, err := tx.Exec(s.rebind(`
				INSERT INTO albums (album_id, artist_id, album_nm) VALUES (?, ?, ?)`),
				plan.NewAlbum.AlbumID, plan.NewAlbum.ArtistID, plan.NewAlbum.Name)
			if err != nil {
				return fmt.Errorf("insert album %d %q: %w", plan.NewAlbum.AlbumID, plan.NewAlbum.Name, err)
			}
		}

		_, err := tx.Exec(s.rebind(`
			INSERT INTO songs (song_id, song_nm, artist_id, album_id, genre_id)
			VALUES (?, ?, ?, ?, ?)`),
			plan.Song.SongID, plan.Song.Name, plan.Song.ArtistID,
			nullableInt(plan.Song.AlbumID), nullableInt(plan.Song.GenreID))
		if err != nil {
			return fmt.Errorf("insert song %d %q: %w", plan.Song.SongID, plan.Song.Name, err)
		}

		_, err = tx.Exec(s.rebind(`
			INSERT INTO song_files (song_id, file_nm, bitrate, beats_per_min, duration, file_size)
			VALUES (?, ?, ?, ?, ?, ?)`),
			plan.File.SongID, plan.File.FileName,
			nullableInt(plan.File.BitrateKbps), nullableFloat(plan.File.BeatsPerMin),
			nullableInt(plan.File.DurationSec), nullableInt64(plan.File.FileSizeBytes))
		if err != nil {
			return fmt.Errorf("insert song file %q: %w", plan.File.FileName, err)
		}

		return nil
	})
}

// ApplyDeletion removes a song's rows in dependency order: the file row,
// every playlist entry referencing it, then the song itself. Dimension
// rows are never touched even if the delete leaves them unreferenced.
func (s *Store) ApplyDeletion(plan *catalog.DeletionPlan) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(s.rebind("DELETE FROM song_files WHERE song_id = ?"), plan.SongID); err != nil {
			return fmt.Errorf("delete file row for song %d: %w", plan.SongID, err)
		}
		if _, err := tx.Exec(s.rebind("DELETE FROM playlist_songs WHERE song_id = ?"), plan.SongID); err != nil {
			return fmt.Errorf("delete playlist entries for song %d: %w", plan.SongID, err)
		}
		res, err := tx.Exec(s.rebind("DELETE FROM songs WHERE song_id = ?"), plan.SongID)
		if err != nil {
			return fmt.Errorf("delete song %d: %w", plan.SongID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return &catalog.NotFoundError{Entity: "song", ID: plan.SongID}
		}
		return nil
	})
}

// ApplyUpdate changes a song's display name.
func (s *Store) ApplyUpdate(plan *catalog.UpdatePlan) error {
	return s.Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(s.rebind("UPDATE songs SET song_nm = ? WHERE song_id = ?"),
			plan.NewName, plan.SongID)
		if err != nil {
			return fmt.Errorf("rename song %d: %w", plan.SongID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return &catalog.NotFoundError{Entity: "song", ID: plan.SongID}
		}
		return nil
	})
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
