package store

import (
	"database/sql"
	"fmt"

	"github.com/evert/musicdb/internal/catalog"
)

// BulkLoad writes a freshly normalized catalog into the store in
// dependency order, all inside one transaction: a failure on any row
// leaves the database exactly as it was. progress, if non-nil, is called
// after each table with its row count.
func (s *Store) BulkLoad(cat *catalog.Catalog, progress func(table string, rows int)) error {
	report := func(table string, rows int) {
		if progress != nil {
			progress(table, rows)
		}
	}

	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(s.rebind("INSERT INTO genres (genre_id, genre_nm) VALUES (?, ?)"))
		if err != nil {
			return fmt.Errorf("prepare genres: %w", err)
		}
		for _, g := range cat.Genres {
			if _, err := stmt.Exec(g.GenreID, g.Name); err != nil {
				stmt.Close()
				return fmt.Errorf("insert genre %d %q: %w", g.GenreID, g.Name, err)
			}
		}
		stmt.Close()
		report("genres", len(cat.Genres))

		stmt, err = tx.Prepare(s.rebind("INSERT INTO artists (artist_id, artist_nm) VALUES (?, ?)"))
		if err != nil {
			return fmt.Errorf("prepare artists: %w", err)
		}
		for _, a := range cat.Artists {
			if _, err := stmt.Exec(a.ArtistID, a.Name); err != nil {
				stmt.Close()
				return fmt.Errorf("insert artist %d %q: %w", a.ArtistID, a.Name, err)
			}
		}
		stmt.Close()
		report("artists", len(cat.Artists))

		stmt, err = tx.Prepare(s.rebind("INSERT INTO albums (album_id, artist_id, album_nm) VALUES (?, ?, ?)"))
		if err != nil {
			return fmt.Errorf("prepare albums: %w", err)
		}
		for _, a := range cat.Albums {
			if _, err := stmt.Exec(a.AlbumID, a.ArtistID, a.Name); err != nil {
				stmt.Close()
				return fmt.Errorf("insert album %d %q: %w", a.AlbumID, a.Name, err)
			}
		}
		stmt.Close()
		report("albums", len(cat.Albums))

		stmt, err = tx.Prepare(s.rebind(`
			INSERT INTO songs (song_id, song_nm, artist_id, album_id, genre_id)
			VALUES (?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare songs: %w", err)
		}
		for _, song := range cat.Songs {
			if _, err := stmt.Exec(song.SongID, song.Name, song.ArtistID,
				nullableInt(song.AlbumID), nullableInt(song.GenreID)); err != nil {
				stmt.Close()
				return fmt.Errorf("insert song %d %q: %w", song.SongID, song.Name, err)
			}
		}
		stmt.Close()
		report("songs", len(cat.Songs))

		stmt, err = tx.Prepare(s.rebind(`
			INSERT INTO song_files (song_id, file_nm, bitrate, beats_per_min, duration, file_size)
			VALUES (?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare song_files: %w", err)
		}
		for _, f := range cat.SongFiles {
			if _, err := stmt.Exec(f.SongID, f.FileName,
				nullableInt(f.BitrateKbps), nullableFloat(f.BeatsPerMin),
				nullableInt(f.DurationSec), nullableInt64(f.FileSizeBytes)); err != nil {
				stmt.Close()
				return fmt.Errorf("insert song file %q: %w", f.FileName, err)
			}
		}
		stmt.Close()
		report("song_files", len(cat.SongFiles))

		stmt, err = tx.Prepare(s.rebind("INSERT INTO playlists (playlist_id, playlist_nm) VALUES (?, ?)"))
		if err != nil {
			return fmt.Errorf("prepare playlists: %w", err)
		}
		for _, p := range cat.Playlists {
			if _, err := stmt.Exec(p.PlaylistID, p.Name); err != nil {
				stmt.Close()
				return fmt.Errorf("insert playlist %d %q: %w", p.PlaylistID, p.Name, err)
			}
		}
		stmt.Close()
		report("playlists", len(cat.Playlists))

		stmt, err = tx.Prepare(s.rebind(`
			INSERT INTO playlist_songs (playlist_id, song_id, playlist_order)
			VALUES (?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare playlist_songs: %w", err)
		}
		for _, e := range cat.Entries {
			if _, err := stmt.Exec(e.PlaylistID, e.SongID, e.OrderIndex); err != nil {
				stmt.Close()
				return fmt.Errorf("insert playlist entry (%d, %d): %w", e.PlaylistID, e.SongID, err)
			}
		}
		stmt.Close()
		report("playlist_songs", len(cat.Entries))

		return nil
	})
}
