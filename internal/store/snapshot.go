package store

import (
	"fmt"

	"github.com/evert/musicdb/internal/catalog"
)

// Snapshot reads the dimension tables and the song/file identity sets
// the reconciliation engine resolves against. The snapshot is a
// read-before-write view: a second writer committing between this fetch
// and the plan's transaction could invalidate the plan. With one user
// and one session that window is accepted, not engineered around.
func (s *Store) Snapshot() (*catalog.Snapshot, error) {
	snap := &catalog.Snapshot{
		SongIDs:   make(map[int]struct{}),
		FileNames: make(map[string]struct{}),
		MaxSongID: -1,
	}

	rows, err := s.db.Query("SELECT genre_id, genre_nm FROM genres ORDER BY genre_id")
	if err != nil {
		return nil, fmt.Errorf("failed to read genres: %w", err)
	}
	for rows.Next() {
		var g catalog.Genre
		if err := rows.Scan(&g.GenreID, &g.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		snap.Genres = append(snap.Genres, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query("SELECT artist_id, artist_nm FROM artists ORDER BY artist_id")
	if err != nil {
		return nil, fmt.Errorf("failed to read artists: %w", err)
	}
	for rows.Next() {
		var a catalog.Artist
		if err := rows.Scan(&a.ArtistID, &a.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		snap.Artists = append(snap.Artists, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query("SELECT album_id, artist_id, album_nm FROM albums ORDER BY album_id")
	if err != nil {
		return nil, fmt.Errorf("failed to read albums: %w", err)
	}
	for rows.Next() {
		var a catalog.Album
		if err := rows.Scan(&a.AlbumID, &a.ArtistID, &a.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		snap.Albums = append(snap.Albums, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query("SELECT song_id FROM songs")
	if err != nil {
		return nil, fmt.Errorf("failed to read song ids: %w", err)
	}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan song id: %w", err)
		}
		snap.SongIDs[id] = struct{}{}
		if id > snap.MaxSongID {
			snap.MaxSongID = id
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query("SELECT file_nm FROM song_files")
	if err != nil {
		return nil, fmt.Errorf("failed to read file names: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan file name: %w", err)
		}
		snap.FileNames[name] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}
