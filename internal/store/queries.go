package store

import (
	"database/sql"
	"fmt"

	"github.com/evert/musicdb/internal/catalog"
)

// FileNames returns every file name tracked in song_files.
func (s *Store) FileNames() (map[string]struct{}, error) {
	rows, err := s.db.Query("SELECT file_nm FROM song_files")
	if err != nil {
		return nil, fmt.Errorf("failed to query file names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan file name: %w", err)
		}
		names[name] = struct{}{}
	}
	return names, rows.Err()
}

// Counts returns the row count of each catalog table.
func (s *Store) Counts() (map[string]int, error) {
	tables := []string{"genres", "artists", "albums", "songs", "song_files", "playlists", "playlist_songs"}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// SongInfo is the human-readable view of one song used by the
// maintenance commands.
type SongInfo struct {
	SongID   int
	Name     string
	Artist   string
	Album    string
	Genre    string
	FileName string
}

// GetSong returns the song with its dimension names resolved, or a
// NotFoundError.
func (s *Store) GetSong(songID int) (*SongInfo, error) {
	info := &SongInfo{}
	var album, genre, fileNm sql.NullString
	err := s.db.QueryRow(s.rebind(`
		SELECT songs.song_id, songs.song_nm, artists.artist_nm,
		       albums.album_nm, genres.genre_nm, song_files.file_nm
		FROM songs
		JOIN artists ON artists.artist_id = songs.artist_id
		LEFT JOIN albums ON albums.album_id = songs.album_id
		LEFT JOIN genres ON genres.genre_id = songs.genre_id
		LEFT JOIN song_files ON song_files.song_id = songs.song_id
		WHERE songs.song_id = ?
	`), songID).Scan(&info.SongID, &info.Name, &info.Artist, &album, &genre, &fileNm)
	if err == sql.ErrNoRows {
		return nil, &catalog.NotFoundError{Entity: "song", ID: songID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get song %d: %w", songID, err)
	}
	info.Album = album.String
	info.Genre = genre.String
	info.FileName = fileNm.String
	return info, nil
}

// PlaylistSong is one resolved playlist entry.
type PlaylistSong struct {
	OrderIndex int
	Song       string
	Artist     string
	FileName   string
}

// PlaylistNames returns all playlist names sorted alphabetically.
func (s *Store) PlaylistNames() ([]string, error) {
	rows, err := s.db.Query("SELECT playlist_nm FROM playlists ORDER BY playlist_nm")
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan playlist name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PlaylistSongs returns a playlist's entries with song and artist names
// resolved, in stored playlist order.
func (s *Store) PlaylistSongs(name string) ([]PlaylistSong, error) {
	rows, err := s.db.Query(s.rebind(`
		SELECT playlist_songs.playlist_order, songs.song_nm, artists.artist_nm,
		       COALESCE(song_files.file_nm, '')
		FROM playlists
		JOIN playlist_songs ON playlist_songs.playlist_id = playlists.playlist_id
		JOIN songs ON songs.song_id = playlist_songs.song_id
		JOIN artists ON artists.artist_id = songs.artist_id
		LEFT JOIN song_files ON song_files.song_id = songs.song_id
		WHERE playlists.playlist_nm = ?
		ORDER BY playlist_songs.playlist_order
	`), name)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist %q: %w", name, err)
	}
	defer rows.Close()

	var entries []PlaylistSong
	for rows.Next() {
		var e PlaylistSong
		if err := rows.Scan(&e.OrderIndex, &e.Song, &e.Artist, &e.FileName); err != nil {
			return nil, fmt.Errorf("failed to scan playlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Orphans lists dimension rows no longer referenced by any song. Deletes
// leave these behind on purpose; this view exists so the user can see
// them, not so the tool can reap them.
type Orphans struct {
	Genres  []string
	Artists []string
	Albums  []string
}

// FindOrphans returns the currently unreferenced dimension rows.
func (s *Store) FindOrphans() (*Orphans, error) {
	o := &Orphans{}

	collect := func(query string, out *[]string) error {
		rows, err := s.db.Query(query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			*out = append(*out, name)
		}
		return rows.Err()
	}

	if err := collect(`
		SELECT genre_nm FROM genres
		WHERE genre_id NOT IN (SELECT genre_id FROM songs WHERE genre_id IS NOT NULL)
		ORDER BY genre_nm`, &o.Genres); err != nil {
		return nil, fmt.Errorf("failed to find orphaned genres: %w", err)
	}
	if err := collect(`
		SELECT artist_nm FROM artists
		WHERE artist_id NOT IN (SELECT artist_id FROM songs)
		  AND artist_id NOT IN (SELECT artist_id FROM albums)
		ORDER BY artist_nm`, &o.Artists); err != nil {
		return nil, fmt.Errorf("failed to find orphaned artists: %w", err)
	}
	if err := collect(`
		SELECT album_nm FROM albums
		WHERE album_id NOT IN (SELECT album_id FROM songs WHERE album_id IS NOT NULL)
		ORDER BY album_nm`, &o.Albums); err != nil {
		return nil, fmt.Errorf("failed to find orphaned albums: %w", err)
	}

	return o, nil
}
