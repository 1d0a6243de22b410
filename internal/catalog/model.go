// Package catalog holds the normalized music library model and the pure
// logic that maintains it: the bulk normalizer and the reconciliation
// engine. Nothing in this package touches a database or the filesystem;
// callers feed it records and snapshots and apply the plans it returns.
package catalog

// Genre is a dimension row. Names are unique case-insensitively.
type Genre struct {
	GenreID int
	Name    string
}

// Artist is a dimension row. Names are unique case-insensitively.
type Artist struct {
	ArtistID int
	Name     string
}

// Album is a dimension row scoped by artist: the same album name may
// recur under different artists.
type Album struct {
	AlbumID  int
	ArtistID int
	Name     string
}

// Song is the central fact row. AlbumID and GenreID are nullable.
type Song struct {
	SongID   int
	Name     string
	ArtistID int
	AlbumID  *int
	GenreID  *int
}

// SongFile carries the file-level attributes of a song, one row per song.
// FileName is unique across the whole collection; it is the join key
// between on-disk files and the catalog. The measured attributes are
// nullable because not every container yields them.
type SongFile struct {
	SongID        int
	FileName      string
	BitrateKbps   *int
	BeatsPerMin   *float64
	DurationSec   *int
	FileSizeBytes *int64
}

// Playlist is a dimension row. Names are unique.
type Playlist struct {
	PlaylistID int
	Name       string
}

// PlaylistEntry is ordered playlist membership. OrderIndex is assigned
// densely at creation time; later deletions may leave gaps.
type PlaylistEntry struct {
	PlaylistID int
	SongID     int
	OrderIndex int
}

// Snapshot is a read-before-write view of the dimension tables plus the
// song/file identity sets the reconciliation engine needs. It is fetched
// once per logical operation. A second writer mutating the store between
// the fetch and the enclosing transaction's commit is not guarded
// against; this tool assumes a single user and a single session.
type Snapshot struct {
	Genres  []Genre
	Artists []Artist
	Albums  []Album

	// SongIDs holds every existing song id, MaxSongID their maximum.
	// Ids are allocated monotonically and never reused, so MaxSongID
	// can exceed len(SongIDs) after deletions.
	SongIDs   map[int]struct{}
	MaxSongID int

	// FileNames holds every tracked file name, exactly as stored.
	FileNames map[string]struct{}
}

// HasSong reports whether the snapshot contains the given song id.
func (s *Snapshot) HasSong(id int) bool {
	_, ok := s.SongIDs[id]
	return ok
}

// HasFile reports whether a file name is already tracked, compared
// case-insensitively like every other natural key.
func (s *Snapshot) HasFile(name string) bool {
	key := FoldName(name)
	for f := range s.FileNames {
		if FoldName(f) == key {
			return true
		}
	}
	return false
}
