package catalog

// SongDescription is the human-supplied description of a new song: the
// identity fields plus whatever file attributes the metadata reader could
// recover. Name, Artist and FileName are required; everything else is
// optional and may be left zero.
type SongDescription struct {
	Name     string
	Artist   string
	Genre    string
	Album    string
	FileName string

	BitrateKbps   *int
	BeatsPerMin   *float64
	DurationSec   *int
	FileSizeBytes *int64
}

// InsertionPlan is the fully foreign-keyed result of resolving a new
// song. Applying it to the snapshot it was computed from (and only that
// snapshot) preserves every catalog invariant. Rows apply in FK-safe
// order: new dimension rows first, then the song, then its file row.
type InsertionPlan struct {
	NewGenre  *Genre
	NewArtist *Artist
	NewAlbum  *Album
	Song      Song
	File      SongFile
}

// Rows returns the plan's rows in application order.
func (p *InsertionPlan) Rows() []interface{} {
	var rows []interface{}
	if p.NewGenre != nil {
		rows = append(rows, *p.NewGenre)
	}
	if p.NewArtist != nil {
		rows = append(rows, *p.NewArtist)
	}
	if p.NewAlbum != nil {
		rows = append(rows, *p.NewAlbum)
	}
	rows = append(rows, p.Song, p.File)
	return rows
}

// DeletionPlan removes a song. The executor deletes in dependency order:
// the song_files row, every playlist entry referencing the song, then the
// song row. Dimension rows are never touched; artists, albums, genres and
// playlists survive a delete even if nothing references them afterwards.
type DeletionPlan struct {
	SongID int
}

// UpdatePlan changes a song's display name and nothing else.
type UpdatePlan struct {
	SongID  int
	NewName string
}

// ResolveNewSong resolves a song description into an insertion plan
// against a snapshot of the current dimension tables. Each of genre,
// artist and album is matched case-insensitively: an existing row is
// reused, a missing one is allocated max(id)+1 and included in the plan,
// and more than one match is surfaced as AmbiguousMatchError. Album
// lookup happens after artist resolution because album identity is
// scoped by artist. The song id itself is allocated max(existing)+1 and
// is never reused.
func ResolveNewSong(d SongDescription, snap *Snapshot) (*InsertionPlan, error) {
	if d.Name == "" {
		return nil, &ResolutionError{Entity: "song", Reason: "song name is required"}
	}
	if d.Artist == "" {
		return nil, &ResolutionError{Entity: "song", Value: d.Name, Reason: "artist name is required"}
	}
	if d.FileName == "" {
		return nil, &ResolutionError{Entity: "song", Value: d.Name, Reason: "file name is required"}
	}
	if snap.HasFile(d.FileName) {
		return nil, &ResolutionError{Entity: "file", Value: d.FileName, Reason: "already tracked in the catalog"}
	}

	plan := &InsertionPlan{}

	var genreID *int
	if d.Genre != "" {
		res, err := resolveDimension("genre", d.Genre, matchGenres(snap.Genres, d.Genre), maxGenreID(snap.Genres))
		if err != nil {
			return nil, err
		}
		if res.Insert {
			plan.NewGenre = &Genre{GenreID: res.ID, Name: d.Genre}
		}
		id := res.ID
		genreID = &id
	}

	res, err := resolveDimension("artist", d.Artist, matchArtists(snap.Artists, d.Artist), maxArtistID(snap.Artists))
	if err != nil {
		return nil, err
	}
	if res.Insert {
		plan.NewArtist = &Artist{ArtistID: res.ID, Name: d.Artist}
	}
	artistID := res.ID

	var albumID *int
	if d.Album != "" {
		res, err := resolveDimension("album", d.Album, matchAlbums(snap.Albums, d.Album, artistID), maxAlbumID(snap.Albums))
		if err != nil {
			return nil, err
		}
		if res.Insert {
			plan.NewAlbum = &Album{AlbumID: res.ID, ArtistID: artistID, Name: d.Album}
		}
		id := res.ID
		albumID = &id
	}

	songID := snap.MaxSongID + 1
	plan.Song = Song{
		SongID:   songID,
		Name:     d.Name,
		ArtistID: artistID,
		AlbumID:  albumID,
		GenreID:  genreID,
	}
	plan.File = SongFile{
		SongID:        songID,
		FileName:      d.FileName,
		BitrateKbps:   d.BitrateKbps,
		BeatsPerMin:   d.BeatsPerMin,
		DurationSec:   d.DurationSec,
		FileSizeBytes: d.FileSizeBytes,
	}
	return plan, nil
}

// ResolveDelete checks the target exists and returns its deletion plan.
func ResolveDelete(songID int, snap *Snapshot) (*DeletionPlan, error) {
	if !snap.HasSong(songID) {
		return nil, &NotFoundError{Entity: "song", ID: songID}
	}
	return &DeletionPlan{SongID: songID}, nil
}

// ResolveRename checks the target exists and returns the field update.
func ResolveRename(songID int, newName string, snap *Snapshot) (*UpdatePlan, error) {
	if newName == "" {
		return nil, &ResolutionError{Entity: "song", Reason: "new name is required"}
	}
	if !snap.HasSong(songID) {
		return nil, &NotFoundError{Entity: "song", ID: songID}
	}
	return &UpdatePlan{SongID: songID, NewName: newName}, nil
}
