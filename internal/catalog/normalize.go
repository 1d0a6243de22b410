package catalog

import (
	"fmt"
	"sort"
	"strconv"
)

// Record is one flat entry from the exported player catalog: a mapping
// from field name ("title", "artist", "album", "genre", "location",
// "bitrate", "duration", "file-size", "beats-per-minute", ...) to its
// text value. Missing fields are normal, not an error; this package is
// the only place that treats absence as meaningful.
type Record map[string]string

// PlaylistRecord is one playlist from the export: its name and the raw
// file references of its members, in source order.
type PlaylistRecord struct {
	Name      string
	Locations []string
}

// Catalog is the normalized output of a bulk import: the seven entity
// collections, the raw-location → song id mapping used to resolve
// playlist membership, and the warnings recorded for entries that were
// dropped rather than treated as fatal.
type Catalog struct {
	Genres    []Genre
	Artists   []Artist
	Albums    []Album
	Songs     []Song
	SongFiles []SongFile
	Playlists []Playlist
	Entries   []PlaylistEntry

	SongIDByLocation map[string]int
	Warnings         []string
}

// Normalizer decomposes flat catalog records into the normalized model.
// Decode is the file-name codec reversing the source's percent-style
// location escaping; it is injected so the normalizer stays free of any
// catalog-format specifics.
type Normalizer struct {
	Decode func(rawLocation string) (string, error)
}

func (c *Catalog) warnf(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// Normalize converts a batch of flat song records plus playlist
// membership records into the seven-entity model. It is a pure function
// of its inputs: dimension ids are dense and assigned in sorted order of
// the folded natural key so repeated runs over the same export produce
// identical output. A record without both a title and an artist is not
// well formed and is dropped with a warning; everything else that fails
// to resolve is an integrity fault surfaced as an error.
func (n *Normalizer) Normalize(records []Record, playlists []PlaylistRecord) (*Catalog, error) {
	cat := &Catalog{SongIDByLocation: make(map[string]int)}

	songs := make([]Record, 0, len(records))
	for _, r := range records {
		if r["title"] == "" || r["artist"] == "" {
			cat.warnf("dropping record without title/artist (location %q)", r["location"])
			continue
		}
		songs = append(songs, r)
	}

	genreIDs := n.buildGenres(cat, songs)
	artistIDs := n.buildArtists(cat, songs)
	albumIDs, err := n.buildAlbums(cat, songs, artistIDs)
	if err != nil {
		return nil, err
	}
	n.buildSongs(cat, songs, artistIDs, albumIDs, genreIDs)
	if err := n.buildSongFiles(cat, songs); err != nil {
		return nil, err
	}
	n.buildPlaylists(cat, playlists)

	if err := verify(cat, len(songs)); err != nil {
		return nil, err
	}
	return cat, nil
}

// buildGenres collects the distinct genre names, deduplicated on the
// folded key, and assigns dense ids in sorted key order. The display
// name kept for a collapsed group is the first one seen, matching how
// the live database would have been seeded.
func (n *Normalizer) buildGenres(cat *Catalog, songs []Record) map[string]int {
	names := make(map[string]string)
	for _, r := range songs {
		if g := r["genre"]; g != "" {
			key := FoldName(g)
			if _, ok := names[key]; !ok {
				names[key] = g
			}
		}
	}
	keys := sortedKeys(names)
	ids := make(map[string]int, len(keys))
	for i, key := range keys {
		cat.Genres = append(cat.Genres, Genre{GenreID: i, Name: names[key]})
		ids[key] = i
	}
	return ids
}

func (n *Normalizer) buildArtists(cat *Catalog, songs []Record) map[string]int {
	names := make(map[string]string)
	for _, r := range songs {
		key := FoldName(r["artist"])
		if _, ok := names[key]; !ok {
			names[key] = r["artist"]
		}
	}
	keys := sortedKeys(names)
	ids := make(map[string]int, len(keys))
	for i, key := range keys {
		cat.Artists = append(cat.Artists, Artist{ArtistID: i, Name: names[key]})
		ids[key] = i
	}
	return ids
}

// buildAlbums collects distinct (artist, album) pairs. Album identity is
// scoped by artist: "Greatest Hits" under two artists is two albums. An
// album whose artist is absent from the artist table cannot happen on
// well-formed input and is surfaced, not swallowed.
func (n *Normalizer) buildAlbums(cat *Catalog, songs []Record, artistIDs map[string]int) (map[[2]string]int, error) {
	type pair struct {
		artistKey, albumKey string
		album               string
	}
	seen := make(map[[2]string]bool)
	var pairs []pair
	for _, r := range songs {
		if r["album"] == "" {
			continue
		}
		ak, bk := FoldName(r["artist"]), FoldName(r["album"])
		if seen[[2]string{ak, bk}] {
			continue
		}
		seen[[2]string{ak, bk}] = true
		pairs = append(pairs, pair{artistKey: ak, albumKey: bk, album: r["album"]})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].artistKey != pairs[j].artistKey {
			return pairs[i].artistKey < pairs[j].artistKey
		}
		return pairs[i].albumKey < pairs[j].albumKey
	})

	ids := make(map[[2]string]int, len(pairs))
	for i, p := range pairs {
		artistID, ok := artistIDs[p.artistKey]
		if !ok {
			return nil, &ResolutionError{Entity: "album", Value: p.album, Reason: "references an unknown artist"}
		}
		cat.Albums = append(cat.Albums, Album{AlbumID: i, ArtistID: artistID, Name: p.album})
		ids[[2]string{p.artistKey, p.albumKey}] = i
	}
	return ids, nil
}

func (n *Normalizer) buildSongs(cat *Catalog, songs []Record, artistIDs map[string]int, albumIDs map[[2]string]int, genreIDs map[string]int) {
	for i, r := range songs {
		s := Song{
			SongID:   i,
			Name:     r["title"],
			ArtistID: artistIDs[FoldName(r["artist"])],
		}
		if r["album"] != "" {
			if id, ok := albumIDs[[2]string{FoldName(r["artist"]), FoldName(r["album"])}]; ok {
				s.AlbumID = &id
			}
		}
		if r["genre"] != "" {
			if id, ok := genreIDs[FoldName(r["genre"])]; ok {
				s.GenreID = &id
			}
		}
		cat.Songs = append(cat.Songs, s)
	}
}

// buildSongFiles decodes each record's location and matches it back to
// exactly one song by the (title, artist, album) triple, the same join
// the source export performed. Zero or multiple matches means the export
// is internally inconsistent and aborts the import, naming the file.
func (n *Normalizer) buildSongFiles(cat *Catalog, songs []Record) error {
	byTriple := make(map[[3]string][]int)
	for i, r := range songs {
		k := tripleKey(r["title"], r["artist"], r["album"])
		byTriple[k] = append(byTriple[k], i)
	}

	taken := make(map[string]string) // folded file name -> raw location
	for _, r := range songs {
		raw := r["location"]
		if raw == "" {
			cat.warnf("song %q has no file location", r["title"])
			continue
		}
		fileName, err := n.Decode(raw)
		if err != nil {
			return &ResolutionError{Entity: "file", Value: raw, Reason: err.Error()}
		}
		matches := byTriple[tripleKey(r["title"], r["artist"], r["album"])]
		if len(matches) != 1 {
			return &ResolutionError{
				Entity: "file",
				Value:  fileName,
				Reason: fmt.Sprintf("maps to %d songs, want exactly 1", len(matches)),
			}
		}
		if prev, dup := taken[FoldName(fileName)]; dup {
			return &ResolutionError{
				Entity: "file",
				Value:  fileName,
				Reason: fmt.Sprintf("file name already used by location %q", prev),
			}
		}
		taken[FoldName(fileName)] = raw

		songID := matches[0]
		f := SongFile{SongID: songID, FileName: fileName}
		f.BitrateKbps = intField(cat, r, "bitrate")
		f.DurationSec = intField(cat, r, "duration")
		f.BeatsPerMin = floatField(cat, r, "beats-per-minute")
		if v := intField(cat, r, "file-size"); v != nil {
			size := int64(*v)
			f.FileSizeBytes = &size
		}
		cat.SongFiles = append(cat.SongFiles, f)
		cat.SongIDByLocation[raw] = songID
	}
	return nil
}

// buildPlaylists resolves membership through the file table and assigns
// a dense 0-based order per playlist sorted by artist name, folded and
// with a leading "The " ignored. Entries that cannot be resolved are
// known to exist in real exports; they are dropped with a warning, never
// fatal.
func (n *Normalizer) buildPlaylists(cat *Catalog, playlists []PlaylistRecord) {
	// Merge playlists whose names collide case-insensitively; the name
	// column is a dimension and must stay unique.
	names := make(map[string]string)
	locs := make(map[string][]string)
	for _, p := range playlists {
		key := FoldName(p.Name)
		if _, ok := names[key]; !ok {
			names[key] = p.Name
		} else if names[key] != p.Name {
			cat.warnf("merging playlist %q into %q (names collide)", p.Name, names[key])
		}
		locs[key] = append(locs[key], p.Locations...)
	}

	artistName := make(map[int]string)
	for _, a := range cat.Artists {
		artistName[a.ArtistID] = a.Name
	}
	artistOfSong := make(map[int]int)
	for _, s := range cat.Songs {
		artistOfSong[s.SongID] = s.ArtistID
	}
	songByFile := make(map[string]int)
	for _, f := range cat.SongFiles {
		songByFile[f.FileName] = f.SongID
	}

	for i, key := range sortedKeys(names) {
		pl := Playlist{PlaylistID: i, Name: names[key]}
		cat.Playlists = append(cat.Playlists, pl)

		var members []int
		inPlaylist := make(map[int]bool)
		for _, raw := range locs[key] {
			fileName, err := n.Decode(raw)
			if err != nil {
				cat.warnf("playlist %q: dropping undecodable entry %q", pl.Name, raw)
				continue
			}
			songID, ok := songByFile[fileName]
			if !ok {
				cat.warnf("playlist %q: dropping entry %q, no matching song file", pl.Name, fileName)
				continue
			}
			if inPlaylist[songID] {
				cat.warnf("playlist %q: dropping repeated entry %q", pl.Name, fileName)
				continue
			}
			inPlaylist[songID] = true
			members = append(members, songID)
		}

		sort.SliceStable(members, func(a, b int) bool {
			return SortKey(artistName[artistOfSong[members[a]]]) < SortKey(artistName[artistOfSong[members[b]]])
		})
		for order, songID := range members {
			cat.Entries = append(cat.Entries, PlaylistEntry{
				PlaylistID: pl.PlaylistID,
				SongID:     songID,
				OrderIndex: order,
			})
		}
	}
}

func tripleKey(title, artist, album string) [3]string {
	return [3]string{FoldName(title), FoldName(artist), FoldName(album)}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func intField(cat *Catalog, r Record, field string) *int {
	v := r[field]
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		cat.warnf("song %q: unparsable %s %q", r["title"], field, v)
		return nil
	}
	return &i
}

func floatField(cat *Catalog, r Record, field string) *float64 {
	v := r[field]
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		cat.warnf("song %q: unparsable %s %q", r["title"], field, v)
		return nil
	}
	return &f
}

// verify enforces the normalizer's postconditions: the pipeline has
// failed if any foreign key dangles, any dimension holds a folded-name
// duplicate, or the song count drifted from the well-formed input count.
func verify(cat *Catalog, wellFormed int) error {
	if len(cat.Songs) != wellFormed {
		return fmt.Errorf("normalizer produced %d songs from %d well-formed records", len(cat.Songs), wellFormed)
	}

	genreSeen := make(map[string]bool)
	genres := make(map[int]bool)
	for _, g := range cat.Genres {
		if genreSeen[FoldName(g.Name)] {
			return &AmbiguousMatchError{Dimension: "genre", Value: g.Name, Count: 2}
		}
		genreSeen[FoldName(g.Name)] = true
		genres[g.GenreID] = true
	}
	artistSeen := make(map[string]bool)
	artists := make(map[int]bool)
	for _, a := range cat.Artists {
		if artistSeen[FoldName(a.Name)] {
			return &AmbiguousMatchError{Dimension: "artist", Value: a.Name, Count: 2}
		}
		artistSeen[FoldName(a.Name)] = true
		artists[a.ArtistID] = true
	}
	albumSeen := make(map[string]bool)
	albums := make(map[int]bool)
	for _, a := range cat.Albums {
		scoped := fmt.Sprintf("%d/%s", a.ArtistID, FoldName(a.Name))
		if albumSeen[scoped] {
			return &AmbiguousMatchError{Dimension: "album", Value: a.Name, Count: 2}
		}
		albumSeen[scoped] = true
		if !artists[a.ArtistID] {
			return fmt.Errorf("album %q references missing artist %d", a.Name, a.ArtistID)
		}
		albums[a.AlbumID] = true
	}

	songIDs := make(map[int]bool)
	for _, s := range cat.Songs {
		if !artists[s.ArtistID] {
			return fmt.Errorf("song %q references missing artist %d", s.Name, s.ArtistID)
		}
		if s.AlbumID != nil && !albums[*s.AlbumID] {
			return fmt.Errorf("song %q references missing album %d", s.Name, *s.AlbumID)
		}
		if s.GenreID != nil && !genres[*s.GenreID] {
			return fmt.Errorf("song %q references missing genre %d", s.Name, *s.GenreID)
		}
		songIDs[s.SongID] = true
	}
	for _, f := range cat.SongFiles {
		if !songIDs[f.SongID] {
			return fmt.Errorf("file %q references missing song %d", f.FileName, f.SongID)
		}
	}
	playlists := make(map[int]bool)
	for _, p := range cat.Playlists {
		playlists[p.PlaylistID] = true
	}
	for _, e := range cat.Entries {
		if !playlists[e.PlaylistID] || !songIDs[e.SongID] {
			return fmt.Errorf("playlist entry (%d, %d) dangles", e.PlaylistID, e.SongID)
		}
	}
	return nil
}
