package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FoldName reduces a natural name to its comparison key. All dimension
// uniqueness and lookup in this package is case-insensitive on this key.
// NFC first so composed and decomposed accents compare equal, then lower
// case, then trim, so names differing only in stray whitespace collide
// rather than slipping in as near-duplicates.
func FoldName(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(s)))
}

// SortKey is the playlist ordering key: folded name with a leading
// "The " ignored, so "The Who" sorts under W.
func SortKey(name string) string {
	return strings.TrimPrefix(FoldName(name), "the ")
}

// resolution is the outcome of a single dimension lookup.
type resolution struct {
	ID     int
	Insert bool // no existing row matched; ID is freshly allocated
}

// resolveDimension maps a natural name to a surrogate id given the ids of
// all case-insensitive matches in the current snapshot. Zero matches
// allocates maxID+1, one match reuses it, more than one is a pre-existing
// integrity violation surfaced as AmbiguousMatchError.
func resolveDimension(dimension, value string, matches []int, maxID int) (resolution, error) {
	switch len(matches) {
	case 0:
		return resolution{ID: maxID + 1, Insert: true}, nil
	case 1:
		return resolution{ID: matches[0]}, nil
	default:
		return resolution{}, &AmbiguousMatchError{
			Dimension: dimension,
			Value:     value,
			Count:     len(matches),
		}
	}
}

// maxGenreID returns the highest genre id, or -1 when none exist so the
// first allocation is 0, matching the dense ids of a bulk import.
func maxGenreID(genres []Genre) int {
	max := -1
	for _, g := range genres {
		if g.GenreID > max {
			max = g.GenreID
		}
	}
	return max
}

func maxArtistID(artists []Artist) int {
	max := -1
	for _, a := range artists {
		if a.ArtistID > max {
			max = a.ArtistID
		}
	}
	return max
}

func maxAlbumID(albums []Album) int {
	max := -1
	for _, a := range albums {
		if a.AlbumID > max {
			max = a.AlbumID
		}
	}
	return max
}

func matchGenres(genres []Genre, name string) []int {
	key := FoldName(name)
	var ids []int
	for _, g := range genres {
		if FoldName(g.Name) == key {
			ids = append(ids, g.GenreID)
		}
	}
	return ids
}

func matchArtists(artists []Artist, name string) []int {
	key := FoldName(name)
	var ids []int
	for _, a := range artists {
		if FoldName(a.Name) == key {
			ids = append(ids, a.ArtistID)
		}
	}
	return ids
}

// matchAlbums scopes the album name to the already-resolved artist: an
// album is only a duplicate if both the name and the artist match.
func matchAlbums(albums []Album, name string, artistID int) []int {
	key := FoldName(name)
	var ids []int
	for _, a := range albums {
		if a.ArtistID == artistID && FoldName(a.Name) == key {
			ids = append(ids, a.AlbumID)
		}
	}
	return ids
}
