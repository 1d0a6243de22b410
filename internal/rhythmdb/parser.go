// Package rhythmdb reads the XML library a Rhythmbox installation keeps
// under ~/.local/share/rhythmbox: rhythmdb.xml (one entry per song, a
// flat bag of child elements) and playlists.xml (static playlists
// holding file URIs).
package rhythmdb

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/evert/musicdb/internal/catalog"
)

// Source reads song and playlist records from a Rhythmbox data
// directory.
type Source struct {
	Dir string
}

// xmlEntry captures one <entry> with every child element as a flat
// key/value. The set of children varies per song; that union-of-keys
// shape is exactly what the normalizer expects.
type xmlEntry struct {
	Type  string    `xml:"type,attr"`
	Elems []xmlElem `xml:",any"`
}

type xmlElem struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// ReadSongs parses rhythmdb.xml and returns one flat record per entry of
// type "song". Entries of other types (iradio, ignore, ...) are skipped.
func (s *Source) ReadSongs() ([]catalog.Record, error) {
	path := filepath.Join(s.Dir, "rhythmdb.xml")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	defer f.Close()

	records, err := parseSongs(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

func parseSongs(r io.Reader) ([]catalog.Record, error) {
	dec := xml.NewDecoder(r)
	var records []catalog.Record
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "entry" {
			continue
		}
		var entry xmlEntry
		if err := dec.DecodeElement(&entry, &start); err != nil {
			return nil, err
		}
		if entry.Type != "song" {
			continue
		}
		rec := make(catalog.Record, len(entry.Elems))
		for _, e := range entry.Elems {
			rec[e.XMLName.Local] = e.Text
		}
		records = append(records, rec)
	}
	return records, nil
}

// xmlPlaylist is one <playlist> from playlists.xml. Automatic playlists
// carry a rule tree starting with <conjunction>; only static playlists
// list locations directly.
type xmlPlaylist struct {
	Name        string    `xml:"name,attr"`
	Type        string    `xml:"type,attr"`
	Locations   []string  `xml:"location"`
	Conjunction *struct{} `xml:"conjunction"`
}

type xmlPlaylists struct {
	Playlists []xmlPlaylist `xml:"playlist"`
}

// ReadPlaylists parses playlists.xml and returns the static playlists
// with their raw member locations in file order. Automatic playlists and
// empty ones are skipped; whitespace-only locations (an artifact of the
// export formatting) are dropped.
func (s *Source) ReadPlaylists() ([]catalog.PlaylistRecord, error) {
	path := filepath.Join(s.Dir, "playlists.xml")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playlists: %w", err)
	}
	defer f.Close()

	playlists, err := parsePlaylists(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return playlists, nil
}

func parsePlaylists(r io.Reader) ([]catalog.PlaylistRecord, error) {
	var doc xmlPlaylists
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	var out []catalog.PlaylistRecord
	for _, p := range doc.Playlists {
		if p.Conjunction != nil {
			continue
		}
		var locs []string
		for _, loc := range p.Locations {
			if strings.TrimSpace(loc) == "" {
				continue
			}
			locs = append(locs, strings.TrimSpace(loc))
		}
		if len(locs) == 0 {
			continue
		}
		out = append(out, catalog.PlaylistRecord{Name: p.Name, Locations: locs})
	}
	return out, nil
}
