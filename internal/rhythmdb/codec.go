package rhythmdb

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Codec decodes the file URIs Rhythmbox stores as entry locations.
// Non-ASCII file names are saved percent-encoded
// (file:///...Music/%EC%86%8C%EB%85%80.mp3); the database keeps the
// decoded plain name, which doubles as the join key against the on-disk
// file set.
type Codec struct {
	// MusicDir is the on-disk directory the library lives in. The
	// decoded name is the location path relative to it.
	MusicDir string
}

// Decode reverses the percent escaping and strips the scheme and music
// directory prefix, returning the plain file name.
func (c Codec) Decode(raw string) (string, error) {
	s, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("undecodable location: %w", err)
	}
	s = strings.TrimPrefix(s, "file://")

	if c.MusicDir != "" {
		dir := strings.TrimSuffix(c.MusicDir, "/") + "/"
		if i := strings.LastIndex(s, dir); i >= 0 {
			return s[i+len(dir):], nil
		}
	}
	return path.Base(s), nil
}

// Encode is the inverse of Decode, producing the URI form Rhythmbox
// would store for a file name in the music directory.
func (c Codec) Encode(fileName string) string {
	dir := strings.TrimSuffix(c.MusicDir, "/")
	escaped := url.PathEscape(fileName)
	// PathEscape also escapes '/', which must survive in a URI path.
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	return "file://" + dir + "/" + escaped
}
