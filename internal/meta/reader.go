// Package meta reads file-level metadata for new songs: tags via the
// tag library and audio properties via ffprobe when it is installed.
package meta

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// UnreadableFileError means the file exists but its audio metadata could
// not be read, usually a corrupt or truncated container. Callers proceed
// without the optional attributes rather than failing the operation.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("unreadable audio file %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error {
	return e.Err
}

// FileMeta holds everything that could be recovered from a file: the
// measured attributes stored in the song_files table, plus tag values
// offered as defaults for the identity fields the user must confirm.
// Any pointer may be nil; absence is normal.
type FileMeta struct {
	BitrateKbps   *int
	DurationSec   *int
	BeatsPerMin   *float64
	FileSizeBytes *int64

	Title  string
	Artist string
	Album  string
	Genre  string
}

// Read extracts as much metadata from the file as possible. The file
// size always comes from the filesystem; tags and audio properties are
// best effort. When neither the tag library nor ffprobe can make sense
// of the file, the size-only result is returned together with an
// UnreadableFileError so the caller can degrade with a warning.
func Read(path string) (*FileMeta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	size := info.Size()
	m := &FileMeta{FileSizeBytes: &size}

	tagErr := readTags(path, m)

	var probeErr error
	if CheckFFprobeAvailable() {
		probeErr = readAudioProperties(path, m)
	}

	if tagErr != nil && (probeErr != nil || !CheckFFprobeAvailable()) {
		return m, &UnreadableFileError{Path: path, Err: tagErr}
	}
	return m, nil
}

// readTags fills the tag-derived fields via the tag library.
func readTags(path string, m *FileMeta) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	t, err := tag.ReadFrom(f)
	if err != nil {
		return err
	}

	m.Title = strings.TrimSpace(t.Title())
	m.Artist = strings.TrimSpace(t.Artist())
	m.Album = strings.TrimSpace(t.Album())
	m.Genre = strings.TrimSpace(t.Genre())

	// The tag library exposes BPM only through the raw frame map.
	for _, key := range []string{"TBPM", "bpm", "BPM", "tmpo"} {
		if v, ok := t.Raw()[key]; ok {
			if bpm, ok := parseBPM(v); ok {
				m.BeatsPerMin = &bpm
				break
			}
		}
	}
	return nil
}

// readAudioProperties fills duration and bitrate from ffprobe output.
func readAudioProperties(path string, m *FileMeta) error {
	probe, err := RunFFprobe(path)
	if err != nil {
		return err
	}
	if probe.Format == nil {
		return fmt.Errorf("ffprobe returned no format info")
	}

	if sec, ok := parseDurationSeconds(probe.Format.Duration); ok {
		m.DurationSec = &sec
	}
	if kbps, ok := parseBitrateKbps(probe.Format.BitRate); ok {
		m.BitrateKbps = &kbps
	}
	return nil
}

// parseDurationSeconds converts ffprobe's fractional seconds string to
// whole seconds, rounded.
func parseDurationSeconds(s string) (int, bool) {
	if s == "" || s == "N/A" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(f)), true
}

// parseBitrateKbps converts ffprobe's bits-per-second string to kbps.
func parseBitrateKbps(s string) (int, bool) {
	if s == "" || s == "N/A" {
		return 0, false
	}
	bps, err := strconv.Atoi(s)
	if err != nil || bps <= 0 {
		return 0, false
	}
	return bps / 1000, true
}

func parseBPM(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || f <= 0 {
			return 0, false
		}
		return f, true
	case int:
		if v <= 0 {
			return 0, false
		}
		return float64(v), true
	case float64:
		if v <= 0 {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}
