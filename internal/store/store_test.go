package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evert/musicdb/internal/catalog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := Open(Config{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
		os.Remove(path)
	})
	return s
}

func intp(v int) *int          { return &v }
func int64p(v int64) *int64    { return &v }
func floatp(v float64) *float64 { return &v }

func seedCatalog() *catalog.Catalog {
	rock := 0
	gh := 0
	return &catalog.Catalog{
		Genres:  []catalog.Genre{{GenreID: 0, Name: "Rock"}},
		Artists: []catalog.Artist{{ArtistID: 0, Name: "Aerosmith"}, {ArtistID: 1, Name: "ABBA"}},
		Albums:  []catalog.Album{{AlbumID: 0, ArtistID: 0, Name: "Greatest Hits"}},
		Songs: []catalog.Song{
			{SongID: 0, Name: "Dream On", ArtistID: 0, AlbumID: &gh, GenreID: &rock},
			{SongID: 1, Name: "Waterloo", ArtistID: 1},
		},
		SongFiles: []catalog.SongFile{
			{SongID: 0, FileName: "Aerosmith - Dream On.mp3", BitrateKbps: intp(320), DurationSec: intp(267), FileSizeBytes: int64p(6412305)},
			{SongID: 1, FileName: "ABBA - Waterloo.mp3", BeatsPerMin: floatp(146)},
		},
		Playlists: []catalog.Playlist{{PlaylistID: 0, Name: "Favorites"}},
		Entries: []catalog.PlaylistEntry{
			{PlaylistID: 0, SongID: 1, OrderIndex: 0},
			{PlaylistID: 0, SongID: 0, OrderIndex: 1},
		},
	}
}

func TestOpenAndMigrate(t *testing.T) {
	s := openTestStore(t)

	version, err := s.getSchemaVersion()
	if err != nil {
		t.Fatalf("failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("expected schema version %d, got %d", currentSchemaVersion, version)
	}

	tables := []string{"genres", "artists", "albums", "songs", "song_files", "playlists", "playlist_songs", "schema_version"}
	for _, table := range tables {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("failed to query table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func TestBulkLoadAndCounts(t *testing.T) {
	s := openTestStore(t)

	var loaded []string
	err := s.BulkLoad(seedCatalog(), func(table string, rows int) {
		loaded = append(loaded, table)
	})
	if err != nil {
		t.Fatalf("bulk load failed: %v", err)
	}

	// Dependency order: parents before children.
	want := []string{"genres", "artists", "albums", "songs", "song_files", "playlists", "playlist_songs"}
	if len(loaded) != len(want) {
		t.Fatalf("expected %d tables loaded, got %v", len(want), loaded)
	}
	for i := range want {
		if loaded[i] != want[i] {
			t.Errorf("load order %d: expected %s, got %s", i, want[i], loaded[i])
		}
	}

	counts, err := s.Counts()
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	expected := map[string]int{
		"genres": 1, "artists": 2, "albums": 1, "songs": 2,
		"song_files": 2, "playlists": 1, "playlist_songs": 2,
	}
	for table, n := range expected {
		if counts[table] != n {
			t.Errorf("expected %d rows in %s, got %d", n, table, counts[table])
		}
	}
}

func TestSnapshotReflectsCatalog(t *testing.T) {
	s := openTestStore(t)
	if err := s.BulkLoad(seedCatalog(), nil); err != nil {
		t.Fatalf("bulk load failed: %v", err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if len(snap.Artists) != 2 || len(snap.Genres) != 1 || len(snap.Albums) != 1 {
		t.Errorf("unexpected dimension sizes: %d artists, %d genres, %d albums",
			len(snap.Artists), len(snap.Genres), len(snap.Albums))
	}
	if snap.MaxSongID != 1 {
		t.Errorf("expected max song id 1, got %d", snap.MaxSongID)
	}
	if !snap.HasSong(0) || !snap.HasSong(1) || snap.HasSong(2) {
		t.Error("song id set does not match loaded songs")
	}
	if !snap.HasFile("ABBA - Waterloo.mp3") {
		t.Error("expected file name in snapshot")
	}
}

func TestApplyInsertionThenSnapshot(t *testing.T) {
	s := openTestStore(t)
	if err := s.BulkLoad(seedCatalog(), nil); err != nil {
		t.Fatalf("bulk load failed: %v", err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	plan, err := catalog.ResolveNewSong(catalog.SongDescription{
		Name:     "Take Five",
		Artist:   "Dave Brubeck",
		Genre:    "Jazz",
		Album:    "Time Out",
		FileName: "Dave Brubeck - Take Five.mp3",
	}, snap)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if err := s.ApplyInsertion(plan); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	info, err := s.GetSong(plan.Song.SongID)
	if err != nil {
		t.Fatalf("get song failed: %v", err)
	}
	if info.Name != "Take Five" || info.Artist != "Dave Brubeck" || info.Album != "Time Out" || info.Genre != "Jazz" {
		t.Errorf("unexpected song info %+v", info)
	}

	// Re-resolving the same artist against the new snapshot reuses the
	// row instead of duplicating it.
	snap2, err := s.Snapshot()
	if err != nil {
		t.Fatalf("second snapshot failed: %v", err)
	}
	plan2, err := catalog.ResolveNewSong(catalog.SongDescription{
		Name:     "Blue Rondo",
		Artist:   "DAVE BRUBECK",
		FileName: "Dave Brubeck - Blue Rondo.mp3",
	}, snap2)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if plan2.NewArtist != nil {
		t.Error("expected existing artist to be reused")
	}
	if plan2.Song.SongID != plan.Song.SongID+1 {
		t.Errorf("expected monotonic song id %d, got %d", plan.Song.SongID+1, plan2.Song.SongID)
	}
}

func TestDeleteCascadesButDimensionsSurvive(t *testing.T) {
	s := openTestStore(t)
	if err := s.BulkLoad(seedCatalog(), nil); err != nil {
		t.Fatalf("bulk load failed: %v", err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	plan, err := catalog.ResolveDelete(0, snap)
	if err != nil {
		t.Fatalf("resolve delete failed: %v", err)
	}
	if err := s.ApplyDeletion(plan); err != nil {
		t.Fatalf("apply deletion failed: %v", err)
	}

	counts, err := s.Counts()
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if counts["songs"] != 1 || counts["song_files"] != 1 || counts["playlist_songs"] != 1 {
		t.Errorf("expected cascade to file and playlist rows, got %v", counts)
	}
	// The artist, album and genre the song referenced stay put.
	if counts["artists"] != 2 || counts["albums"] != 1 || counts["genres"] != 1 {
		t.Errorf("dimension rows must survive a delete, got %v", counts)
	}

	orphans, err := s.FindOrphans()
	if err != nil {
		t.Fatalf("find orphans failed: %v", err)
	}
	if len(orphans.Albums) != 1 || orphans.Albums[0] != "Greatest Hits" {
		t.Errorf("expected Greatest Hits to be orphaned, got %v", orphans.Albums)
	}
	if len(orphans.Genres) != 1 || orphans.Genres[0] != "Rock" {
		t.Errorf("expected Rock to be orphaned, got %v", orphans.Genres)
	}
}

func TestApplyUpdateRename(t *testing.T) {
	s := openTestStore(t)
	if err := s.BulkLoad(seedCatalog(), nil); err != nil {
		t.Fatalf("bulk load failed: %v", err)
	}

	if err := s.ApplyUpdate(&catalog.UpdatePlan{SongID: 1, NewName: "Waterloo (Remastered)"}); err != nil {
		t.Fatalf("apply update failed: %v", err)
	}
	info, err := s.GetSong(1)
	if err != nil {
		t.Fatalf("get song failed: %v", err)
	}
	if info.Name != "Waterloo (Remastered)" {
		t.Errorf("expected renamed song, got %q", info.Name)
	}

	err = s.ApplyUpdate(&catalog.UpdatePlan{SongID: 99, NewName: "X"})
	if _, ok := err.(*catalog.NotFoundError); !ok {
		t.Errorf("expected NotFoundError for missing song, got %v", err)
	}
}

func TestPlaylistQueries(t *testing.T) {
	s := openTestStore(t)
	if err := s.BulkLoad(seedCatalog(), nil); err != nil {
		t.Fatalf("bulk load failed: %v", err)
	}

	names, err := s.PlaylistNames()
	if err != nil {
		t.Fatalf("playlist names failed: %v", err)
	}
	if len(names) != 1 || names[0] != "Favorites" {
		t.Errorf("unexpected playlist names %v", names)
	}

	entries, err := s.PlaylistSongs("Favorites")
	if err != nil {
		t.Fatalf("playlist songs failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Stored order, ABBA before Aerosmith's Dream On.
	if entries[0].Artist != "ABBA" || entries[1].Song != "Dream On" {
		t.Errorf("unexpected playlist order: %+v", entries)
	}
}

func TestConstraintViolationRollsBackWholePlan(t *testing.T) {
	s := openTestStore(t)
	if err := s.BulkLoad(seedCatalog(), nil); err != nil {
		t.Fatalf("bulk load failed: %v", err)
	}

	// A plan carrying a new artist but a song referencing a missing
	// album id: the engine never produces this, the store must reject
	// it atomically.
	bogus := 42
	plan := &catalog.InsertionPlan{
		NewArtist: &catalog.Artist{ArtistID: 2, Name: "Nobody"},
		Song:      catalog.Song{SongID: 2, Name: "Broken", ArtistID: 2, AlbumID: &bogus},
		File:      catalog.SongFile{SongID: 2, FileName: "broken.mp3"},
	}
	if err := s.ApplyInsertion(plan); err == nil {
		t.Fatal("expected a constraint violation")
	}

	// The artist insert that preceded the failure must be gone too.
	counts, err := s.Counts()
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if counts["artists"] != 2 || counts["songs"] != 2 {
		t.Errorf("expected full rollback, got %v", counts)
	}
}
