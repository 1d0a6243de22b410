package catalog

import (
	"errors"
	"testing"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Genres:  []Genre{{GenreID: 0, Name: "Rock"}, {GenreID: 1, Name: "Jazz"}},
		Artists: []Artist{{ArtistID: 0, Name: "Aerosmith"}, {ArtistID: 1, Name: "ABBA"}},
		Albums: []Album{
			{AlbumID: 0, ArtistID: 0, Name: "Greatest Hits"},
			{AlbumID: 1, ArtistID: 1, Name: "Greatest Hits"},
		},
		SongIDs:   map[int]struct{}{0: {}, 1: {}, 2: {}},
		MaxSongID: 2,
		FileNames: map[string]struct{}{"abba.mp3": {}},
	}
}

func TestResolveNewSongReusesDimensionsCaseInsensitively(t *testing.T) {
	snap := testSnapshot()
	desc := SongDescription{
		Name:     "Sweet Emotion",
		Artist:   "AEROSMITH",
		Genre:    "rock",
		Album:    "greatest hits",
		FileName: "sweet.mp3",
	}

	plan, err := ResolveNewSong(desc, snap)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if plan.NewArtist != nil || plan.NewGenre != nil || plan.NewAlbum != nil {
		t.Errorf("expected all dimensions reused, got inserts %+v %+v %+v",
			plan.NewGenre, plan.NewArtist, plan.NewAlbum)
	}
	if plan.Song.ArtistID != 0 {
		t.Errorf("expected artist id 0, got %d", plan.Song.ArtistID)
	}
	if plan.Song.GenreID == nil || *plan.Song.GenreID != 0 {
		t.Errorf("expected genre id 0, got %v", plan.Song.GenreID)
	}
	// "greatest hits" must resolve to Aerosmith's album, not ABBA's.
	if plan.Song.AlbumID == nil || *plan.Song.AlbumID != 0 {
		t.Errorf("expected album id 0 (artist-scoped), got %v", plan.Song.AlbumID)
	}

	// Same description again, different case: same resolution.
	desc.FileName = "sweet2.mp3"
	desc.Artist = "aerosmith"
	again, err := ResolveNewSong(desc, snap)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if again.NewArtist != nil || again.Song.ArtistID != plan.Song.ArtistID {
		t.Error("expected idempotent artist resolution across case variants")
	}
}

func TestResolveNewSongAllocatesNewDimensions(t *testing.T) {
	snap := testSnapshot()
	plan, err := ResolveNewSong(SongDescription{
		Name:     "Take Five",
		Artist:   "Dave Brubeck",
		Genre:    "Cool Jazz",
		Album:    "Time Out",
		FileName: "take5.mp3",
	}, snap)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if plan.NewArtist == nil || plan.NewArtist.ArtistID != 2 {
		t.Errorf("expected new artist id 2, got %+v", plan.NewArtist)
	}
	if plan.NewGenre == nil || plan.NewGenre.GenreID != 2 {
		t.Errorf("expected new genre id 2, got %+v", plan.NewGenre)
	}
	if plan.NewAlbum == nil || plan.NewAlbum.AlbumID != 2 {
		t.Errorf("expected new album id 2, got %+v", plan.NewAlbum)
	}
	if plan.NewAlbum != nil && plan.NewAlbum.ArtistID != plan.NewArtist.ArtistID {
		t.Errorf("new album must reference the newly resolved artist, got %d", plan.NewAlbum.ArtistID)
	}
	if plan.Song.SongID != 3 {
		t.Errorf("expected song id 3 (max existing + 1), got %d", plan.Song.SongID)
	}
}

// Referential closure: every non-null FK in the plan must point at a row
// already in the snapshot or at a row earlier in the same plan.
func TestInsertionPlanReferentialClosure(t *testing.T) {
	snap := testSnapshot()
	plan, err := ResolveNewSong(SongDescription{
		Name:     "New Song",
		Artist:   "New Artist",
		Genre:    "New Genre",
		Album:    "New Album",
		FileName: "new.mp3",
	}, snap)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	genres := make(map[int]bool)
	for _, g := range snap.Genres {
		genres[g.GenreID] = true
	}
	artists := make(map[int]bool)
	for _, a := range snap.Artists {
		artists[a.ArtistID] = true
	}
	albums := make(map[int]bool)
	for _, a := range snap.Albums {
		albums[a.AlbumID] = true
	}
	songs := make(map[int]bool)
	for id := range snap.SongIDs {
		songs[id] = true
	}

	for _, row := range plan.Rows() {
		switch r := row.(type) {
		case Genre:
			genres[r.GenreID] = true
		case Artist:
			artists[r.ArtistID] = true
		case Album:
			if !artists[r.ArtistID] {
				t.Errorf("album row references artist %d not yet visible", r.ArtistID)
			}
			albums[r.AlbumID] = true
		case Song:
			if !artists[r.ArtistID] {
				t.Errorf("song references artist %d not yet visible", r.ArtistID)
			}
			if r.AlbumID != nil && !albums[*r.AlbumID] {
				t.Errorf("song references album %d not yet visible", *r.AlbumID)
			}
			if r.GenreID != nil && !genres[*r.GenreID] {
				t.Errorf("song references genre %d not yet visible", *r.GenreID)
			}
			songs[r.SongID] = true
		case SongFile:
			if !songs[r.SongID] {
				t.Errorf("file row references song %d not yet visible", r.SongID)
			}
		default:
			t.Fatalf("unexpected row type %T", row)
		}
	}
}

func TestMonotonicSongIDAllocation(t *testing.T) {
	snap := testSnapshot()
	start := snap.MaxSongID
	for i := 1; i <= 5; i++ {
		plan, err := ResolveNewSong(SongDescription{
			Name:     "Song",
			Artist:   "ABBA",
			FileName: "song.mp3",
		}, snap)
		if err != nil {
			t.Fatalf("resolve %d failed: %v", i, err)
		}
		if plan.Song.SongID != start+i {
			t.Errorf("resolution %d: expected song id %d, got %d", i, start+i, plan.Song.SongID)
		}
		// Apply the id allocation to the snapshot, as committing would.
		snap.SongIDs[plan.Song.SongID] = struct{}{}
		snap.MaxSongID = plan.Song.SongID
	}
}

func TestResolveNewSongAmbiguousArtist(t *testing.T) {
	snap := testSnapshot()
	// Two rows that differ only in case/trailing whitespace: a
	// pre-existing uniqueness violation.
	snap.Artists = append(snap.Artists, Artist{ArtistID: 2, Name: "ACDC"}, Artist{ArtistID: 3, Name: "acdc "})

	_, err := ResolveNewSong(SongDescription{
		Name:     "Thunderstruck",
		Artist:   "AcDc",
		FileName: "thunder.mp3",
	}, snap)
	if err == nil {
		t.Fatal("expected AmbiguousMatchError")
	}
	var amb *AmbiguousMatchError
	if !errors.As(err, &amb) {
		t.Fatalf("expected *AmbiguousMatchError, got %T: %v", err, err)
	}
	if amb.Dimension != "artist" || amb.Value != "AcDc" {
		t.Errorf("error must name the dimension and value, got %+v", amb)
	}
}

func TestResolveNewSongInputValidation(t *testing.T) {
	snap := testSnapshot()
	cases := []struct {
		name string
		desc SongDescription
	}{
		{"missing name", SongDescription{Artist: "ABBA", FileName: "x.mp3"}},
		{"missing artist", SongDescription{Name: "X", FileName: "x.mp3"}},
		{"missing file", SongDescription{Name: "X", Artist: "ABBA"}},
		{"file already tracked", SongDescription{Name: "X", Artist: "ABBA", FileName: "abba.mp3"}},
	}
	for _, tc := range cases {
		if _, err := ResolveNewSong(tc.desc, snap); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		} else if _, ok := err.(*ResolutionError); !ok {
			t.Errorf("%s: expected *ResolutionError, got %T", tc.name, err)
		}
	}
}

func TestResolveDelete(t *testing.T) {
	snap := testSnapshot()

	plan, err := ResolveDelete(1, snap)
	if err != nil {
		t.Fatalf("resolve delete failed: %v", err)
	}
	if plan.SongID != 1 {
		t.Errorf("expected plan for song 1, got %d", plan.SongID)
	}

	_, err = ResolveDelete(99, snap)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError for missing id, got %T: %v", err, err)
	}
	if nf.ID != 99 {
		t.Errorf("error must name the missing id, got %d", nf.ID)
	}
}

func TestResolveRename(t *testing.T) {
	snap := testSnapshot()

	plan, err := ResolveRename(2, "Better Name", snap)
	if err != nil {
		t.Fatalf("resolve rename failed: %v", err)
	}
	if plan.SongID != 2 || plan.NewName != "Better Name" {
		t.Errorf("unexpected plan %+v", plan)
	}

	if _, err := ResolveRename(42, "X", snap); err == nil {
		t.Error("expected NotFoundError for missing id")
	}
	if _, err := ResolveRename(2, "", snap); err == nil {
		t.Error("expected ResolutionError for empty name")
	}
}

func TestSortKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"The Who", "who"},
		{"ABBA", "abba"},
		{"Zebra", "zebra"},
		{"Theory of a Deadman", "theory of a deadman"},
	}
	for _, tc := range cases {
		if got := SortKey(tc.in); got != tc.want {
			t.Errorf("SortKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
