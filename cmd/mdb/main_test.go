package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestMusicDirPrefersConfig(t *testing.T) {
	viper.Set("music-dir", "/mnt/tunes")
	defer viper.Set("music-dir", "")

	if got := musicDir(); got != "/mnt/tunes" {
		t.Errorf("musicDir = %q, want /mnt/tunes", got)
	}
}

func TestMusicDirDefault(t *testing.T) {
	viper.Set("music-dir", "")

	got := musicDir()
	if got == "" {
		t.Fatal("musicDir returned empty string")
	}
	if filepath.Base(got) != "Music" && got != "." {
		t.Errorf("musicDir default = %q, want a Music folder", got)
	}
}

func TestRhythmboxDirPrefersConfig(t *testing.T) {
	viper.Set("rhythmbox-dir", "/mnt/rb")
	defer viper.Set("rhythmbox-dir", "")

	if got := rhythmboxDir(); got != "/mnt/rb" {
		t.Errorf("rhythmboxDir = %q, want /mnt/rb", got)
	}
}

func TestOpenStoreCreatesSQLiteFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "music.db")
	viper.Set("driver", "sqlite")
	viper.Set("db", dbPath)
	defer func() {
		viper.Set("driver", "")
		viper.Set("db", "")
	}()

	db, err := openStore()
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	defer db.Close()

	counts, err := db.Counts()
	if err != nil {
		t.Fatalf("Counts on fresh database failed: %v", err)
	}
	if counts["songs"] != 0 {
		t.Errorf("fresh database has %d songs, want 0", counts["songs"])
	}
}
