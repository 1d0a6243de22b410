package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evert/musicdb/internal/catalog"
	"github.com/evert/musicdb/internal/meta"
	"github.com/evert/musicdb/internal/report"
	"github.com/evert/musicdb/internal/util"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Track a new song",
	Long: `Add one song to the database for an audio file in the music directory.

The file's tags supply defaults for title, artist, album and genre; the
--title, --artist, --album and --genre flags override them. Artist, album
and genre are matched case-insensitively against the existing catalog so
spelling variants reuse the existing rows instead of creating near
duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().String("title", "", "song title (default from tags)")
	addCmd.Flags().String("artist", "", "artist name (default from tags)")
	addCmd.Flags().String("album", "", "album name (default from tags)")
	addCmd.Flags().String("genre", "", "genre name (default from tags)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	fileName := filepath.Base(args[0])
	path := args[0]
	if !filepath.IsAbs(path) {
		path = filepath.Join(musicDir(), fileName)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}

	if !meta.CheckFFprobeAvailable() {
		util.WarnLog("ffprobe not found in PATH - using tag library only")
	}

	fileMeta, err := meta.Read(path)
	if err != nil {
		var unreadable *meta.UnreadableFileError
		if !errors.As(err, &unreadable) {
			return fmt.Errorf("failed to read file metadata: %w", err)
		}
		util.WarnLog("Could not read audio metadata from %s, tracking it with file size only", fileName)
	}

	desc := catalog.SongDescription{
		Name:          fileMeta.Title,
		Artist:        fileMeta.Artist,
		Album:         fileMeta.Album,
		Genre:         fileMeta.Genre,
		FileName:      fileName,
		BitrateKbps:   fileMeta.BitrateKbps,
		BeatsPerMin:   fileMeta.BeatsPerMin,
		DurationSec:   fileMeta.DurationSec,
		FileSizeBytes: fileMeta.FileSizeBytes,
	}
	if v, _ := cmd.Flags().GetString("title"); v != "" {
		desc.Name = v
	}
	if v, _ := cmd.Flags().GetString("artist"); v != "" {
		desc.Artist = v
	}
	if v, _ := cmd.Flags().GetString("album"); v != "" {
		desc.Album = v
	}
	if v, _ := cmd.Flags().GetString("genre"); v != "" {
		desc.Genre = v
	}

	if desc.Name == "" {
		return fmt.Errorf("no title in tags; pass --title")
	}
	if desc.Artist == "" {
		return fmt.Errorf("no artist in tags; pass --artist")
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	snap, err := db.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot catalog: %w", err)
	}

	plan, err := catalog.ResolveNewSong(desc, snap)
	if err != nil {
		logger.LogError(report.EventAdd, fileName, err)
		return err
	}

	if err := db.ApplyInsertion(plan); err != nil {
		logger.LogError(report.EventAdd, fileName, err)
		return fmt.Errorf("failed to add song: %w", err)
	}

	logger.LogAdd(plan.Song.SongID, plan.Song.Name, fileName)

	util.SuccessLog("Added song %d: %s - %s", plan.Song.SongID, desc.Artist, desc.Name)
	if plan.NewArtist != nil {
		util.InfoLog("  New artist %d: %s", plan.NewArtist.ArtistID, plan.NewArtist.Name)
	}
	if plan.NewAlbum != nil {
		util.InfoLog("  New album %d: %s", plan.NewAlbum.AlbumID, plan.NewAlbum.Name)
	}
	if plan.NewGenre != nil {
		util.InfoLog("  New genre %d: %s", plan.NewGenre.GenreID, plan.NewGenre.Name)
	}

	return nil
}
