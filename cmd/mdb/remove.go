package main

import (
	"fmt"
	"strconv"

	"github.com/evert/musicdb/internal/catalog"
	"github.com/evert/musicdb/internal/report"
	"github.com/evert/musicdb/internal/util"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <song-id>",
	Short: "Stop tracking a song",
	Long: `Delete a song from the database: its file row, its playlist entries and
the song itself, in that order, in one transaction.

Artists, albums, genres and playlists are never deleted, even when the
removed song was their last reference. Use 'mdb show --orphans' to see
what a removal left behind.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	songID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("song id must be a number: %s", args[0])
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	info, err := db.GetSong(songID)
	if err != nil {
		return err
	}

	snap, err := db.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot catalog: %w", err)
	}

	plan, err := catalog.ResolveDelete(songID, snap)
	if err != nil {
		return err
	}

	if err := db.ApplyDeletion(plan); err != nil {
		logger.LogError(report.EventRemove, info.FileName, err)
		return fmt.Errorf("failed to remove song: %w", err)
	}

	logger.LogRemove(songID, info.Name)
	util.SuccessLog("Removed song %d: %s - %s", songID, info.Artist, info.Name)

	return nil
}
