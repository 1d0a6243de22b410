package main

import (
	"fmt"
	"strconv"

	"github.com/evert/musicdb/internal/catalog"
	"github.com/evert/musicdb/internal/report"
	"github.com/evert/musicdb/internal/util"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <song-id> <new-title>",
	Short: "Change a song's title",
	Long: `Update a song's display title. Nothing else moves: the file name,
artist, album, genre and playlist entries all stay as they are.`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	songID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("song id must be a number: %s", args[0])
	}
	newName := args[1]
	if newName == "" {
		return fmt.Errorf("new title must not be empty")
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

	plan, err := catalog.ResolveRename(songID, newName, snap)
	if err != nil {
		return err
	}

	if err := db.ApplyUpdate(plan); err != nil {
		logger.LogError(report.EventRename, info.FileName, err)
		return fmt.Errorf("failed to rename song: %w", err)
	}

	logger.LogRename(songID, info.Name, newName)
	util.SuccessLog("Renamed song %d: %q -> %q", songID, info.Name, newName)

	return nil
}
