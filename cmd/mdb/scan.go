package main

import (
	"fmt"
	"os"

	"github.com/evert/musicdb/internal/scan"
	"github.com/evert/musicdb/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Compare the music directory against the database",
	Long: `List audio files in the music directory that the database does not
track yet, and database file rows whose audio file has gone missing.

Untracked files are candidates for 'mdb add'; missing files usually mean
the song should be removed with 'mdb remove'.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSlice("extensions", nil, "additional audio file extensions to consider (e.g. flac,ogg)")
	viper.BindPFlag("extensions", scanCmd.Flags().Lookup("extensions"))
}

func runScan(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	dir := musicDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("music directory does not exist: %s", dir)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	known, err := db.FileNames()
	if err != nil {
		return fmt.Errorf("failed to read tracked files: %w", err)
	}

	scanner := scan.New(dir, viper.GetStringSlice("extensions"))

	untracked, err := scanner.Untracked(known)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	missing, err := scanner.Missing(known)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	util.InfoLog("Music directory: %s", dir)
	util.InfoLog("Tracked files: %d", len(known))

	if len(untracked) == 0 && len(missing) == 0 {
		util.SuccessLog("Database and music directory are in step")
		return nil
	}

	if len(untracked) > 0 {
		util.InfoLog("")
		util.InfoLog("Untracked files (%d):", len(untracked))
		for _, f := range untracked {
			fmt.Printf("  + %s\n", f)
			logger.LogScan(f, "untracked")
		}
		util.InfoLog("Track one with: mdb add <file>")
	}

	if len(missing) > 0 {
		util.InfoLog("")
		util.WarnLog("Tracked files missing on disk (%d):", len(missing))
		for _, f := range missing {
			fmt.Printf("  - %s\n", f)
			logger.LogScan(f, "missing")
		}
		util.InfoLog("Remove a song with: mdb remove <song-id>")
	}

	return nil
}
