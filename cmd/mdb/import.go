package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/evert/musicdb/internal/catalog"
	"github.com/evert/musicdb/internal/report"
	"github.com/evert/musicdb/internal/rhythmdb"
	"github.com/evert/musicdb/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk import a Rhythmbox library into a fresh database",
	Long: `Parse the Rhythmbox library and playlist files, normalize them into
the relational catalog and load everything in one transaction.

The target database must be empty: import builds the whole catalog from
scratch so that ids come out dense and deterministic. To re-import,
point --db at a new file.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("rhythmbox-dir", "", "directory holding rhythmdb.xml and playlists.xml (default ~/.local/share/rhythmbox)")
	importCmd.Flags().String("report", "", "write a Markdown import report to this path")
	viper.BindPFlag("rhythmbox-dir", importCmd.Flags().Lookup("rhythmbox-dir"))
}

func rhythmboxDir() string {
	if dir := viper.GetString("rhythmbox-dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "rhythmbox")
}

func runImport(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	reportPath, _ := cmd.Flags().GetString("report")

	logger := openEventLogger()
	defer logger.Close()
	if logger.Path() != "" {
		util.InfoLog("Event log: %s", logger.Path())
	}

	srcDir := rhythmboxDir()
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		return fmt.Errorf("rhythmbox directory does not exist: %s", srcDir)
	}

	startTime := time.Now()
	summary := report.NewImportSummary()
	summary.LibraryPath = srcDir

	// Phase 1: parse the library
	util.InfoLog("Reading library from %s", srcDir)

	source := &rhythmdb.Source{Dir: srcDir}
	records, err := source.ReadSongs()
	if err != nil {
		return fmt.Errorf("failed to read library: %w", err)
	}
	playlists, err := source.ReadPlaylists()
	if err != nil {
		return fmt.Errorf("failed to read playlists: %w", err)
	}
	summary.SongsParsed = len(records)
	summary.PlaylistsParsed = len(playlists)
	util.InfoLog("Parsed %d songs and %d playlists", len(records), len(playlists))

	// Phase 2: normalize into the relational catalog
	codec := rhythmdb.Codec{MusicDir: musicDir()}
	normalizer := &catalog.Normalizer{Decode: codec.Decode}

	cat, err := normalizer.Normalize(records, playlists)
	if err != nil {
		logger.LogError(report.EventImport, "", err)
		return fmt.Errorf("failed to normalize library: %w", err)
	}
	for _, w := range cat.Warnings {
		util.WarnLog("%s", w)
		logger.LogWarning(w)
	}
	summary.Warnings = append(summary.Warnings, cat.Warnings...)

	// Phase 3: load everything in one transaction
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	summary.DatabasePath = viper.GetString("db")

	counts, err := db.Counts()
	if err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}
	if counts["songs"] > 0 {
		return fmt.Errorf("database already holds %d songs; import needs an empty database", counts["songs"])
	}

	totalRows := len(cat.Genres) + len(cat.Artists) + len(cat.Albums) +
		len(cat.Songs) + len(cat.SongFiles) + len(cat.Playlists) + len(cat.Entries)

	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(totalRows,
			progressbar.OptionSetDescription("Loading"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("rows"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	err = db.BulkLoad(cat, func(table string, rows int) {
		summary.RecordLoad(table, rows)
		logger.LogLoad(table, rows)
		if bar != nil {
			bar.Add(rows)
		}
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		logger.LogError(report.EventLoad, "", err)
		return fmt.Errorf("bulk load failed: %w", err)
	}

	summary.Duration = time.Since(startTime)
	summary.EventLogPath = logger.Path()

	util.SuccessLog("Import complete in %v", summary.Duration.Round(time.Millisecond))
	util.InfoLog("  Songs: %d", len(cat.Songs))
	util.InfoLog("  Artists: %d", len(cat.Artists))
	util.InfoLog("  Albums: %d", len(cat.Albums))
	util.InfoLog("  Genres: %d", len(cat.Genres))
	util.InfoLog("  Playlists: %d (%d entries)", len(cat.Playlists), len(cat.Entries))
	if len(cat.Warnings) > 0 {
		util.WarnLog("  Warnings: %d", len(cat.Warnings))
	}

	if reportPath != "" {
		if err := report.WriteMarkdownReport(summary, reportPath); err != nil {
			util.WarnLog("Failed to write import report: %v", err)
		} else {
			util.InfoLog("Import report: %s", reportPath)
		}
	}

	return nil
}
