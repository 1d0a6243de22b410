package main

import (
	"fmt"
	"strconv"

	"github.com/evert/musicdb/internal/store"
	"github.com/evert/musicdb/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showCmd = &cobra.Command{
	Use:   "show [song-id]",
	Short: "Show the catalog, a song, a playlist or orphaned rows",
	Long: `Without arguments, print table counts and the playlist names.

With a song id, print that song with its dimension names resolved.
With --playlist, print the playlist's songs in stored order.
With --orphans, print dimension rows no song references anymore.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().String("playlist", "", "show the songs of this playlist")
	showCmd.Flags().Bool("orphans", false, "show unreferenced artists, albums and genres")
}

func runShow(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		songID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("song id must be a number: %s", args[0])
		}
		return showSong(db, songID)
	}

	if name, _ := cmd.Flags().GetString("playlist"); name != "" {
		return showPlaylist(db, name)
	}

	if orphans, _ := cmd.Flags().GetBool("orphans"); orphans {
		return showOrphans(db)
	}

	return showOverview(db)
}

func showSong(db *store.Store, songID int) error {
	info, err := db.GetSong(songID)
	if err != nil {
		return err
	}

	fmt.Printf("Song %d\n", info.SongID)
	fmt.Printf("  Title:  %s\n", info.Name)
	fmt.Printf("  Artist: %s\n", info.Artist)
	if info.Album != "" {
		fmt.Printf("  Album:  %s\n", info.Album)
	}
	if info.Genre != "" {
		fmt.Printf("  Genre:  %s\n", info.Genre)
	}
	if info.FileName != "" {
		fmt.Printf("  File:   %s\n", info.FileName)
	}
	return nil
}

func showPlaylist(db *store.Store, name string) error {
	songs, err := db.PlaylistSongs(name)
	if err != nil {
		return err
	}
	if len(songs) == 0 {
		util.WarnLog("Playlist %q is empty or does not exist", name)
		return nil
	}

	fmt.Printf("Playlist: %s (%d songs)\n", name, len(songs))
	for _, s := range songs {
		fmt.Printf("  %3d. %s - %s\n", s.OrderIndex, s.Artist, s.Song)
	}
	return nil
}

func showOrphans(db *store.Store) error {
	orphans, err := db.FindOrphans()
	if err != nil {
		return err
	}

	total := len(orphans.Artists) + len(orphans.Albums) + len(orphans.Genres)
	if total == 0 {
		util.SuccessLog("No orphaned dimension rows")
		return nil
	}

	if len(orphans.Artists) > 0 {
		fmt.Printf("Orphaned artists (%d):\n", len(orphans.Artists))
		for _, name := range orphans.Artists {
			fmt.Printf("  %s\n", name)
		}
	}
	if len(orphans.Albums) > 0 {
		fmt.Printf("Orphaned albums (%d):\n", len(orphans.Albums))
		for _, name := range orphans.Albums {
			fmt.Printf("  %s\n", name)
		}
	}
	if len(orphans.Genres) > 0 {
		fmt.Printf("Orphaned genres (%d):\n", len(orphans.Genres))
		for _, name := range orphans.Genres {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

func showOverview(db *store.Store) error {
	counts, err := db.Counts()
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n\n", viper.GetString("db"))
	for _, table := range []string{"songs", "artists", "albums", "genres", "song_files", "playlists", "playlist_songs"} {
		fmt.Printf("  %-14s %d\n", table, counts[table])
	}

	names, err := db.PlaylistNames()
	if err != nil {
		return err
	}
	if len(names) > 0 {
		fmt.Println()
		fmt.Printf("Playlists (%d):\n", len(names))
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}
