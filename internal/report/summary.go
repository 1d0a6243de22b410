package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ImportSummary represents the outcome of one bulk import run
type ImportSummary struct {
	GeneratedAt time.Time
	Duration    time.Duration

	// Source statistics
	SongsParsed     int
	PlaylistsParsed int

	// Rows written per table, in load order
	TableRows map[string]int

	// Problems found while building the catalog
	Warnings []string

	// Metadata
	LibraryPath  string
	DatabasePath string
	EventLogPath string
}

// tableOrder is the dependency order the loader writes tables in.
var tableOrder = []string{
	"genres",
	"artists",
	"albums",
	"songs",
	"song_files",
	"playlists",
	"playlist_songs",
}

// NewImportSummary creates an empty summary stamped with the current time
func NewImportSummary() *ImportSummary {
	return &ImportSummary{
		GeneratedAt: time.Now(),
		TableRows:   make(map[string]int),
		Warnings:    make([]string, 0),
	}
}

// RecordLoad records the row count written to one table
func (s *ImportSummary) RecordLoad(table string, rows int) {
	s.TableRows[table] += rows
}

// TotalRows returns the number of rows written across all tables
func (s *ImportSummary) TotalRows() int {
	total := 0
	for _, n := range s.TableRows {
		total += n
	}
	return total
}

// WriteMarkdownReport writes the import summary as Markdown
func WriteMarkdownReport(summary *ImportSummary, outputPath string) error {
	// Create output directory
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder

	// Header
	md.WriteString("# MDB - Import Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", summary.GeneratedAt.Format("2006-01-02 15:04:05")))

	if summary.LibraryPath != "" {
		md.WriteString(fmt.Sprintf("**Library:** `%s`\n\n", summary.LibraryPath))
	}
	if summary.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", summary.DatabasePath))
	}
	if summary.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", summary.EventLogPath))
	}

	md.WriteString("---\n\n")

	// Overview
	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Songs Parsed | %d |\n", summary.SongsParsed))
	md.WriteString(fmt.Sprintf("| Playlists Parsed | %d |\n", summary.PlaylistsParsed))
	md.WriteString(fmt.Sprintf("| Rows Written | %d |\n", summary.TotalRows()))
	if summary.Duration > 0 {
		md.WriteString(fmt.Sprintf("| Duration | %s |\n", summary.Duration.Round(time.Millisecond)))
	}
	md.WriteString("\n")

	// Per-table breakdown, load order first, anything unexpected after
	if len(summary.TableRows) > 0 {
		md.WriteString("## 🗄️ Tables\n\n")
		md.WriteString("| Table | Rows |\n")
		md.WriteString("|-------|------|\n")

		seen := make(map[string]bool)
		for _, table := range tableOrder {
			if n, ok := summary.TableRows[table]; ok {
				md.WriteString(fmt.Sprintf("| %s | %d |\n", table, n))
				seen[table] = true
			}
		}
		rest := make([]string, 0)
		for table := range summary.TableRows {
			if !seen[table] {
				rest = append(rest, table)
			}
		}
		sort.Strings(rest)
		for _, table := range rest {
			md.WriteString(fmt.Sprintf("| %s | %d |\n", table, summary.TableRows[table]))
		}
		md.WriteString("\n")
	}

	// Warnings
	if len(summary.Warnings) > 0 {
		md.WriteString("## ⚠️ Warnings\n\n")
		for _, w := range summary.Warnings {
			md.WriteString(fmt.Sprintf("- %s\n", w))
		}
		md.WriteString("\n")
	}

	// Footer
	md.WriteString("---\n\n")
	md.WriteString("*Generated by mdb*\n")

	// Write to file
	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
