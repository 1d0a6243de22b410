package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventImport  EventType = "import"
	EventLoad    EventType = "load"
	EventScan    EventType = "scan"
	EventAdd     EventType = "add"
	EventRemove  EventType = "remove"
	EventRename  EventType = "rename"
	EventSkip    EventType = "skip"
	EventWarning EventType = "warning"
	EventError   EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in a run
type Event struct {
	Timestamp time.Time         `json:"ts"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	File      string            `json:"file,omitempty"`
	SongID    int               `json:"song_id,omitempty"`
	SongName  string            `json:"song_nm,omitempty"`
	Playlist  string            `json:"playlist,omitempty"`
	Table     string            `json:"table,omitempty"`
	Count     int               `json:"count,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate filename with timestamp
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	// Open file for writing
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	// Filter by minimum level
	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil // Skip events below minimum level
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogLoad logs a row batch loaded into one table during a bulk import
func (l *EventLogger) LogLoad(table string, rows int) error {
	return l.Log(&Event{
		Level: LevelInfo,
		Event: EventLoad,
		Table: table,
		Count: rows,
	})
}

// LogWarning logs a non-fatal problem found while normalizing the catalog
func (l *EventLogger) LogWarning(reason string) error {
	return l.Log(&Event{
		Level:  LevelWarning,
		Event:  EventWarning,
		Reason: reason,
	})
}

// LogScan logs one untracked or missing file found by a library scan
func (l *EventLogger) LogScan(file, reason string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventScan,
		File:   file,
		Reason: reason,
	})
}

// LogAdd logs a newly tracked song
func (l *EventLogger) LogAdd(songID int, songName, file string) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventAdd,
		SongID:   songID,
		SongName: songName,
		File:     file,
	})
}

// LogRemove logs a deleted song
func (l *EventLogger) LogRemove(songID int, songName string) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventRemove,
		SongID:   songID,
		SongName: songName,
	})
}

// LogRename logs a song title change
func (l *EventLogger) LogRename(songID int, oldName, newName string) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventRename,
		SongID:   songID,
		SongName: newName,
		Extra: map[string]string{
			"old_name": oldName,
		},
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, file string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		File:  file,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
