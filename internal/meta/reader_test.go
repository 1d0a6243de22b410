package meta

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"185.234000", 185, true},
		{"185.700000", 186, true},
		{"0.4", 0, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"garbage", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseDurationSeconds(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseDurationSeconds(%q) = (%d, %v), want (%d, %v)",
				tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseBitrateKbps(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"320000", 320, true},
		{"128001", 128, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"N/A", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseBitrateKbps(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseBitrateKbps(%q) = (%d, %v), want (%d, %v)",
				tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseBPM(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  float64
		ok    bool
	}{
		{"id3 string", "128", 128, true},
		{"fractional string", " 99.5 ", 99.5, true},
		{"mp4 int", 120, 120, true},
		{"float", 93.4, 93.4, true},
		{"zero", "0", 0, false},
		{"negative int", -3, 0, false},
		{"junk string", "fast", 0, false},
		{"unsupported type", []byte("128"), 0, false},
	}
	for _, tt := range tests {
		got, ok := parseBPM(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("%s: parseBPM(%v) = (%v, %v), want (%v, %v)",
				tt.name, tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestReadGarbageFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mp3")
	if err := os.WriteFile(path, []byte("this is not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Read(path)
	if m == nil {
		t.Fatal("Read returned nil meta")
	}
	if m.FileSizeBytes == nil || *m.FileSizeBytes != int64(len("this is not audio")) {
		t.Errorf("file size not recovered: %v", m.FileSizeBytes)
	}
	if err != nil {
		var unreadable *UnreadableFileError
		if !errors.As(err, &unreadable) {
			t.Fatalf("expected UnreadableFileError, got %T: %v", err, err)
		}
		if unreadable.Path != path {
			t.Errorf("error path = %q, want %q", unreadable.Path, path)
		}
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
