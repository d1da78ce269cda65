package library_test

import (
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/library"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestScanAudioFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"b_track.mp3",
		"a_track.wav",
		"nested/c_track.flac",
		"cover.png",
		"notes.txt",
		".hidden/skipped.mp3",
	)

	tracks, err := library.ScanAudio(dir)
	if err != nil {
		t.Fatalf("ScanAudio failed: %v", err)
	}
	got := make([]string, 0, len(tracks))
	for _, track := range tracks {
		got = append(got, track.Name)
	}
	want := []string{"a_track.wav", "b_track.mp3", "c_track.flac"}
	if len(got) != len(want) {
		t.Fatalf("unexpected tracks: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got %v want %v", got, want)
		}
	}
}

func TestScanBackgroundsFilters(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "one.jpg", "two.webp", "song.mp3")

	backgrounds, err := library.ScanBackgrounds(dir)
	if err != nil {
		t.Fatalf("ScanBackgrounds failed: %v", err)
	}
	if len(backgrounds) != 2 {
		t.Fatalf("expected 2 backgrounds, got %v", backgrounds)
	}
}

func TestScanAudioMissingDirectory(t *testing.T) {
	if _, err := library.ScanAudio(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestDisplayName(t *testing.T) {
	track := library.Track{Name: "my_cool-song.mp3"}
	if got := track.DisplayName(); got != "My Cool Song" {
		t.Fatalf("unexpected display name: %q", got)
	}
}

func TestBackgroundPoolRoundRobin(t *testing.T) {
	pool := library.NewBackgroundPool([]string{"a.png", "b.png", "c.png"})
	want := []string{"a.png", "b.png", "c.png", "a.png", "b.png"}
	for i, expected := range want {
		if got := pool.Next(); got != expected {
			t.Fatalf("draw %d: got %q want %q", i, got, expected)
		}
	}
	empty := library.NewBackgroundPool(nil)
	if got := empty.Next(); got != "" {
		t.Fatalf("empty pool should return empty string, got %q", got)
	}
}
