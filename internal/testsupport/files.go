package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with placeholder content, creating parent
// directories as needed.
func WriteFile(t testing.TB, path string, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if content == "" {
		content = "x"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SeedTracks creates n placeholder audio files in the config's music
// directory and returns their paths in sorted order.
func SeedTracks(t testing.TB, musicDir string, n int) []string {
	t.Helper()

	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(musicDir, trackName(i))
		WriteFile(t, paths[i], "audio")
	}
	return paths
}

func trackName(i int) string {
	return string(rune('a'+i)) + "_track.mp3"
}
