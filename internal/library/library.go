// Package library discovers render inputs on disk. It scans the configured
// music directory for audio tracks and the backgrounds directory for still
// images, returning deterministic sorted listings so batch plans are stable
// across runs.
package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var audioExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".m4a":  {},
	".aac":  {},
	".flac": {},
	".ogg":  {},
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// Track is one audio input discovered in the music directory.
type Track struct {
	Path string
	Name string
}

// DisplayName returns a human-friendly title derived from the file name.
func (t Track) DisplayName() string {
	base := strings.TrimSuffix(t.Name, filepath.Ext(t.Name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return t.Name
	}
	return cases.Title(language.Und, cases.NoLower).String(base)
}

// ScanAudio walks dir recursively and returns every supported audio file,
// sorted by path.
func ScanAudio(dir string) ([]Track, error) {
	paths, err := scan(dir, audioExtensions)
	if err != nil {
		return nil, err
	}
	tracks := make([]Track, 0, len(paths))
	for _, p := range paths {
		tracks = append(tracks, Track{Path: p, Name: filepath.Base(p)})
	}
	return tracks, nil
}

// ScanBackgrounds walks dir recursively and returns every supported image
// file, sorted by path.
func ScanBackgrounds(dir string) ([]string, error) {
	return scan(dir, imageExtensions)
}

func scan(dir string, extensions map[string]struct{}) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", dir)
	}

	var found []string
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := extensions[ext]; ok {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", dir, err)
	}
	sort.Strings(found)
	return found, nil
}

// BackgroundPool hands out backgrounds round-robin so consecutive jobs in a
// batch cycle through every available image before repeating.
type BackgroundPool struct {
	paths []string
	next  int
}

// NewBackgroundPool returns a pool over the given paths. An empty slice is
// allowed; Next then returns "".
func NewBackgroundPool(paths []string) *BackgroundPool {
	return &BackgroundPool{paths: paths}
}

// Len reports the number of backgrounds in the pool.
func (p *BackgroundPool) Len() int {
	return len(p.paths)
}

// Next returns the next background in rotation.
func (p *BackgroundPool) Next() string {
	if len(p.paths) == 0 {
		return ""
	}
	path := p.paths[p.next%len(p.paths)]
	p.next++
	return path
}
