package library

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/avriley/tonearm/pkg/types"
)

// acceptedExtensions is what the scanner picks up. The playback engine
// supports a narrower codec set; unsupported files fail at play time.
var acceptedExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
	".opus": true,
	".aac":  true,
	".m4a":  true,
	".alac": true,
	".aiff": true,
	".aif":  true,
}

// Scan reads one directory (non-recursive) and returns the audio files in
// it as tracks titled by file name. Ordering is left to the navigator.
func Scan(dir string, debug bool) ([]types.Track, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tracks []types.Track
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !acceptedExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		tracks = append(tracks, types.Track{
			Title: name,
			Path:  filepath.Join(dir, name),
		})
	}

	if debug {
		log.Printf("[LIBRARY] Scanned %s: %d tracks", dir, len(tracks))
	}
	return tracks, nil
}
