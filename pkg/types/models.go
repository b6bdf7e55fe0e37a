package types

import "time"

// Track is a single playable file found by the library scanner.
// Tracks are immutable after scanning; the canonical ordering is
// case-insensitive lexicographic by title.
type Track struct {
	Title    string
	Path     string
	Duration time.Duration // 0 until discovered by playback or probing
}
