package types

import "time"

// Player defines the playback surface consumed by caller layers (shell, UI).
type Player interface {
	PlayFile(path string) error
	PlayFrom(path string, position time.Duration, resumePaused bool) error
	Pause()
	Resume()
	SeekTo(position time.Duration) error
	Stop()
	IsPlaying() bool
	CurrentPosition() time.Duration
	TotalDuration() (time.Duration, bool)
}
