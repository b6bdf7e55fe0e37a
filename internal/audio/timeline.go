package audio

import "time"

// timeline derives the playback position from wall-clock time instead of
// polling the decoder. Exactly one of startedAt (playing) or paused holds;
// neither set means stopped.
type timeline struct {
	baseOffset time.Duration
	startedAt  time.Time // zero while not playing
	pausedAt   time.Duration
	paused     bool
}

// start puts the timeline into the playing state at the given offset.
func (t *timeline) start(offset time.Duration, now time.Time) {
	t.baseOffset = offset
	t.startedAt = now
	t.paused = false
	t.pausedAt = 0
}

// pause freezes the position. No-op unless playing.
func (t *timeline) pause(now time.Time) {
	if t.paused || t.startedAt.IsZero() {
		return
	}
	t.pausedAt = t.position(now)
	t.paused = true
	t.startedAt = time.Time{}
}

// resume continues from the frozen position. No-op unless paused.
func (t *timeline) resume(now time.Time) {
	if !t.paused {
		return
	}
	t.baseOffset = t.pausedAt
	t.pausedAt = 0
	t.paused = false
	t.startedAt = now
}

func (t *timeline) position(now time.Time) time.Duration {
	switch {
	case t.paused:
		return t.pausedAt
	case !t.startedAt.IsZero():
		return t.baseOffset + now.Sub(t.startedAt)
	default:
		return t.baseOffset
	}
}

func (t *timeline) isPaused() bool {
	return t.paused
}

func (t *timeline) reset() {
	*t = timeline{}
}
