package audio

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/avriley/tonearm/internal/config"
	"github.com/avriley/tonearm/internal/eq"
)

var speakerInitialized = false
var speakerMutex sync.Mutex

const resampleQuality = 4

// seekEpsilon is the threshold under which SeekTo skips the session rebuild.
const seekEpsilon = 10 * time.Millisecond

// Engine owns the output device binding, the active playback session and
// the position timeline. All operations serialize on one mutex, held for
// the whole call including file I/O and decoder setup.
type Engine struct {
	mu sync.Mutex

	cfg        *config.Config
	equalizer  *eq.Equalizer
	sampleRate beep.SampleRate

	session *session

	currentPath string
	duration    time.Duration
	durKnown    bool
	tl          timeline

	hintPath     string
	hintDuration time.Duration

	volumeLevel float64
	sessions    uint64
	debug       bool
}

// session bundles the resources of one playback run. At most one exists.
type session struct {
	closer interface{ Close() error }
	file   interface{ Close() error }
	ctrl   *beep.Ctrl
	volume *effects.Volume
	done   chan struct{} // closed by the speaker once the stream drains
}

func (s *session) drained() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// NewEngine binds the output device and returns a ready engine. A device
// failure here is fatal: the caller cannot construct an engine without a
// working output, and the binding is never retried.
func NewEngine(cfg *config.Config) (*Engine, error) {
	e := &Engine{
		cfg:         cfg,
		equalizer:   eq.NewEqualizer(),
		sampleRate:  beep.SampleRate(cfg.Audio.SampleRate),
		volumeLevel: cfg.Audio.DefaultVolume,
		debug:       cfg.Debug,
	}

	if err := e.initializeSpeaker(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	if e.debug {
		log.Printf("[AUDIO] Engine initialized on %s with sample rate %d", runtime.GOOS, e.sampleRate)
	}
	return e, nil
}

func (e *Engine) initializeSpeaker() error {
	speakerMutex.Lock()
	defer speakerMutex.Unlock()

	if speakerInitialized {
		return nil
	}

	bufferSize := e.cfg.Audio.BufferSize
	if bufferSize <= 0 {
		bufferSize = e.sampleRate.N(time.Second / 10)
		if runtime.GOOS == "linux" {
			bufferSize = e.sampleRate.N(time.Second / 5)
		}
	}

	if err := speaker.Init(e.sampleRate, bufferSize); err != nil {
		return err
	}
	speakerInitialized = true
	return nil
}

// Equalizer returns the engine's equalizer. Gains can be set at any time;
// they take effect through ApplyEqualizer or the next session rebuild.
func (e *Engine) Equalizer() *eq.Equalizer {
	return e.equalizer
}

// PlayFile starts path from the beginning.
func (e *Engine) PlayFile(path string) error {
	return e.PlayFrom(path, 0, false)
}

// PlayFrom starts path at position. With resumePaused the new session is
// immediately paused, which is how seeks preserve the paused state.
func (e *Engine) PlayFrom(path string, position time.Duration, resumePaused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playFromLocked(path, position, resumePaused)
}

func (e *Engine) playFromLocked(path string, position time.Duration, resumePaused bool) error {
	e.teardownLocked()

	file, streamer, format, err := openTrack(path)
	if err != nil {
		// The prior session is gone and is not restored.
		e.tl.reset()
		if e.debug {
			log.Printf("[AUDIO] Failed to load %s: %v", path, err)
		}
		return err
	}

	if path != e.currentPath || !e.durKnown {
		e.duration, e.durKnown = discoverDuration(path, e.hintFor(path), streamer, format, e.debug)
	}

	if position > 0 {
		if err := streamer.Seek(format.SampleRate.N(position)); err != nil {
			streamer.Close()
			file.Close()
			e.tl.reset()
			return fmt.Errorf("%w: seek to %v: %v", ErrDecode, position, err)
		}
	}

	filtered := eq.NewFilteredSource(streamer, float64(format.SampleRate), e.equalizer.Snapshot())
	resampled := beep.Resample(resampleQuality, format.SampleRate, e.sampleRate, filtered)
	ctrl := &beep.Ctrl{Streamer: resampled}
	volume := &effects.Volume{
		Streamer: ctrl,
		Base:     2,
		Volume:   (e.volumeLevel - 1) * 5,
		Silent:   e.volumeLevel == 0,
	}
	done := make(chan struct{})

	speaker.Play(beep.Seq(volume, beep.Callback(func() {
		close(done)
	})))

	e.session = &session{closer: streamer, file: file, ctrl: ctrl, volume: volume, done: done}
	e.currentPath = path
	e.sessions++
	e.tl.start(position, time.Now())

	if resumePaused {
		e.pauseLocked(time.Now())
	}

	if e.debug {
		log.Printf("[AUDIO] Started %s at %v (paused=%v, duration=%v known=%v)",
			path, position, resumePaused, e.duration, e.durKnown)
	}
	return nil
}

// discoverDuration resolves a track's total duration: the decoder-reported
// frame count when present, else a caller-supplied hint (typically a cached
// value from an earlier run), else the independent probe, else unknown.
func discoverDuration(path string, hint time.Duration, streamer beep.StreamSeekCloser, format beep.Format, debug bool) (time.Duration, bool) {
	if n := streamer.Len(); n > 0 {
		return format.SampleRate.D(n), true
	}
	if hint > 0 {
		return hint, true
	}
	if d, ok := ProbeDuration(path, debug); ok {
		return d, true
	}
	return 0, false
}

// SetDurationHint records a known duration for path, sparing the next load
// of that path the decode-based probe. Hints never override the decoder's
// own reported length.
func (e *Engine) SetDurationHint(path string, d time.Duration) {
	if path == "" || d <= 0 {
		return
	}
	e.mu.Lock()
	e.hintPath = path
	e.hintDuration = d
	e.mu.Unlock()
}

func (e *Engine) hintFor(path string) time.Duration {
	if path == e.hintPath {
		return e.hintDuration
	}
	return 0
}

// Pause freezes playback. No-op when already paused or stopped.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseLocked(time.Now())
}

func (e *Engine) pauseLocked(now time.Time) {
	if e.session == nil || e.tl.isPaused() {
		return
	}
	speaker.Lock()
	e.session.ctrl.Paused = true
	speaker.Unlock()
	e.tl.pause(now)

	if e.debug {
		log.Printf("[AUDIO] Paused at %v", e.tl.position(now))
	}
}

// Resume continues a paused session. No-op unless paused.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || !e.tl.isPaused() {
		return
	}
	e.tl.resume(time.Now())
	speaker.Lock()
	e.session.ctrl.Paused = false
	speaker.Unlock()

	if e.debug {
		log.Printf("[AUDIO] Resumed at %v", e.tl.position(time.Now()))
	}
}

// SeekTo rebuilds the session at target. Targets within 10ms of the
// current position are ignored to avoid a redundant rebuild; the paused
// state survives the seek.
func (e *Engine) SeekTo(target time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentPath == "" {
		return nil
	}
	if e.durKnown {
		if target < 0 {
			target = 0
		}
		if target > e.duration {
			target = e.duration
		}
	}

	pos := e.tl.position(time.Now())
	if diff := target - pos; diff > -seekEpsilon && diff < seekEpsilon {
		return nil
	}
	return e.playFromLocked(e.currentPath, target, e.tl.isPaused())
}

// Stop discards the session and resets the engine to its initial state.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.teardownLocked()
	e.currentPath = ""
	e.duration = 0
	e.durKnown = false
	e.tl.reset()

	if e.debug {
		log.Printf("[AUDIO] Stopped")
	}
}

func (e *Engine) teardownLocked() {
	if e.session == nil {
		return
	}
	speaker.Clear()
	if err := e.session.closer.Close(); err != nil && e.debug {
		log.Printf("[AUDIO] Error closing streamer: %v", err)
	}
	e.session.file.Close()
	e.session = nil
}

// ApplyEqualizer stores gains and rebuilds the active session at the
// current position so the new coefficients take effect. Filter state is
// discarded by the rebuild, which is the designed discontinuity.
func (e *Engine) ApplyEqualizer(gains [eq.NumBands]float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.equalizer.SetGains(gains)
	return e.reloadLocked()
}

// ApplyBandGain adjusts one band and rebuilds the active session.
func (e *Engine) ApplyBandGain(band int, gainDB float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.equalizer.SetBandGain(band, gainDB)
	return e.reloadLocked()
}

func (e *Engine) reloadLocked() error {
	if e.currentPath == "" {
		return nil
	}
	pos := e.tl.position(time.Now())
	return e.playFromLocked(e.currentPath, pos, e.tl.isPaused())
}

// SetVolume sets the output level in [0,1] and keeps it across rebuilds.
func (e *Engine) SetVolume(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.volumeLevel = level
	if e.session != nil {
		speaker.Lock()
		e.session.volume.Volume = (level - 1) * 5
		e.session.volume.Silent = level == 0
		speaker.Unlock()
	}
}

// CurrentPosition reports the timeline position: frozen while paused,
// wall-clock derived while playing, the base offset otherwise.
func (e *Engine) CurrentPosition() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tl.position(time.Now())
}

// IsPlaying reports whether a session exists, is not paused and has not
// drained its queued audio.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil && !e.tl.isPaused() && !e.session.drained()
}

// Finished reports that the active session drained without being paused;
// the tick uses it to trigger auto-advance.
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil && !e.tl.isPaused() && e.session.drained()
}

// TotalDuration returns the cached track duration when known.
func (e *Engine) TotalDuration() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration, e.durKnown
}

// CurrentPath returns the path of the loaded track, empty when stopped.
func (e *Engine) CurrentPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentPath
}

// SessionCount returns how many playback sessions have been built. Seeks
// short-circuited by the 10ms threshold leave it unchanged.
func (e *Engine) SessionCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions
}

// Close stops playback. The device binding itself lives for the process.
func (e *Engine) Close() error {
	e.Stop()
	return nil
}
