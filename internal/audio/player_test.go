package audio

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avriley/tonearm/internal/config"
	"github.com/avriley/tonearm/internal/eq"
	"github.com/avriley/tonearm/pkg/types"
)

var _ types.Player = (*Engine)(nil)

// newTestEngine skips the test when no output device is present, which is
// the usual situation on CI machines.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	e, err := NewEngine(config.Default())
	if err != nil {
		t.Skipf("no audio output device: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngineInitialState(t *testing.T) {
	e := newTestEngine(t)

	assert.False(t, e.IsPlaying())
	assert.Equal(t, time.Duration(0), e.CurrentPosition())
	assert.Empty(t, e.CurrentPath())
	_, known := e.TotalDuration()
	assert.False(t, known)
}

func TestEngineControlsAreNoopsWhenStopped(t *testing.T) {
	e := newTestEngine(t)

	e.Pause()
	e.Resume()
	e.Stop()
	require.NoError(t, e.SeekTo(30*time.Second))
	assert.Zero(t, e.SessionCount())
}

func TestEnginePlayFileReportsDuration(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "ten.wav")
	writeWAV(t, path, 44100, 441000)

	require.NoError(t, e.PlayFile(path))
	d, known := e.TotalDuration()
	require.True(t, known)
	assert.Equal(t, 10*time.Second, d)
	assert.Equal(t, path, e.CurrentPath())
	assert.Equal(t, uint64(1), e.SessionCount())
}

func TestEnginePlayMissingFile(t *testing.T) {
	e := newTestEngine(t)

	err := e.PlayFile(filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileOpen))
	assert.False(t, e.IsPlaying())
}

func TestEnginePauseFreezesPosition(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "ten.wav")
	writeWAV(t, path, 44100, 441000)

	require.NoError(t, e.PlayFile(path))
	e.Pause()
	p1 := e.CurrentPosition()
	time.Sleep(50 * time.Millisecond)
	p2 := e.CurrentPosition()
	assert.Equal(t, p1, p2)
	assert.False(t, e.IsPlaying())
}

func TestEngineSeekLandsOnTarget(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "ten.wav")
	writeWAV(t, path, 44100, 441000)

	require.NoError(t, e.PlayFile(path))
	require.NoError(t, e.SeekTo(5*time.Second))
	assert.InDelta(t, float64(5*time.Second), float64(e.CurrentPosition()), float64(100*time.Millisecond))
	assert.Equal(t, uint64(2), e.SessionCount())
}

func TestEngineSeekWithinEpsilonSkipsRebuild(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "ten.wav")
	writeWAV(t, path, 44100, 441000)

	require.NoError(t, e.PlayFile(path))
	e.Pause()
	before := e.SessionCount()
	require.NoError(t, e.SeekTo(e.CurrentPosition()+5*time.Millisecond))
	assert.Equal(t, before, e.SessionCount())
}

func TestEngineSeekClampsToDuration(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "ten.wav")
	writeWAV(t, path, 44100, 441000)

	require.NoError(t, e.PlayFile(path))
	require.NoError(t, e.SeekTo(time.Hour))
	d, _ := e.TotalDuration()
	assert.LessOrEqual(t, e.CurrentPosition(), d+100*time.Millisecond)
}

func TestEngineSeekPreservesPausedState(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "ten.wav")
	writeWAV(t, path, 44100, 441000)

	require.NoError(t, e.PlayFile(path))
	e.Pause()
	require.NoError(t, e.SeekTo(3*time.Second))
	assert.False(t, e.IsPlaying())
	assert.InDelta(t, float64(3*time.Second), float64(e.CurrentPosition()), float64(50*time.Millisecond))
}

func TestEngineStopClearsEverything(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "ten.wav")
	writeWAV(t, path, 44100, 441000)

	require.NoError(t, e.PlayFile(path))
	e.Stop()
	assert.False(t, e.IsPlaying())
	assert.Empty(t, e.CurrentPath())
	assert.Equal(t, time.Duration(0), e.CurrentPosition())
	_, known := e.TotalDuration()
	assert.False(t, known)
}

func TestEngineApplyEqualizerRebuildsSession(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "ten.wav")
	writeWAV(t, path, 44100, 441000)

	require.NoError(t, e.PlayFile(path))
	before := e.SessionCount()

	var gains [eq.NumBands]float64
	gains[0] = 6
	require.NoError(t, e.ApplyEqualizer(gains))

	assert.Equal(t, before+1, e.SessionCount())
	assert.Equal(t, gains, e.Equalizer().Snapshot())
}

func TestEngineApplyEqualizerWithoutTrack(t *testing.T) {
	e := newTestEngine(t)

	var gains [eq.NumBands]float64
	gains[9] = -6
	require.NoError(t, e.ApplyEqualizer(gains))
	assert.Equal(t, gains, e.Equalizer().Snapshot())
	assert.Zero(t, e.SessionCount())
}

// fakeSeeker is a StreamSeekCloser that reports a fixed length and no audio.
type fakeSeeker struct{ length int }

func (f *fakeSeeker) Stream(samples [][2]float64) (int, bool) { return 0, false }
func (f *fakeSeeker) Err() error                              { return nil }
func (f *fakeSeeker) Len() int                                { return f.length }
func (f *fakeSeeker) Position() int                           { return 0 }
func (f *fakeSeeker) Seek(p int) error                        { return nil }
func (f *fakeSeeker) Close() error                            { return nil }

func TestDiscoverDurationPrefersDecoderLength(t *testing.T) {
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

	// A reported length wins even when a cached hint disagrees.
	d, known := discoverDuration("/m/x.wav", 42*time.Second, &fakeSeeker{length: 4410}, format, false)
	require.True(t, known)
	assert.Equal(t, 100*time.Millisecond, d)
}

func TestDiscoverDurationUsesCachedHint(t *testing.T) {
	// No decoder length and no probeable container: the cached duration
	// from an earlier run answers without a decode.
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

	d, known := discoverDuration("/m/x.aac", 42*time.Second, &fakeSeeker{}, format, false)
	require.True(t, known)
	assert.Equal(t, 42*time.Second, d)
}

func TestDiscoverDurationUnknownWithoutSources(t *testing.T) {
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

	_, known := discoverDuration("/m/x.aac", 0, &fakeSeeker{}, format, false)
	assert.False(t, known)
}

func TestEngineSetDurationHint(t *testing.T) {
	e := newTestEngine(t)

	e.SetDurationHint("/m/a.mp3", 42*time.Second)
	e.SetDurationHint("", time.Minute)          // ignored
	e.SetDurationHint("/m/b.mp3", -time.Second) // ignored

	assert.Equal(t, 42*time.Second, e.hintFor("/m/a.mp3"))
	assert.Equal(t, time.Duration(0), e.hintFor("/m/b.mp3"))
}

func TestEngineFailedLoadTearsDownPriorSession(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "ten.wav")
	writeWAV(t, path, 44100, 441000)

	require.NoError(t, e.PlayFile(path))
	err := e.PlayFile(filepath.Join(t.TempDir(), "missing.flac"))
	require.Error(t, err)
	assert.False(t, e.IsPlaying())
}
