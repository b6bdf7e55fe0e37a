package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanDecode(t *testing.T) {
	assert.True(t, CanDecode("/music/a.mp3"))
	assert.True(t, CanDecode("/music/A.FLAC"))
	assert.True(t, CanDecode("/music/b.ogg"))
	assert.True(t, CanDecode("/music/c.wav"))
	assert.False(t, CanDecode("/music/d.aac"))
	assert.False(t, CanDecode("/music/readme.txt"))
	assert.False(t, CanDecode("/music/noext"))
}

func TestOpenTrackUnsupportedExtension(t *testing.T) {
	_, _, _, err := openTrack("/music/d.aac")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestOpenTrackMissingFile(t *testing.T) {
	_, _, _, err := openTrack(filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileOpen))
}

func TestOpenTrackCorruptPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.flac")
	require.NoError(t, os.WriteFile(path, []byte("definitely not flac"), 0644))

	_, _, _, err := openTrack(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestOpenTrackValidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.wav")
	writeWAV(t, path, 44100, 4410)

	file, streamer, format, err := openTrack(path)
	require.NoError(t, err)
	defer file.Close()
	defer streamer.Close()

	assert.Equal(t, 44100, int(format.SampleRate))
	assert.Equal(t, 4410, streamer.Len())
}
