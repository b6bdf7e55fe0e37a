package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

// decoders maps file extensions to the beep decoder handling them. The
// library scanner accepts more extensions than this; anything outside the
// set fails with ErrDecode when played.
var decoders = map[string]decodeFunc{
	".mp3":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".flac": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) },
	".wav":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	".ogg":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
	".oga":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
}

// CanDecode reports whether a path's extension has a registered decoder.
func CanDecode(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// openTrack opens path and decodes its headers. The caller owns both the
// returned file and streamer and must close them when the session ends.
func openTrack(path string) (*os.File, beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, nil, beep.Format{}, fmt.Errorf("%w: unsupported extension %q", ErrDecode, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, beep.Format{}, fmt.Errorf("%w: %v", ErrFileOpen, err)
	}

	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, nil, beep.Format{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return f, streamer, format, nil
}
