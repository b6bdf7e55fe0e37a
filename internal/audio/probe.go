package audio

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	gowav "github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
)

// ProbeDuration estimates a track's duration when the decoder does not
// report an authoritative length. Header math is tried first (no payload
// decoding); the last resort is a full decode summing frame counts.
// Returns false when no sample rate is ever discovered.
func ProbeDuration(path string, debug bool) (time.Duration, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		if d, ok := probeWAVHeader(path); ok {
			return d, true
		}
	case ".mp3":
		if d, ok := probeMP3(path); ok {
			return d, true
		}
	}
	return probeFullDecode(path, debug)
}

// probeWAVHeader derives the duration from the RIFF data-chunk size and
// sample rate alone.
func probeWAVHeader(path string) (time.Duration, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, false
	}
	d, err := dec.Duration()
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// probeMP3 walks the MP3 frame headers to total the decoded length.
// go-mp3 emits 16-bit stereo, so one frame is four bytes.
func probeMP3(path string) (time.Duration, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return 0, false
	}
	frames := dec.Length() / 4
	rate := dec.SampleRate()
	if frames <= 0 || rate <= 0 {
		return 0, false
	}
	return time.Duration(float64(frames) / float64(rate) * float64(time.Second)), true
}

// probeFullDecode decodes the whole stream, counting frames.
func probeFullDecode(path string, debug bool) (time.Duration, bool) {
	file, streamer, format, err := openTrack(path)
	if err != nil {
		return 0, false
	}
	defer file.Close()
	defer streamer.Close()

	if format.SampleRate <= 0 {
		return 0, false
	}

	var frames int
	buf := make([][2]float64, 2048)
	for {
		n, ok := streamer.Stream(buf)
		frames += n
		if !ok {
			break
		}
	}
	if frames == 0 {
		return 0, false
	}
	if debug {
		log.Printf("[PROBE] decoded %d frames at %d Hz for %s", frames, format.SampleRate, filepath.Base(path))
	}
	return format.SampleRate.D(frames), true
}
