package audio

import "errors"

var (
	// ErrDeviceUnavailable means the output device could not be bound at
	// engine construction. Fatal, never retried.
	ErrDeviceUnavailable = errors.New("audio output device unavailable")

	// ErrFileOpen means the track path could not be opened.
	ErrFileOpen = errors.New("cannot open audio file")

	// ErrDecode means the container or codec could not be parsed.
	ErrDecode = errors.New("cannot decode audio stream")
)
