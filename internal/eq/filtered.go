package eq

import (
	"github.com/gopxl/beep"
)

// FilteredSource pushes every sample of the wrapped streamer through the
// 10-band peaking cascade. beep delivers frames as stereo pairs, so the
// source keeps an independent filter-state bank per channel (decoders
// upmix mono to two identical channels, which the banks filter alike).
//
// Coefficients are fixed for the source's lifetime: a gain change rebuilds
// the whole playback session instead of mutating a live cascade.
type FilteredSource struct {
	src    beep.Streamer
	coeffs [NumBands]biquadCoeffs
	left   [NumBands]biquadState
	right  [NumBands]biquadState
}

// NewFilteredSource wraps src with a cascade computed from gains at the
// stream's native sample rate. Filter state starts zeroed.
func NewFilteredSource(src beep.Streamer, sampleRate float64, gains [NumBands]float64) *FilteredSource {
	f := &FilteredSource{src: src}
	for i := 0; i < NumBands; i++ {
		f.coeffs[i] = peakingCoeffs(sampleRate, BandFrequencies[i], bandQ, gains[i])
	}
	return f
}

func (f *FilteredSource) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.src.Stream(samples)
	for i := 0; i < n; i++ {
		l, r := samples[i][0], samples[i][1]
		for b := 0; b < NumBands; b++ {
			l = f.left[b].process(l, f.coeffs[b])
			r = f.right[b].process(r, f.coeffs[b])
		}
		samples[i][0], samples[i][1] = l, r
	}
	return n, ok
}

func (f *FilteredSource) Err() error {
	return f.src.Err()
}
