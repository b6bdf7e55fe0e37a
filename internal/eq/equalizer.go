package eq

import (
	"math"
	"sync"
)

// NumBands is the number of peaking filters in the cascade.
const NumBands = 10

// bandQ is shared by all bands; only gain is user-controlled.
const bandQ = 1.0

// BandFrequencies are the fixed center frequencies of the graphic EQ, in Hz.
var BandFrequencies = [NumBands]float64{31, 62, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// GainFromSlider maps a [0,1] UI control value to a gain in dB (±12 dB range).
func GainFromSlider(value float64) float64 {
	return (value - 0.5) * 24.0
}

// Equalizer holds the 10 band gains shared between the control context and
// the playback engine. It is guarded by its own lock so gain updates never
// contend with the playback lock; a session reads one Snapshot when built.
type Equalizer struct {
	mu    sync.RWMutex
	gains [NumBands]float64
}

func NewEqualizer() *Equalizer {
	return &Equalizer{}
}

// SetGains overwrites all band gains atomically, in dB.
func (e *Equalizer) SetGains(gains [NumBands]float64) {
	e.mu.Lock()
	e.gains = gains
	e.mu.Unlock()
}

// SetBandGain sets one band's gain in dB. Out-of-range bands are ignored.
func (e *Equalizer) SetBandGain(band int, gainDB float64) {
	if band < 0 || band >= NumBands {
		return
	}
	e.mu.Lock()
	e.gains[band] = gainDB
	e.mu.Unlock()
}

// Snapshot returns a consistent copy of all band gains.
func (e *Equalizer) Snapshot() [NumBands]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gains
}

// biquadCoeffs holds normalized coefficients of one second-order section
// (a0 already divided out).
type biquadCoeffs struct {
	b0, b1, b2, a1, a2 float64
}

// peakingCoeffs derives peaking-EQ coefficients for one band.
// At gainDB = 0 the section is numerically transparent.
func peakingCoeffs(sampleRate, freq, q, gainDB float64) biquadCoeffs {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw := math.Cos(w0)

	a0 := 1 + alpha/a
	return biquadCoeffs{
		b0: (1 + alpha*a) / a0,
		b1: -2 * cosw / a0,
		b2: (1 - alpha*a) / a0,
		a1: -2 * cosw / a0,
		a2: (1 - alpha/a) / a0,
	}
}

// biquadState is the transposed direct-form-II delay line of one section.
// It is zeroed whenever a playback session restarts.
type biquadState struct {
	z1, z2 float64
}

func (s *biquadState) process(x float64, c biquadCoeffs) float64 {
	y := c.b0*x + s.z1
	s.z1 = c.b1*x - c.a1*y + s.z2
	s.z2 = c.b2*x - c.a2*y
	return y
}
