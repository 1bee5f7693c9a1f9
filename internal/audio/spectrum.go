package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Bands is the smoothed level of three frequency regions, each in [0, 1].
type Bands struct {
	Bass, Mid, High float64
}

// Meter turns blocks of mixed output into band levels for the HUD.
type Meter struct {
	buf      []complex128
	maxLevel float64
	bands    Bands
}

func NewMeter(size int) *Meter {
	if size <= 0 {
		size = BufferSize
	}
	return &Meter{buf: make([]complex128, size), maxLevel: 0.1}
}

// Analyze windows samples, runs an FFT and folds the magnitudes into
// Bands with automatic gain. Short blocks are zero padded.
func (m *Meter) Analyze(samples []float32) Bands {
	n := len(m.buf)
	for i := range m.buf {
		var v float64
		if i < len(samples) {
			v = float64(samples[i])
		}
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		m.buf[i] = complex(v*window, 0)
	}
	spectrum := fft.FFT(m.buf)

	// bin edges for a 1024 point block at 44.1kHz: ~215Hz and ~2kHz
	bassEdge, midEdge, highEdge := n*5/1024, n*46/1024, n*460/1024
	if bassEdge < 1 {
		bassEdge = 1
	}
	bassSum, midSum, highSum := 0.0, 0.0, 0.0
	for i := 0; i < n/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		switch {
		case i < bassEdge:
			bassSum += mag
		case i < midEdge:
			midSum += mag
		case i < highEdge:
			highSum += mag
		}
	}

	peak := math.Max(bassSum/100.0, math.Max(midSum/500.0, highSum/1000.0))
	if peak > m.maxLevel {
		m.maxLevel = peak
	} else {
		m.maxLevel *= 0.999
	}
	gain := 1.0
	if m.maxLevel > 0.001 {
		gain = 1.0 / m.maxLevel
	}
	if gain > 50.0 {
		gain = 50.0
	}

	m.bands.Bass = m.bands.Bass*0.9 + math.Min(bassSum/100.0*gain, 1.0)*0.1
	m.bands.Mid = m.bands.Mid*0.9 + math.Min(midSum/500.0*gain, 1.0)*0.1
	m.bands.High = m.bands.High*0.9 + math.Min(highSum/1000.0*gain, 1.0)*0.1
	return m.bands
}

func (m *Meter) Bands() Bands { return m.bands }
