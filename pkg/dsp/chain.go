package dsp

import (
	"math"

	"github.com/tmarkko/quillcast/pkg/status"
)

// ChainConfig holds the fixed filter-graph constants. They are set once at
// construction and are not runtime-configurable.
type ChainConfig struct {
	// SampleRate in Hz of the incoming blocks.
	SampleRate int

	// BlockSize is the exact number of samples per Submit.
	BlockSize int

	// BandpassHz is the centre frequency of the bandpass stage.
	BandpassHz int

	// BandwidthHz is the bandpass width in Hz.
	BandwidthHz int

	// NoiseReduction is the gate attenuation strength in [0, 1]. Blocks
	// whose level falls below NoiseFloorDB are scaled by 1-NoiseReduction.
	NoiseReduction float64

	// NoiseFloorDB is the gate threshold in dBFS (negative).
	NoiseFloorDB float64
}

// Chain implements [Filter] as a bandpass stage followed by a
// noise-reduction stage. The bandpass is an RBJ biquad with unity peak
// gain; the noise-reduction stage is a block RMS gate.
type Chain struct {
	blockSize int

	// biquad coefficients (normalised, a0 == 1)
	b0, b1, b2 float64
	a1, a2     float64

	// direct form II transposed state, persistent across blocks
	z1, z2 float64

	gateGain    float64
	gateFloorDB float64
}

// Compile-time assertion that Chain satisfies Filter.
var _ Filter = (*Chain)(nil)

// NewChain validates cfg and computes the biquad coefficients.
func NewChain(cfg ChainConfig) (*Chain, error) {
	if cfg.SampleRate <= 0 || cfg.BlockSize <= 0 {
		return nil, status.New(status.ConfigurationError, "dsp: sample rate and block size must be positive")
	}
	if cfg.BandpassHz <= 0 || cfg.BandwidthHz <= 0 {
		return nil, status.New(status.ConfigurationError, "dsp: bandpass centre and width must be positive")
	}
	if cfg.BandpassHz*2 >= cfg.SampleRate {
		return nil, status.Errorf(status.ConfigurationError,
			"dsp: bandpass centre %d Hz is at or above Nyquist for %d Hz", cfg.BandpassHz, cfg.SampleRate)
	}
	if cfg.NoiseReduction < 0 || cfg.NoiseReduction > 1 {
		return nil, status.Errorf(status.ConfigurationError,
			"dsp: noise reduction %.2f is outside [0, 1]", cfg.NoiseReduction)
	}
	if cfg.NoiseFloorDB >= 0 {
		return nil, status.Errorf(status.ConfigurationError,
			"dsp: noise floor %.1f dB must be negative", cfg.NoiseFloorDB)
	}

	// RBJ cookbook bandpass, constant 0 dB peak gain. Q is derived from the
	// width in Hz around the centre frequency.
	w0 := 2 * math.Pi * float64(cfg.BandpassHz) / float64(cfg.SampleRate)
	q := float64(cfg.BandpassHz) / float64(cfg.BandwidthHz)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return &Chain{
		blockSize:   cfg.BlockSize,
		b0:          alpha / a0,
		b1:          0,
		b2:          -alpha / a0,
		a1:          -2 * math.Cos(w0) / a0,
		a2:          (1 - alpha) / a0,
		gateGain:    1 - cfg.NoiseReduction,
		gateFloorDB: cfg.NoiseFloorDB,
	}, nil
}

// Submit runs the block through the bandpass biquad and then the noise
// gate, in place.
func (c *Chain) Submit(samples []float32) error {
	if len(samples) != c.blockSize {
		return status.Errorf(status.InvalidArgument,
			"dsp: block of %d samples, chain is shaped for %d", len(samples), c.blockSize)
	}

	var sum float64
	for i, x := range samples {
		in := float64(x)
		out := c.b0*in + c.z1
		c.z1 = c.b1*in - c.a1*out + c.z2
		c.z2 = c.b2*in - c.a2*out
		samples[i] = float32(out)
		sum += out * out
	}

	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return nil
	}
	if 20*math.Log10(rms) < c.gateFloorDB {
		for i := range samples {
			samples[i] = float32(float64(samples[i]) * c.gateGain)
		}
	}
	return nil
}
