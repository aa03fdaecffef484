// Package config provides the configuration schema, loader, and provider
// registry for the Quillcast pipeline.
package config

// LogLevel controls log verbosity for the Quillcast process.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Quillcast.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Audio       AudioConfig       `yaml:"audio"`
	Filter      FilterConfig      `yaml:"filter"`
	Speakers    SpeakersConfig    `yaml:"speakers"`
	Features    FeaturesConfig    `yaml:"features"`
	Recognition RecognitionConfig `yaml:"recognition"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the TCP address the Prometheus /metrics endpoint
	// listens on (e.g., ":9090"). Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// AudioConfig shapes the capture pipeline.
type AudioConfig struct {
	// SampleRate in Hz. Default: 16000.
	SampleRate int `yaml:"sample_rate"`

	// WindowMs is the analysis-window duration in milliseconds; capture
	// chunks are half a window. Default: 50.
	WindowMs int `yaml:"window_ms"`

	// RingCapacity is the capacity of the raw and finished ring buffers,
	// counted in segments. A power of two enables the bitmask wraparound.
	// Default: 16.
	RingCapacity int `yaml:"ring_capacity"`

	// PollIntervalMs is the sleep between idle polls in every stage loop.
	// Default: 5.
	PollIntervalMs int `yaml:"poll_interval_ms"`

	// Source selects the capture backend: "portaudio" or "synthetic".
	Source string `yaml:"source"`

	// Device is the input device name for the portaudio source. Empty
	// selects the default input device.
	Device string `yaml:"device"`
}

// SamplesPerWindow derives the full analysis-window length in samples.
// The rate is divided before multiplying so integer truncation cannot
// understate the window.
func (a AudioConfig) SamplesPerWindow() int {
	return a.SampleRate / 1000 * a.WindowMs
}

// SamplesPerHalfWindow derives the capture-chunk length in samples.
func (a AudioConfig) SamplesPerHalfWindow() int {
	return a.SamplesPerWindow() / 2
}

// FilterConfig holds the fixed digital-filter constants.
type FilterConfig struct {
	// BandpassHz is the bandpass centre frequency. Default: 1700.
	BandpassHz int `yaml:"bandpass_hz"`

	// BandwidthHz is the bandpass width. Default: 3100.
	BandwidthHz int `yaml:"bandwidth_hz"`

	// NoiseReduction is the gate strength in [0, 1]. Default: 0.3.
	NoiseReduction float64 `yaml:"noise_reduction"`

	// NoiseFloorDB is the gate threshold in dBFS. Default: -50.
	NoiseFloorDB float64 `yaml:"noise_floor_db"`
}

// SpeakersConfig shapes the profile collection.
type SpeakersConfig struct {
	// EmbeddingDim is the speaker-embedding dimension. Default: 512.
	EmbeddingDim int `yaml:"embedding_dim"`

	// MaxProfiles caps the collection. Default: 1024.
	MaxProfiles int `yaml:"max_profiles"`
}

// FeaturesConfig selects which analysis stages are enabled at startup.
// Features are one-shot: they can only be set before the engine starts.
type FeaturesConfig struct {
	Diarization    bool `yaml:"diarization"`
	Recognition    bool `yaml:"recognition"`
	Identification bool `yaml:"identification"`
	Emotion        bool `yaml:"emotion"`
}

// RecognitionConfig configures the speech-recognition engine.
type RecognitionConfig struct {
	// Engine selects the backend: "whisper" (local whisper.cpp model) or
	// "noop". Default: "noop".
	Engine string `yaml:"engine"`

	// ModelPath is the whisper.cpp model file. Required when Engine is
	// "whisper".
	ModelPath string `yaml:"model_path"`

	// Language is the transcription language code. Default: "en".
	Language string `yaml:"language"`
}
