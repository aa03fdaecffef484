package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. Defaults are applied for
// unset fields before validation.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader decodes a configuration from r. Unknown fields are
// rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, suitable for
// running without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.WindowMs == 0 {
		c.Audio.WindowMs = 50
	}
	if c.Audio.RingCapacity == 0 {
		c.Audio.RingCapacity = 16
	}
	if c.Audio.PollIntervalMs == 0 {
		c.Audio.PollIntervalMs = 5
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "portaudio"
	}
	if c.Filter.BandpassHz == 0 {
		c.Filter.BandpassHz = 1700
	}
	if c.Filter.BandwidthHz == 0 {
		c.Filter.BandwidthHz = 3100
	}
	if c.Filter.NoiseReduction == 0 {
		c.Filter.NoiseReduction = 0.3
	}
	if c.Filter.NoiseFloorDB == 0 {
		c.Filter.NoiseFloorDB = -50
	}
	if c.Speakers.EmbeddingDim == 0 {
		c.Speakers.EmbeddingDim = 512
	}
	if c.Speakers.MaxProfiles == 0 {
		c.Speakers.MaxProfiles = 1024
	}
	if c.Recognition.Engine == "" {
		c.Recognition.Engine = "noop"
	}
	if c.Recognition.Language == "" {
		c.Recognition.Language = "en"
	}
}

// Validate checks the configuration for consistency. All problems found
// are reported joined into a single error.
func (c *Config) Validate() error {
	var errs []error

	if !c.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level: unknown level %q", c.Server.LogLevel))
	}

	if c.Audio.SampleRate < 1000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate: must be at least 1000, got %d", c.Audio.SampleRate))
	}
	if c.Audio.WindowMs <= 0 {
		errs = append(errs, fmt.Errorf("audio.window_ms: must be positive, got %d", c.Audio.WindowMs))
	} else if c.Audio.SamplesPerWindow()%2 != 0 {
		errs = append(errs, fmt.Errorf("audio.window_ms: %dms at %dHz yields an odd sample count", c.Audio.WindowMs, c.Audio.SampleRate))
	}
	if c.Audio.RingCapacity <= 0 {
		errs = append(errs, fmt.Errorf("audio.ring_capacity: must be positive, got %d", c.Audio.RingCapacity))
	}
	if c.Audio.PollIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("audio.poll_interval_ms: must be positive, got %d", c.Audio.PollIntervalMs))
	}
	switch c.Audio.Source {
	case "portaudio", "synthetic":
	default:
		errs = append(errs, fmt.Errorf("audio.source: unknown source %q", c.Audio.Source))
	}

	if c.Filter.BandpassHz <= 0 {
		errs = append(errs, fmt.Errorf("filter.bandpass_hz: must be positive, got %d", c.Filter.BandpassHz))
	}
	if c.Filter.BandwidthHz <= 0 {
		errs = append(errs, fmt.Errorf("filter.bandwidth_hz: must be positive, got %d", c.Filter.BandwidthHz))
	}
	if c.Audio.SampleRate > 0 && c.Filter.BandpassHz*2 >= c.Audio.SampleRate {
		errs = append(errs, fmt.Errorf("filter.bandpass_hz: %dHz is at or above the Nyquist limit for %dHz audio", c.Filter.BandpassHz, c.Audio.SampleRate))
	}
	if c.Filter.NoiseReduction < 0 || c.Filter.NoiseReduction > 1 {
		errs = append(errs, fmt.Errorf("filter.noise_reduction: must be within [0, 1], got %g", c.Filter.NoiseReduction))
	}
	if c.Filter.NoiseFloorDB > 0 {
		errs = append(errs, fmt.Errorf("filter.noise_floor_db: must not be positive, got %g", c.Filter.NoiseFloorDB))
	}

	if c.Speakers.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("speakers.embedding_dim: must be positive, got %d", c.Speakers.EmbeddingDim))
	}
	if c.Speakers.MaxProfiles <= 0 {
		errs = append(errs, fmt.Errorf("speakers.max_profiles: must be positive, got %d", c.Speakers.MaxProfiles))
	}

	switch c.Recognition.Engine {
	case "noop":
	case "whisper":
		if c.Features.Recognition && c.Recognition.ModelPath == "" {
			errs = append(errs, errors.New("recognition.model_path: required when the whisper engine is selected"))
		}
	default:
		errs = append(errs, fmt.Errorf("recognition.engine: unknown engine %q", c.Recognition.Engine))
	}

	return errors.Join(errs...)
}
