// Package portaudio implements capture.Source on top of the PortAudio
// blocking-read API. The stream is opened mono float32 at the configured
// sample rate with exactly one half-window of frames per buffer, so every
// Read delivers a complete capture chunk.
package portaudio

import (
	"fmt"

	palib "github.com/gordonklaus/portaudio"

	"github.com/tmarkko/quillcast/pkg/capture"
	"github.com/tmarkko/quillcast/pkg/status"
)

// Compile-time assertion that Source satisfies capture.Source.
var _ capture.Source = (*Source)(nil)

// Config selects the device and stream shape.
type Config struct {
	// SampleRate in Hz, e.g. 16000.
	SampleRate int

	// FramesPerRead is the number of samples delivered by each Read. This
	// is the pipeline's half-window size.
	FramesPerRead int

	// Device is the input device name. Empty selects the default input
	// device.
	Device string
}

// Source is a PortAudio-backed capture source.
type Source struct {
	stream *palib.Stream
	buf    []float32
	active bool
}

// New initialises PortAudio, resolves the input device and opens (but does
// not start) the stream. The caller must Close the source to release the
// backend.
func New(cfg Config) (*Source, error) {
	if cfg.SampleRate <= 0 || cfg.FramesPerRead <= 0 {
		return nil, status.New(status.ConfigurationError, "portaudio: sample rate and frames per read must be positive")
	}
	if err := palib.Initialize(); err != nil {
		return nil, status.Wrap(status.IOError, "portaudio: initialize", err)
	}

	s := &Source{buf: make([]float32, cfg.FramesPerRead)}

	device, err := resolveDevice(cfg.Device)
	if err != nil {
		_ = palib.Terminate()
		return nil, err
	}

	params := palib.StreamParameters{
		Input: palib.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultHighInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.FramesPerRead,
	}

	stream, err := palib.OpenStream(params, s.buf)
	if err != nil {
		_ = palib.Terminate()
		return nil, status.Wrap(status.IOError, fmt.Sprintf("portaudio: open stream on %q", device.Name), err)
	}
	s.stream = stream
	return s, nil
}

// resolveDevice returns the named input device, or the default input device
// when name is empty.
func resolveDevice(name string) (*palib.DeviceInfo, error) {
	if name == "" {
		device, err := palib.DefaultInputDevice()
		if err != nil {
			return nil, status.Wrap(status.IOError, "portaudio: default input device", err)
		}
		return device, nil
	}

	devices, err := palib.Devices()
	if err != nil {
		return nil, status.Wrap(status.IOError, "portaudio: list devices", err)
	}
	for _, device := range devices {
		if device.Name == name && device.MaxInputChannels > 0 {
			return device, nil
		}
	}
	return nil, status.Errorf(status.ConfigurationError, "portaudio: no input device named %q", name)
}

// Start begins the stream.
func (s *Source) Start() error {
	if s.active {
		return status.New(status.InvalidOperation, "portaudio: stream already started")
	}
	if err := s.stream.Start(); err != nil {
		return status.Wrap(status.IOError, "portaudio: start stream", err)
	}
	s.active = true
	return nil
}

// Stop halts the stream.
func (s *Source) Stop() error {
	if !s.active {
		return status.New(status.InvalidOperation, "portaudio: stream not started")
	}
	if err := s.stream.Stop(); err != nil {
		return status.Wrap(status.IOError, "portaudio: stop stream", err)
	}
	s.active = false
	return nil
}

// Read blocks until the next half-window has been captured and copies it
// into dst. dst must be exactly FramesPerRead samples long.
func (s *Source) Read(dst []float32) error {
	if len(dst) != len(s.buf) {
		return status.Errorf(status.InvalidArgument,
			"portaudio: read of %d samples, stream delivers %d", len(dst), len(s.buf))
	}
	if err := s.stream.Read(); err != nil {
		return status.Wrap(status.IOError, "portaudio: read stream", err)
	}
	copy(dst, s.buf)
	return nil
}

// Active reports whether the stream is started.
func (s *Source) Active() bool { return s.active }

// Close stops the stream if needed, closes it and terminates PortAudio.
func (s *Source) Close() error {
	if s.active {
		_ = s.stream.Stop()
		s.active = false
	}
	var firstErr error
	if err := s.stream.Close(); err != nil {
		firstErr = status.Wrap(status.IOError, "portaudio: close stream", err)
	}
	if err := palib.Terminate(); err != nil && firstErr == nil {
		firstErr = status.Wrap(status.IOError, "portaudio: terminate", err)
	}
	return firstErr
}
