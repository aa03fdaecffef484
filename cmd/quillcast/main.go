// Command quillcast captures microphone audio, runs the enabled analysis
// stages on overlapping windows, and prints the assembled script on exit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmarkko/quillcast/internal/config"
	"github.com/tmarkko/quillcast/internal/engine"
	"github.com/tmarkko/quillcast/internal/observe"
	"github.com/tmarkko/quillcast/internal/pipeline"
	"github.com/tmarkko/quillcast/internal/transcript"
	"github.com/tmarkko/quillcast/pkg/analysis"
	"github.com/tmarkko/quillcast/pkg/analysis/whisper"
	"github.com/tmarkko/quillcast/pkg/capture"
	capturemock "github.com/tmarkko/quillcast/pkg/capture/mock"
	"github.com/tmarkko/quillcast/pkg/capture/portaudio"
	"github.com/tmarkko/quillcast/pkg/dsp"
	"github.com/tmarkko/quillcast/pkg/status"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "quillcast: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "quillcast: %v\n", err)
		}
		return 1
	}

	logger := observe.NewLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("quillcast starting",
		"config", *configPath,
		"source", cfg.Audio.Source,
		"window_ms", cfg.Audio.WindowMs,
		"log_level", cfg.Server.LogLevel,
	)
	if c := cfg.Audio.RingCapacity; c&(c-1) != 0 {
		slog.Warn("audio.ring_capacity is not a power of two, rings fall back to modulo indexing", "capacity", c)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry.
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "quillcast"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return int(status.ConfigurationError)
	}
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	if cfg.Server.MetricsAddr != "" {
		go func() {
			if err := observe.ServeMetrics(ctx, cfg.Server.MetricsAddr); err != nil {
				slog.Error("metrics endpoint failed", "err", err)
			}
		}()
		slog.Info("metrics endpoint listening", "addr", cfg.Server.MetricsAddr)
	}

	// Provider registry.
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	source, err := reg.CreateSource(cfg.Audio.Source, cfg)
	if err != nil {
		slog.Error("failed to create capture source", "source", cfg.Audio.Source, "err", err)
		return int(status.CodeOf(err))
	}
	defer func() {
		if err := source.Close(); err != nil {
			slog.Warn("capture source close error", "err", err)
		}
	}()

	filter, err := reg.CreateFilter("chain", cfg)
	if err != nil {
		slog.Error("failed to create filter", "err", err)
		return int(status.CodeOf(err))
	}

	// Coordinator. Features are one-shot and must be set before Start.
	eng, err := engine.New(engine.Config{
		WindowCapacity: cfg.Audio.RingCapacity,
		EmbeddingDim:   cfg.Speakers.EmbeddingDim,
		MaxSpeakers:    cfg.Speakers.MaxProfiles,
	})
	if err != nil {
		slog.Error("failed to create engine", "err", err)
		return int(status.CodeOf(err))
	}

	engines, err := buildAnalysisEngines(cfg, reg, eng)
	if err != nil {
		slog.Error("failed to build analysis engines", "err", err)
		return int(status.CodeOf(err))
	}
	defer func() {
		for _, e := range engines {
			closer, ok := e.(io.Closer)
			if !ok {
				continue
			}
			if err := closer.Close(); err != nil {
				slog.Warn("analysis engine close error", "kind", e.Kind(), "err", err)
			}
		}
	}()

	if err := enableFeatures(cfg, eng); err != nil {
		slog.Error("failed to enable features", "err", err)
		return int(status.CodeOf(err))
	}

	script := transcript.New()
	p, err := pipeline.New(pipeline.Params{
		Config:  cfg,
		Engine:  eng,
		Source:  source,
		Filter:  filter,
		Engines: engines,
		Script:  script,
		Logger:  logger,
		Metrics: observe.DefaultMetrics(),
	})
	if err != nil {
		slog.Error("failed to assemble pipeline", "err", err)
		return int(status.CodeOf(err))
	}

	eng.Start()
	eng.StartRecording()
	slog.Info("recording — press Ctrl+C to stop")

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping")
		eng.StopRecording()
		eng.Stop()
		runErr = <-done
	case runErr = <-done:
		eng.StopRecording()
		eng.Stop()
	}
	if runErr != nil {
		observe.ErrorLog(logger, status.CodeOf(runErr), "pipeline error", "err", runErr)
	}

	if script.Len() > 0 {
		if err := script.Render(os.Stdout); err != nil {
			slog.Warn("failed to render script", "err", err)
		}
	} else {
		slog.Info("nothing transcribed")
	}

	slog.Info("goodbye")
	return int(status.CodeOf(runErr))
}

// registerBuiltinProviders wires the compiled-in sources, filters, and
// recognition engines into the registry.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterSource("portaudio", func(cfg *config.Config) (capture.Source, error) {
		return portaudio.New(portaudio.Config{
			SampleRate:    cfg.Audio.SampleRate,
			FramesPerRead: cfg.Audio.SamplesPerHalfWindow(),
			Device:        cfg.Audio.Device,
		})
	})
	reg.RegisterSource("synthetic", func(cfg *config.Config) (capture.Source, error) {
		// Silence paced at half-window intervals, for running without a
		// microphone.
		half := cfg.Audio.SamplesPerHalfWindow()
		return &capturemock.Source{
			Interval: time.Duration(half) * time.Second / time.Duration(cfg.Audio.SampleRate),
		}, nil
	})

	reg.RegisterFilter("chain", func(cfg *config.Config) (dsp.Filter, error) {
		return dsp.NewChain(dsp.ChainConfig{
			SampleRate:     cfg.Audio.SampleRate,
			BlockSize:      cfg.Audio.SamplesPerHalfWindow(),
			BandpassHz:     cfg.Filter.BandpassHz,
			BandwidthHz:    cfg.Filter.BandwidthHz,
			NoiseReduction: cfg.Filter.NoiseReduction,
			NoiseFloorDB:   cfg.Filter.NoiseFloorDB,
		})
	})

	reg.RegisterRecognizer("whisper", func(cfg *config.Config) (analysis.Engine, error) {
		return whisper.New(cfg.Recognition.ModelPath, whisper.WithLanguage(cfg.Recognition.Language))
	})
	reg.RegisterRecognizer("noop", func(cfg *config.Config) (analysis.Engine, error) {
		return &analysis.Noop{EngineKind: analysis.KindRecognition}, nil
	})
}

// buildAnalysisEngines creates one engine per enabled feature. Diarization
// and emotion are placeholder engines until real models land; speaker
// identification matches against the profiles enrolled on eng.
func buildAnalysisEngines(cfg *config.Config, reg *config.Registry, eng *engine.Engine) ([]analysis.Engine, error) {
	var engines []analysis.Engine
	if cfg.Features.Diarization {
		engines = append(engines, &analysis.Noop{EngineKind: analysis.KindDiarization, Label: "speaker"})
	}
	if cfg.Features.Recognition {
		rec, err := reg.CreateRecognizer(cfg.Recognition.Engine, cfg)
		if err != nil {
			return nil, err
		}
		engines = append(engines, rec)
	}
	if cfg.Features.Identification {
		engines = append(engines, &analysis.Identifier{
			Profiles: eng,
			Dim:      cfg.Speakers.EmbeddingDim,
		})
	}
	if cfg.Features.Emotion {
		engines = append(engines, &analysis.Noop{EngineKind: analysis.KindEmotion})
	}
	return engines, nil
}

// enableFeatures flips the engine's one-shot feature flags per the config.
func enableFeatures(cfg *config.Config, eng *engine.Engine) error {
	if cfg.Features.Diarization {
		if err := eng.EnableDiarization(); err != nil {
			return err
		}
	}
	if cfg.Features.Recognition {
		if err := eng.EnableRecognition(); err != nil {
			return err
		}
	}
	if cfg.Features.Identification {
		if err := eng.EnableIdentification(); err != nil {
			return err
		}
	}
	if cfg.Features.Emotion {
		if err := eng.EnableEmotion(); err != nil {
			return err
		}
	}
	return nil
}
