// SPDX-License-Identifier: EPL-2.0

// Command voxmix plays audio files through the mixing engine.
//
//	voxmix [-config voxmix.yaml] [-capture out.wav] [-no-tui] file...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ik5/voxmix"
	"github.com/ik5/voxmix/backend"
	"github.com/ik5/voxmix/engine"
	"github.com/ik5/voxmix/formats/wav"
	"github.com/ik5/voxmix/internal/config"
	"github.com/ik5/voxmix/internal/logger"
	"github.com/ik5/voxmix/internal/ui"
	"go.uber.org/zap"
)

var (
	configPath  = flag.String("config", "", "yaml configuration file (default ./voxmix.yaml when present)")
	capturePath = flag.String("capture", "", "write the most recent output to this WAV file on exit")
	noTUI       = flag.Bool("no-tui", false, "play every file once and exit instead of starting the TUI")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "voxmix:", err)
		os.Exit(1)
	}
}

func run(paths []string) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if !*noTUI {
		// stdout belongs to the TUI
		cfg.Log.Stdout = false
		cfg.Log.File.Enabled = true
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	be, err := backend.New(cfg.Backend, log)
	if err != nil {
		return err
	}

	opts, err := cfg.EngineOptions(be, voxmix.DefaultRegistry(), log)
	if err != nil {
		return err
	}

	eng, err := engine.New(opts)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources, err := eng.LoadSources(ctx, paths)
	if err != nil {
		return err
	}
	log.Info("sources loaded", zap.Int("count", len(sources)))

	if *noTUI {
		err = playOnce(ctx, eng, sources)
	} else {
		err = playInteractive(eng, sources)
	}

	if *capturePath != "" {
		if cerr := capture(eng, cfg.RecentSampleFrames, *capturePath); cerr != nil {
			err = errors.Join(err, cerr)
		} else {
			log.Info("capture written", zap.String("path", *capturePath))
		}
	}

	return err
}

func playInteractive(eng *engine.Engine, sources []engine.SourceHandle) error {
	for _, src := range sources {
		if _, err := eng.AddVoice(src, eng.SourceName(src), false, 1, false); err != nil {
			return err
		}
	}

	return ui.Run(eng)
}

// playOnce starts every source as a one-shot and waits until all have ended.
func playOnce(ctx context.Context, eng *engine.Engine, sources []engine.SourceHandle) error {
	for _, src := range sources {
		if _, err := eng.PlayOneShotSound(src, eng.SourceName(src), 1); err != nil {
			return err
		}
	}

	if err := eng.StartStream(); err != nil {
		return err
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for len(eng.Voices()) > 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}

	return nil
}

func capture(eng *engine.Engine, frames int, path string) error {
	samples := make([]int16, frames*eng.OutputChannels())
	n := eng.RecentSamples(samples)

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := wav.WriteWAV16(f, eng.OutputSampleRate(), eng.OutputChannels(), samples[:n]); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
