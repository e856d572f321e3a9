// SPDX-License-Identifier: EPL-2.0

// Package config loads voxmix settings from an optional yaml file and
// VOXMIX_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ik5/voxmix/audio"
	"github.com/ik5/voxmix/backend"
	"github.com/ik5/voxmix/engine"
	"github.com/ik5/voxmix/internal/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const EnvPrefix = "voxmix"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	SampleRate         int           `mapstructure:"sample_rate"`
	Channels           int           `mapstructure:"channels"`
	BufferFrameSize    int           `mapstructure:"buffer_frame_size"`
	ShareMode          string        `mapstructure:"share_mode"`
	Backend            string        `mapstructure:"backend"`
	MaxVoices          int           `mapstructure:"max_voices"`
	MaxSources         int           `mapstructure:"max_sources"`
	MasterVolume       float64       `mapstructure:"master_volume"`
	ResampleQuality    string        `mapstructure:"resample_quality"`
	MixBehavior        string        `mapstructure:"mix_behavior"`
	RecentSampleFrames int           `mapstructure:"recent_sample_frames"`
	Log                logger.Config `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	d := engine.DefaultOptions()

	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("channels", d.Channels)
	v.SetDefault("buffer_frame_size", d.BufferFrameSize)
	v.SetDefault("share_mode", d.ShareMode.String())
	v.SetDefault("backend", backend.NameMalgo)
	v.SetDefault("max_voices", d.MaxVoices)
	v.SetDefault("max_sources", d.MaxSources)
	v.SetDefault("master_volume", d.MasterVolume)
	v.SetDefault("resample_quality", d.ResampleQuality.String())
	v.SetDefault("mix_behavior", d.MixBehavior.String())
	v.SetDefault("recent_sample_frames", d.RecentSampleFrames)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.name", "voxmix.log")
	v.SetDefault("log.file.max_size_mb", 50)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age_days", 14)
	v.SetDefault("log.file.compress", false)
}

// Load reads path when it is not empty, otherwise an optional voxmix.yaml in
// the working directory. Environment variables override both.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("voxmix")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// EngineOptions maps cfg onto engine options using the given collaborators.
func (c Config) EngineOptions(be backend.Backend, reg *audio.Registry, log *zap.Logger) (engine.Options, error) {
	mode, err := backend.ParseShareMode(c.ShareMode)
	if err != nil {
		return engine.Options{}, fmt.Errorf("share_mode: %w: %w", ErrInvalidConfig, err)
	}

	quality, err := audio.ParseQuality(c.ResampleQuality)
	if err != nil {
		return engine.Options{}, fmt.Errorf("resample_quality: %w: %w", ErrInvalidConfig, err)
	}

	mix, err := audio.ParseMixBehavior(c.MixBehavior)
	if err != nil {
		return engine.Options{}, fmt.Errorf("mix_behavior: %w: %w", ErrInvalidConfig, err)
	}

	if c.MasterVolume < 0 || c.MasterVolume > 1 {
		return engine.Options{}, fmt.Errorf("master_volume %v: %w", c.MasterVolume, ErrInvalidConfig)
	}

	return engine.Options{
		SampleRate:         c.SampleRate,
		Channels:           c.Channels,
		BufferFrameSize:    c.BufferFrameSize,
		ShareMode:          mode,
		MaxVoices:          c.MaxVoices,
		MaxSources:         c.MaxSources,
		MasterVolume:       float32(c.MasterVolume),
		ResampleQuality:    quality,
		MixBehavior:        mix,
		RecentSampleFrames: c.RecentSampleFrames,
		Backend:            be,
		Registry:           reg,
		Logger:             log,
	}, nil
}
