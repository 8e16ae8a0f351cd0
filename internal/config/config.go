// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

// Package config layers the engine's runtime configuration: compiled-in
// defaults, an optional YAML file, then CLI flags, each layer overriding
// the last via koanf.
package config

import (
	"log/slog"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/gargoilxd/pie/internal/engine"
)

// Config is the fully resolved, immutable configuration handed to the CLI
// and the engine at startup.
type Config struct {
	LogFormat          string
	LogLevel           slog.Level
	MaxProveDepth      int
	MaxInferIterations int
}

// EngineOptions projects Config onto engine.Options (logger is filled in by
// the caller once it has constructed one from LogFormat/LogLevel).
func (c Config) EngineOptions(logger *slog.Logger) engine.Options {
	return engine.Options{
		MaxProveDepth:      c.MaxProveDepth,
		MaxInferIterations: c.MaxInferIterations,
		Logger:             logger,
	}
}

var defaults = map[string]any{
	"log.format":                  "json",
	"log.level":                   "info",
	"engine.max_prove_depth":      0,
	"engine.max_infer_iterations": 0,
}

// Load resolves Config from, in increasing priority: compiled-in defaults,
// an optional YAML file (path from $PIE_CONFIG, falling back to
// ./pie.yaml if it exists), then flags already parsed onto fs.
func Load(fs *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_ERROR").Wrapf(err, "loading default configuration")
	}

	if path := configFilePath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_ERROR").With("path", path).Wrapf(err, "loading YAML config file")
		}
	}

	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_ERROR").Wrapf(err, "loading CLI flag overrides")
		}
	}

	level, err := parseLevel(k.String("log.level"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		LogFormat:          k.String("log.format"),
		LogLevel:           level,
		MaxProveDepth:      k.Int("engine.max_prove_depth"),
		MaxInferIterations: k.Int("engine.max_infer_iterations"),
	}, nil
}

// configFilePath resolves the optional YAML config file location: $PIE_CONFIG
// if set, otherwise ./pie.yaml if it exists, otherwise none.
func configFilePath() string {
	if p := os.Getenv("PIE_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("pie.yaml"); err == nil {
		return "pie.yaml"
	}
	return ""
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, oops.Code("CONFIG_LOAD_ERROR").With("log.level", s).Errorf("unrecognized log level %q", s)
	}
}
