// Package config loads the daemon's two configuration layers
// (SPEC_FULL.md §A): a layered Viper config for daemon-wide knobs, and a
// per-deck `.model` TOML file decoded with BurntSushi/toml, following the
// teacher's cmd/root.go Viper wiring and adapters/config.Loader pattern.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Daemon holds the knobs that govern the reconciler, renderer, image
// writer, and subprocess reaper — not any one deck's own geometry, which
// lives in its `.model` file (see Model below).
type Daemon struct {
	LogLevel            string `mapstructure:"log_level"`
	RenderTickMS         int    `mapstructure:"render_tick_ms"`
	ImageWriterDelayMS   int    `mapstructure:"image_writer_delay_ms"`
	SubprocessReapMS     int    `mapstructure:"subprocess_reap_ms"`
	LongpressDefaultMS   int    `mapstructure:"longpress_default_ms"`
	ReconnectDelayMS     int    `mapstructure:"reconnect_delay_ms"`
}

// DefaultDaemon returns the daemon's built-in defaults (spec.md's implied
// constants: 100ms reaper poll per §5, 300ms longpress default per §4.9,
// ~10ms writer coalescing delay per §4.6).
func DefaultDaemon() Daemon {
	return Daemon{
		LogLevel:           "info",
		RenderTickMS:       33,
		ImageWriterDelayMS: 10,
		SubprocessReapMS:   100,
		LongpressDefaultMS: 300,
		ReconnectDelayMS:   2000,
	}
}

// LoadDaemon builds the daemon config through the full precedence chain:
// CLI flags (bound to viper by the caller before this runs) > STREAMDECKFS_*
// env vars > an optional --config file > built-in defaults, matching the
// teacher's initConfig layering.
func LoadDaemon(v *viper.Viper, configFile string) (Daemon, error) {
	d := DefaultDaemon()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("render_tick_ms", d.RenderTickMS)
	v.SetDefault("image_writer_delay_ms", d.ImageWriterDelayMS)
	v.SetDefault("subprocess_reap_ms", d.SubprocessReapMS)
	v.SetDefault("longpress_default_ms", d.LongpressDefaultMS)
	v.SetDefault("reconnect_delay_ms", d.ReconnectDelayMS)

	v.SetEnvPrefix("STREAMDECKFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Daemon{}, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var out Daemon
	if err := v.Unmarshal(&out); err != nil {
		return Daemon{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return out, nil
}

// Model is the `.model` file's decoded shape: just enough to reconstruct a
// deck's geometry when the physical device is absent (§6).
type Model struct {
	DeviceClass string `toml:"device_class"`
	Serial      string `toml:"serial"`
}

// ModelFileName is the reserved basename at the root of every deck
// directory, per §6 ("Root (per deck) holds a `.model` file").
const ModelFileName = ".model"

// LoadModel reads and decodes the `.model` file at the root of deckDir.
func LoadModel(deckDir string) (Model, error) {
	var m Model
	path := filepath.Join(deckDir, ModelFileName)
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return Model{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return m, nil
}

// WriteModel writes a `.model` file, used by `make-dirs` to scaffold a new
// deck skeleton (SPEC_FULL.md §A).
func WriteModel(deckDir string, m Model) error {
	if err := os.MkdirAll(deckDir, 0o755); err != nil {
		return fmt.Errorf("config: mkdir %s: %w", deckDir, err)
	}
	f, err := os.Create(filepath.Join(deckDir, ModelFileName))
	if err != nil {
		return fmt.Errorf("config: create .model: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(m)
}
