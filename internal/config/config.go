package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"

	"avatar-morph/internal/limbmass"
	"avatar-morph/internal/logging"
	"avatar-morph/internal/morph"
	"avatar-morph/internal/skintone"
	"avatar-morph/internal/texgen"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "AVATAR_"

// Config holds file paths, texture generation and pipeline settings.
// Pointer fields distinguish "unset" from a legitimate zero.
type Config struct {
	// Paths
	MappingFile string `json:"mapping_file" env:"MAPPING_FILE"`
	LimbConfig  string `json:"limb_config" env:"LIMB_CONFIG"`
	OutputDir   string `json:"output_dir" env:"OUTPUT_DIR"`

	// Texture settings
	CacheCapacity         int      `json:"cache_capacity" env:"CACHE_CAPACITY"`
	Detail                string   `json:"detail" env:"DETAIL"`
	Resolution            int      `json:"resolution" env:"RESOLUTION"`
	PoreIntensity         *float64 `json:"pore_intensity" env:"PORE_INTENSITY"`
	ColorVariation        *float64 `json:"color_variation" env:"COLOR_VARIATION"`
	ImperfectionIntensity *float64 `json:"imperfection_intensity" env:"IMPERFECTION_INTENSITY"`
	ProceduralTextures    *bool    `json:"procedural_textures" env:"PROCEDURAL_TEXTURES"`
	SSSMap                *bool    `json:"sss_map" env:"SSS_MAP"`
	BaseColorMap          bool     `json:"base_color_map" env:"BASE_COLOR_MAP"`

	// Pipeline settings
	ToneTolerance int    `json:"tone_tolerance" env:"TONE_TOLERANCE"`
	DefaultGender string `json:"default_gender" env:"DEFAULT_GENDER"`
	GateMode      string `json:"gate_mode" env:"GATE_MODE"`
	LengthAxis    string `json:"length_axis" env:"LENGTH_AXIS"`
	LogLevel      string `json:"log_level" env:"LOG_LEVEL"`

	// Export settings
	Format  string `json:"format" env:"FORMAT"`
	Workers int    `json:"workers" env:"WORKERS"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overlays AVATAR_* environment variables. Unset variables leave
// the field alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	MappingFile string
	OutputDir   string
	Detail      string
	Format      string
	LogLevel    string
	Workers     int
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file and environment
	if flags.MappingFile != "" {
		c.MappingFile = flags.MappingFile
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Detail != "" {
		c.Detail = flags.Detail
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.OutputDir == "" {
		c.OutputDir = "skin-maps"
	}
	if c.LimbConfig != "" && c.MappingFile != "" && !filepath.IsAbs(c.LimbConfig) {
		c.LimbConfig = filepath.Join(filepath.Dir(c.MappingFile), c.LimbConfig)
	}

	// Defaults
	tex := texgen.DefaultOptions()
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = texgen.DefaultCapacity
	}
	if c.Detail == "" {
		c.Detail = string(tex.Detail)
	}
	if c.PoreIntensity == nil {
		c.PoreIntensity = &tex.PoreIntensity
	}
	if c.ColorVariation == nil {
		c.ColorVariation = &tex.ColorVariation
	}
	if c.ImperfectionIntensity == nil {
		c.ImperfectionIntensity = &tex.ImperfectionIntensity
	}
	if c.ProceduralTextures == nil {
		on := true
		c.ProceduralTextures = &on
	}
	if c.SSSMap == nil {
		c.SSSMap = &tex.SSS
	}
	if c.ToneTolerance <= 0 {
		c.ToneTolerance = skintone.DefaultTolerance
	}
	if c.DefaultGender == "" {
		c.DefaultGender = string(morph.Female)
	}
	if c.GateMode == "" {
		c.GateMode = string(limbmass.GateKillSwitch)
	}
	if c.LengthAxis == "" {
		c.LengthAxis = "y"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Format == "" {
		c.Format = string(texgen.FormatWebP)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// TextureOptions converts the texture settings. Call after Resolve.
func (c *Config) TextureOptions() (texgen.Options, error) {
	detail, err := texgen.ParseDetail(c.Detail)
	if err != nil {
		return texgen.Options{}, fmt.Errorf("config: %w", err)
	}
	opt := texgen.Options{
		Detail:     detail,
		Resolution: c.Resolution,
		BaseColor:  c.BaseColorMap,
		SSS:        c.SSSMap != nil && *c.SSSMap,
	}
	if c.PoreIntensity != nil {
		opt.PoreIntensity = *c.PoreIntensity
	}
	if c.ColorVariation != nil {
		opt.ColorVariation = *c.ColorVariation
	}
	if c.ImperfectionIntensity != nil {
		opt.ImperfectionIntensity = *c.ImperfectionIntensity
	}
	return opt, nil
}

// ExportFormat parses the export format.
func (c *Config) ExportFormat() (texgen.Format, error) {
	f, err := texgen.ParseFormat(c.Format)
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return f, nil
}

// Gender returns the fallback gender, rejecting unknown spellings.
func (c *Config) Gender() (morph.Gender, error) {
	switch g := morph.Gender(c.DefaultGender); g {
	case morph.Male, morph.Female:
		return g, nil
	}
	return "", fmt.Errorf("config: unknown default gender %q", c.DefaultGender)
}

// Procedural reports whether procedural textures are enabled.
func (c *Config) Procedural() bool {
	return c.ProceduralTextures == nil || *c.ProceduralTextures
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}

// LimbMassConfig loads the limb-mass configuration file when set, otherwise
// the defaults, and applies the gate mode and length axis overrides.
func (c *Config) LimbMassConfig() (limbmass.Config, error) {
	lc := limbmass.DefaultConfig()
	if c.LimbConfig != "" {
		data, err := os.ReadFile(c.LimbConfig)
		if err != nil {
			return limbmass.Config{}, fmt.Errorf("config: read %s: %w", c.LimbConfig, err)
		}
		if lc, err = limbmass.LoadConfig(data); err != nil {
			return limbmass.Config{}, fmt.Errorf("config: %s: %w", c.LimbConfig, err)
		}
	}
	switch m := limbmass.GateMode(c.GateMode); m {
	case "":
	case limbmass.GateKillSwitch, limbmass.GateMultiplier:
		lc.GateMode = m
	default:
		return limbmass.Config{}, fmt.Errorf("config: unknown gate mode %q", c.GateMode)
	}
	switch c.LengthAxis {
	case "":
	case "x", "y", "z":
		lc.LengthAxis = c.LengthAxis
	default:
		return limbmass.Config{}, fmt.Errorf("config: unknown length axis %q", c.LengthAxis)
	}
	return lc, nil
}
