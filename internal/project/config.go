package project

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"abiforge/internal/dispatch"
)

// Config is the decoded abiforge.toml.
type Config struct {
	Output   OutputConfig    `toml:"output"`
	Dispatch dispatch.Config `toml:"dispatch"`
	Build    BuildConfig     `toml:"build"`
	Log      LogConfig       `toml:"log"`
}

type OutputConfig struct {
	// Dir is resolved against the project root.
	Dir string `toml:"dir"`
	// AbiFile is the unit manifest file name inside Dir.
	AbiFile string `toml:"abi_file"`
	// Fragments enables abis/<Class>.abi.ts and abis/<Class>.d.ts.
	Fragments bool `toml:"fragments"`
	// Declarations writes the spliced declaration dump next to the manifest.
	Declarations bool `toml:"declarations"`
}

type BuildConfig struct {
	Inputs         []string `toml:"inputs"`
	Jobs           int      `toml:"jobs"`
	Cache          bool     `toml:"cache"`
	IncludeLibrary bool     `toml:"include_library"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// File enables rotated file logging in addition to stderr.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Project is a located and decoded manifest.
type Project struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the configuration used without a manifest.
func Default() Config {
	return Config{
		Output: OutputConfig{
			Dir:       "build",
			AbiFile:   "abi.json",
			Fragments: true,
		},
		Dispatch: dispatch.DefaultConfig(),
		Build:    BuildConfig{Cache: true},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load finds abiforge.toml from startDir upwards and decodes it over the
// defaults. ok is false when no manifest exists.
func Load(startDir string) (*Project, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Project{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes a manifest file over Default. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that decode fine but make no sense.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.AbiFile) == "" {
		return fmt.Errorf("[output].abi_file must not be empty")
	}
	if strings.ContainsAny(c.Output.AbiFile, `/\`) {
		return fmt.Errorf("[output].abi_file must be a file name, got %q", c.Output.AbiFile)
	}
	if c.Build.Jobs < 0 {
		return fmt.Errorf("[build].jobs must not be negative")
	}
	if strings.ContainsAny(c.Dispatch.RoutingName, " ()") {
		return fmt.Errorf("[dispatch].routing_name %q is not an identifier", c.Dispatch.RoutingName)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("[log].level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// OutputDir resolves the output directory against the project root.
func (p *Project) OutputDir() string {
	if filepath.IsAbs(p.Config.Output.Dir) {
		return p.Config.Output.Dir
	}
	return filepath.Join(p.Root, p.Config.Output.Dir)
}

// Encode renders cfg as TOML, used by `abiforge init`.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
