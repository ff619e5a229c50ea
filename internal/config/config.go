// Package config handles posehook configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// ErrInvalidConfig reports settings that cannot be used together.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Process  ProcessConfig  `yaml:"process" envPrefix:"PROCESS_"`
	Layout   LayoutConfig   `yaml:"layout" envPrefix:"LAYOUT_"`
	Actors   ActorsConfig   `yaml:"actors" envPrefix:"ACTORS_"`
	Gate     GateConfig     `yaml:"gate" envPrefix:"GATE_"`
	Profiles ProfilesConfig `yaml:"profiles" envPrefix:"PROFILES_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOGGING_"`
}

// Hex is an address written as 0x-prefixed hex in files, environment and
// flags. Decimal is accepted too.
type Hex uint64

// UnmarshalText parses a hex or decimal address.
func (h *Hex) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 0, 64)
	if err != nil {
		return fmt.Errorf("parsing address %q: %w", text, err)
	}
	*h = Hex(v)
	return nil
}

// MarshalText formats the address as hex.
func (h Hex) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// String returns the address as hex.
func (h Hex) String() string {
	return fmt.Sprintf("0x%X", uint64(h))
}

// ProcessConfig selects the host process.
type ProcessConfig struct {
	PID        int `yaml:"pid" env:"PID"`
	ModuleBase Hex `yaml:"module_base" env:"MODULE_BASE"` // main module, for signature scans
	ModuleSize int `yaml:"module_size" env:"MODULE_SIZE"`
}

// LayoutConfig selects the structure layout.
type LayoutConfig struct {
	Version        string `yaml:"version" env:"VERSION"`
	CacheSize      int    `yaml:"cache_size" env:"CACHE_SIZE"`
	MaxAttachments int    `yaml:"max_attachments" env:"MAX_ATTACHMENTS"`
}

// RangeConfig is a half-open span of actor table slots.
type RangeConfig struct {
	Start int `yaml:"start" env:"START"`
	End   int `yaml:"end" env:"END"`
}

// ActorsConfig locates the actor table. Table wins over TableSignature.
type ActorsConfig struct {
	Table          Hex           `yaml:"table" env:"TABLE"`
	TableSignature string        `yaml:"table_signature" env:"TABLE_SIGNATURE"`
	TableOperand   int           `yaml:"table_operand" env:"TABLE_OPERAND"`     // offset of the rel32 operand in the match
	TableInstrLen  int           `yaml:"table_instr_len" env:"TABLE_INSTR_LEN"` // length of the referencing instruction
	Normal         RangeConfig   `yaml:"normal" envPrefix:"NORMAL_"`
	Pose           RangeConfig   `yaml:"pose" envPrefix:"POSE_"`
	TickInterval   time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
}

// GateConfig locates pose-mode and freeze state.
type GateConfig struct {
	PoseFlag       Hex    `yaml:"pose_flag" env:"POSE_FLAG"`
	FreezePosition string `yaml:"freeze_position" env:"FREEZE_POSITION"`
	FreezeRotation string `yaml:"freeze_rotation" env:"FREEZE_ROTATION"`
	FreezeScale    string `yaml:"freeze_scale" env:"FREEZE_SCALE"`
}

// ProfilesConfig locates the edit profile file.
type ProfilesConfig struct {
	Path  string `yaml:"path" env:"PATH"`
	Watch bool   `yaml:"watch" env:"WATCH"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"LEVEL"`
	LogFile string `yaml:"log_file" env:"FILE"`
	JSON    bool   `yaml:"json" env:"JSON"` // JSON lines in the log file
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Process: ProcessConfig{
			ModuleSize: 0x2000000,
		},
		Layout: LayoutConfig{
			Version:        "7.0",
			CacheSize:      256,
			MaxAttachments: 8,
		},
		Actors: ActorsConfig{
			TableSignature: "48 8D 0D ?? ?? ?? ?? E8 ?? ?? ?? ?? 44 0F B6 83",
			TableOperand:   3,
			TableInstrLen:  7,
			Normal:         RangeConfig{Start: 0, End: 200},
			Pose:           RangeConfig{Start: 200, End: 240},
			TickInterval:   16 * time.Millisecond,
		},
		Gate: GateConfig{
			FreezePosition: "41 0F 29 24 12",
			FreezeRotation: "41 0F 29 5C 12 10",
			FreezeScale:    "41 0F 29 44 12 20",
		},
		Profiles: ProfilesConfig{
			Path:  filepath.Join(ConfigDir(), "profiles.yaml"),
			Watch: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings that would make the driver misbehave.
func (c *Config) Validate() error {
	for name, r := range map[string]RangeConfig{"normal": c.Actors.Normal, "pose": c.Actors.Pose} {
		if r.Start < 0 || r.End < r.Start {
			return fmt.Errorf("%w: %s actor range [%d, %d)", ErrInvalidConfig, name, r.Start, r.End)
		}
	}
	if c.Actors.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval %v", ErrInvalidConfig, c.Actors.TickInterval)
	}
	if c.Layout.MaxAttachments < 0 {
		return fmt.Errorf("%w: max attachments %d", ErrInvalidConfig, c.Layout.MaxAttachments)
	}
	if c.Process.ModuleSize < 0 || (c.Process.ModuleBase != 0 && c.Process.ModuleSize == 0) {
		return fmt.Errorf("%w: module size %d", ErrInvalidConfig, c.Process.ModuleSize)
	}
	if c.Actors.Table == 0 && c.Actors.TableSignature == "" {
		return fmt.Errorf("%w: actor table address or signature required", ErrInvalidConfig)
	}
	return nil
}
