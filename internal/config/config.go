package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Driver names accepted in DisplayConfig.Driver.
const (
	DriverILI9341 = "ili9341"
	DriverFBDev   = "fbdev"
	DriverMemory  = "memory"
)

// DisplayConfig selects and wires the panel behind the flush callback.
type DisplayConfig struct {
	// Driver is one of "ili9341", "fbdev" or "memory".
	Driver string `yaml:"driver"`

	// SPIPort is the periph.io SPI port name ("" opens the first port).
	SPIPort string `yaml:"spi_port"`
	// SPIHz is the SPI clock for the panel.
	SPIHz int64 `yaml:"spi_hz"`
	// DCPin, ResetPin and BacklightPin are GPIO names, e.g. "GPIO25".
	DCPin        string `yaml:"dc_pin"`
	ResetPin     string `yaml:"reset_pin"`
	BacklightPin string `yaml:"backlight_pin"`

	// FBDevice is the framebuffer node used by the fbdev driver.
	FBDevice string `yaml:"fb_device"`
}

// TouchConfig describes the optional resistive touch controller.
type TouchConfig struct {
	Enabled bool   `yaml:"enabled"`
	SPIPort string `yaml:"spi_port"`
	SPIHz   int64  `yaml:"spi_hz"`
	// IRQPin goes low while the panel is touched. Empty means poll pressure only.
	IRQPin string `yaml:"irq_pin"`
	// Raw calibration range of the controller's 12-bit readings.
	XMin int `yaml:"x_min"`
	XMax int `yaml:"x_max"`
	YMin int `yaml:"y_min"`
	YMax int `yaml:"y_max"`
}

// TimingConfig holds the periods of the tick source and render loop.
type TimingConfig struct {
	TickPeriod   time.Duration `yaml:"tick_period"`
	RenderPeriod time.Duration `yaml:"render_period"`
}

// MonitorConfig controls the periodic status report.
type MonitorConfig struct {
	// Schedule is a cron spec with optional seconds field, e.g. "@every 1m".
	// Empty disables the monitor.
	Schedule string `yaml:"schedule"`
}

// Config is the top-level application configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Core     int           `yaml:"core"`
	Display  DisplayConfig `yaml:"display"`
	Touch    TouchConfig   `yaml:"touch"`
	Timing   TimingConfig  `yaml:"timing"`
	Monitor  MonitorConfig `yaml:"monitor"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Core:     1,
		Display: DisplayConfig{
			Driver:       DriverILI9341,
			SPIPort:      "",
			SPIHz:        40_000_000,
			DCPin:        "GPIO25",
			ResetPin:     "GPIO24",
			BacklightPin: "GPIO18",
			FBDevice:     "/dev/fb1",
		},
		Touch: TouchConfig{
			Enabled: false,
			SPIPort: "SPI0.1",
			SPIHz:   2_000_000,
			IRQPin:  "GPIO17",
			XMin:    200,
			XMax:    3900,
			YMin:    200,
			YMax:    3900,
		},
		Timing: TimingConfig{
			TickPeriod:   time.Millisecond,
			RenderPeriod: 10 * time.Millisecond,
		},
		Monitor: MonitorConfig{
			Schedule: "@every 1m",
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Core < 0 {
		c.Core = def.Core
	}
	switch c.Display.Driver {
	case DriverILI9341, DriverFBDev, DriverMemory:
		// ok
	default:
		// Unknown value; fall back to the SPI panel the board ships with.
		c.Display.Driver = def.Display.Driver
	}
	if c.Display.SPIHz <= 0 {
		c.Display.SPIHz = def.Display.SPIHz
	}
	if c.Display.DCPin == "" {
		c.Display.DCPin = def.Display.DCPin
	}
	if c.Display.FBDevice == "" {
		c.Display.FBDevice = def.Display.FBDevice
	}
	if c.Touch.SPIHz <= 0 {
		c.Touch.SPIHz = def.Touch.SPIHz
	}
	if c.Touch.XMax <= c.Touch.XMin {
		c.Touch.XMin, c.Touch.XMax = def.Touch.XMin, def.Touch.XMax
	}
	if c.Touch.YMax <= c.Touch.YMin {
		c.Touch.YMin, c.Touch.YMax = def.Touch.YMin, def.Touch.YMax
	}
	if c.Timing.TickPeriod <= 0 {
		c.Timing.TickPeriod = def.Timing.TickPeriod
	}
	if c.Timing.RenderPeriod <= 0 {
		c.Timing.RenderPeriod = def.Timing.RenderPeriod
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".touchpanel-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
