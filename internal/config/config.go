package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Anchor names the screen corner the widget is pinned to.
type Anchor string

const (
	AnchorTopRight    Anchor = "top-right"
	AnchorTopLeft     Anchor = "top-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorBottomLeft  Anchor = "bottom-left"
)

const (
	DefaultTickInterval   = time.Second
	DefaultMaxZOrderSteps = 64
	DefaultQueueSize      = 64
	DefaultWidth          = 360
	DefaultHeight         = 420
	DefaultMargin         = 24

	// X11 has no desktop window class of its own; the linux backend reports
	// this name for the root window and _NET_WM_WINDOW_TYPE_DESKTOP windows.
	X11DesktopClass     = "desktop_window"
	WindowsDesktopClass = "WorkerW"
)

// HostConfig configures the desktop-level window host.
type HostConfig struct {
	TickInterval   time.Duration `yaml:"tick_interval"`
	DesktopClass   string        `yaml:"desktop_class"`
	MaxZOrderSteps int           `yaml:"max_zorder_steps"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	Margin         int           `yaml:"margin"`
	Anchor         Anchor        `yaml:"anchor"`
	QueueSize      int           `yaml:"queue_size"`
	ReloadHotkey   string        `yaml:"reload_hotkey,omitempty"`
}

// StoreConfig configures reminder persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Theme holds the widget colors as #RRGGBB strings.
type Theme struct {
	Preset     string `yaml:"preset"`
	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`
	Accent     string `yaml:"accent"`
	Muted      string `yaml:"muted"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`
}

// Config holds the application configuration.
type Config struct {
	Host    HostConfig    `yaml:"host"`
	Store   StoreConfig   `yaml:"store"`
	Theme   Theme         `yaml:"theme"`
	Display string        `yaml:"display,omitempty"`
	Logging LoggingConfig `yaml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		Host: HostConfig{
			TickInterval:   DefaultTickInterval,
			DesktopClass:   defaultDesktopClass(),
			MaxZOrderSteps: DefaultMaxZOrderSteps,
			Width:          DefaultWidth,
			Height:         DefaultHeight,
			Margin:         DefaultMargin,
			Anchor:         AnchorTopRight,
			QueueSize:      DefaultQueueSize,
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Theme: BuiltinThemes()[DefaultBuiltinTheme],
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultDesktopClass() string {
	if runtime.GOOS == "windows" {
		return WindowsDesktopClass
	}
	return X11DesktopClass
}

func defaultStorePath() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "deskminder", "reminders")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		// Last resort fallback - use current directory
		home = "."
	}
	return filepath.Join(home, ".local", "share", "deskminder", "reminders")
}

// LogLevel returns the effective log level, honouring DESKMINDER_LOG_LEVEL.
func (c *Config) LogLevel() string {
	if env := strings.TrimSpace(os.Getenv("DESKMINDER_LOG_LEVEL")); env != "" {
		return strings.ToLower(env)
	}
	if c == nil || c.Logging.Level == "" {
		return "info"
	}
	return c.Logging.Level
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Host.TickInterval <= 0 {
		return &ValidationError{Path: "host.tick_interval", Err: fmt.Errorf("tick_interval must be > 0")}
	}
	if c.Host.TickInterval < 10*time.Millisecond {
		return &ValidationError{Path: "host.tick_interval", Err: fmt.Errorf("tick_interval must be >= 10ms")}
	}
	if strings.TrimSpace(c.Host.DesktopClass) == "" {
		return &ValidationError{Path: "host.desktop_class", Err: fmt.Errorf("desktop_class is required")}
	}
	if c.Host.MaxZOrderSteps < 1 {
		return &ValidationError{Path: "host.max_zorder_steps", Err: fmt.Errorf("max_zorder_steps must be >= 1")}
	}
	if c.Host.Width < 1 || c.Host.Height < 1 {
		return &ValidationError{Path: "host.width", Err: fmt.Errorf("width and height must be >= 1")}
	}
	if c.Host.Margin < 0 {
		return &ValidationError{Path: "host.margin", Err: fmt.Errorf("margin must be >= 0")}
	}
	switch c.Host.Anchor {
	case AnchorTopRight, AnchorTopLeft, AnchorBottomRight, AnchorBottomLeft:
	default:
		return &ValidationError{Path: "host.anchor", Err: fmt.Errorf("anchor must be one of: top-right, top-left, bottom-right, bottom-left")}
	}
	if c.Host.QueueSize < 1 {
		return &ValidationError{Path: "host.queue_size", Err: fmt.Errorf("queue_size must be >= 1")}
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return &ValidationError{Path: "store.path", Err: fmt.Errorf("store path is required")}
	}
	for _, field := range []struct {
		path  string
		value string
	}{
		{"theme.background", c.Theme.Background},
		{"theme.foreground", c.Theme.Foreground},
		{"theme.accent", c.Theme.Accent},
		{"theme.muted", c.Theme.Muted},
	} {
		if _, err := ParseHexColor(field.value); err != nil {
			return &ValidationError{Path: field.path, Err: err}
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	return nil
}

// ParseHexColor parses "#RRGGBB" into 0xRRGGBB.
func ParseHexColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}

// Colors is a parsed Theme.
type Colors struct {
	Background uint32
	Foreground uint32
	Accent     uint32
	Muted      uint32
}

// Colors returns the parsed theme colors. The theme must already be valid.
func (t Theme) Colors() Colors {
	bg, _ := ParseHexColor(t.Background)
	fg, _ := ParseHexColor(t.Foreground)
	accent, _ := ParseHexColor(t.Accent)
	muted, _ := ParseHexColor(t.Muted)
	return Colors{Background: bg, Foreground: fg, Accent: accent, Muted: muted}
}
