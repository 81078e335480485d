package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawHostConfig struct {
	TickInterval   *time.Duration `yaml:"tick_interval"`
	DesktopClass   *string        `yaml:"desktop_class"`
	MaxZOrderSteps *int           `yaml:"max_zorder_steps"`
	Width          *int           `yaml:"width"`
	Height         *int           `yaml:"height"`
	Margin         *int           `yaml:"margin"`
	Anchor         *Anchor        `yaml:"anchor"`
	QueueSize      *int           `yaml:"queue_size"`
	ReloadHotkey   *string        `yaml:"reload_hotkey"`
}

type RawStoreConfig struct {
	Path *string `yaml:"path"`
}

type RawTheme struct {
	Preset     *string `yaml:"preset"`
	Background *string `yaml:"background"`
	Foreground *string `yaml:"foreground"`
	Accent     *string `yaml:"accent"`
	Muted      *string `yaml:"muted"`
}

type RawLoggingConfig struct {
	Level *string `yaml:"level"`
}

type RawConfig struct {
	Include IncludeList       `yaml:"include"`
	Host    *RawHostConfig    `yaml:"host"`
	Store   *RawStoreConfig   `yaml:"store"`
	Theme   *RawTheme         `yaml:"theme"`
	Display *string           `yaml:"display"`
	Logging *RawLoggingConfig `yaml:"logging"`
}

// merge overlays o on top of r; set fields in o win.
func (r RawConfig) merge(o RawConfig) RawConfig {
	out := r
	if o.Host != nil {
		if out.Host == nil {
			out.Host = &RawHostConfig{}
		}
		merged := mergeRawHost(*out.Host, *o.Host)
		out.Host = &merged
	}
	if o.Store != nil {
		if out.Store == nil {
			out.Store = &RawStoreConfig{}
		}
		merged := *out.Store
		if o.Store.Path != nil {
			merged.Path = o.Store.Path
		}
		out.Store = &merged
	}
	if o.Theme != nil {
		if out.Theme == nil {
			out.Theme = &RawTheme{}
		}
		merged := mergeRawTheme(*out.Theme, *o.Theme)
		out.Theme = &merged
	}
	if o.Display != nil {
		out.Display = o.Display
	}
	if o.Logging != nil {
		if out.Logging == nil {
			out.Logging = &RawLoggingConfig{}
		}
		merged := *out.Logging
		if o.Logging.Level != nil {
			merged.Level = o.Logging.Level
		}
		out.Logging = &merged
	}
	return out
}

func mergeRawHost(base RawHostConfig, overlay RawHostConfig) RawHostConfig {
	out := base
	if overlay.TickInterval != nil {
		out.TickInterval = overlay.TickInterval
	}
	if overlay.DesktopClass != nil {
		out.DesktopClass = overlay.DesktopClass
	}
	if overlay.MaxZOrderSteps != nil {
		out.MaxZOrderSteps = overlay.MaxZOrderSteps
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	if overlay.Margin != nil {
		out.Margin = overlay.Margin
	}
	if overlay.Anchor != nil {
		out.Anchor = overlay.Anchor
	}
	if overlay.QueueSize != nil {
		out.QueueSize = overlay.QueueSize
	}
	if overlay.ReloadHotkey != nil {
		out.ReloadHotkey = overlay.ReloadHotkey
	}
	return out
}

func mergeRawTheme(base RawTheme, overlay RawTheme) RawTheme {
	out := base
	if overlay.Preset != nil {
		out.Preset = overlay.Preset
	}
	if overlay.Background != nil {
		out.Background = overlay.Background
	}
	if overlay.Foreground != nil {
		out.Foreground = overlay.Foreground
	}
	if overlay.Accent != nil {
		out.Accent = overlay.Accent
	}
	if overlay.Muted != nil {
		out.Muted = overlay.Muted
	}
	return out
}
