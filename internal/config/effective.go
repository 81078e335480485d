package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig. The returned
// string is the theme preset the colors were based on.
func BuildEffectiveConfig(raw RawConfig) (*Config, string, error) {
	cfg := DefaultConfig()

	if h := raw.Host; h != nil {
		if h.TickInterval != nil {
			cfg.Host.TickInterval = *h.TickInterval
		}
		if h.DesktopClass != nil {
			cfg.Host.DesktopClass = *h.DesktopClass
		}
		cfg.Host.MaxZOrderSteps = derefInt(h.MaxZOrderSteps, cfg.Host.MaxZOrderSteps)
		cfg.Host.Width = derefInt(h.Width, cfg.Host.Width)
		cfg.Host.Height = derefInt(h.Height, cfg.Host.Height)
		cfg.Host.Margin = derefInt(h.Margin, cfg.Host.Margin)
		if h.Anchor != nil {
			cfg.Host.Anchor = Anchor(strings.ToLower(string(*h.Anchor)))
		}
		cfg.Host.QueueSize = derefInt(h.QueueSize, cfg.Host.QueueSize)
		if h.ReloadHotkey != nil {
			cfg.Host.ReloadHotkey = strings.TrimSpace(*h.ReloadHotkey)
		}
	}

	if raw.Store != nil && raw.Store.Path != nil {
		path, err := expandHome(*raw.Store.Path)
		if err != nil {
			return nil, "", &ValidationError{Path: "store.path", Err: err}
		}
		cfg.Store.Path = path
	}

	preset, err := applyTheme(cfg, raw.Theme)
	if err != nil {
		return nil, "", err
	}

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.Logging != nil && raw.Logging.Level != nil {
		cfg.Logging.Level = strings.ToLower(*raw.Logging.Level)
	}

	return cfg, preset, nil
}

func applyTheme(cfg *Config, raw *RawTheme) (string, error) {
	preset := DefaultBuiltinTheme
	if raw == nil {
		return preset, nil
	}
	if raw.Preset != nil {
		preset = *raw.Preset
	}
	base, ok := BuiltinThemes()[preset]
	if !ok {
		return "", &ValidationError{
			Path: "theme.preset",
			Err:  fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(sortedKeys(BuiltinThemes()), ", ")),
		}
	}
	if raw.Background != nil {
		base.Background = *raw.Background
	}
	if raw.Foreground != nil {
		base.Foreground = *raw.Foreground
	}
	if raw.Accent != nil {
		base.Accent = *raw.Accent
	}
	if raw.Muted != nil {
		base.Muted = *raw.Muted
	}
	cfg.Theme = base
	return preset, nil
}

func expandHome(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
	}
	return path, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
