package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	host.tick_interval
//	host.desktop_class
//	host.max_zorder_steps
//	host.width
//	host.height
//	host.margin
//	host.anchor
//	host.queue_size
//	host.reload_hotkey
//	store.path
//	theme.preset
//	theme.background
//	display
//	logging.level
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	// Theme colors fall back to the preset they came from.
	if strings.HasPrefix(path, "theme.") {
		return value, Source{Kind: SourceBuiltin, Name: res.ThemeBase}, nil
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "host.tick_interval":
		return cfg.Host.TickInterval, nil
	case "host.desktop_class":
		return cfg.Host.DesktopClass, nil
	case "host.max_zorder_steps":
		return cfg.Host.MaxZOrderSteps, nil
	case "host.width":
		return cfg.Host.Width, nil
	case "host.height":
		return cfg.Host.Height, nil
	case "host.margin":
		return cfg.Host.Margin, nil
	case "host.anchor":
		return cfg.Host.Anchor, nil
	case "host.queue_size":
		return cfg.Host.QueueSize, nil
	case "host.reload_hotkey":
		return cfg.Host.ReloadHotkey, nil
	case "store.path":
		return cfg.Store.Path, nil
	case "theme.preset":
		return cfg.Theme.Preset, nil
	case "theme.background":
		return cfg.Theme.Background, nil
	case "theme.foreground":
		return cfg.Theme.Foreground, nil
	case "theme.accent":
		return cfg.Theme.Accent, nil
	case "theme.muted":
		return cfg.Theme.Muted, nil
	case "display":
		return cfg.Display, nil
	case "logging.level":
		return cfg.Logging.Level, nil
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
