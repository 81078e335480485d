package config

const DefaultBuiltinTheme = "dark"

// BuiltinThemes returns the built-in color presets selectable with
// theme.preset. Individual theme keys override the preset.
func BuiltinThemes() map[string]Theme {
	return map[string]Theme{
		"dark": {
			Preset:     "dark",
			Background: "#1e1f29",
			Foreground: "#e6e6e6",
			Accent:     "#8be9fd",
			Muted:      "#6c7086",
		},
		"light": {
			Preset:     "light",
			Background: "#fafafa",
			Foreground: "#2e3440",
			Accent:     "#0366d6",
			Muted:      "#9aa0a6",
		},
		"solarized": {
			Preset:     "solarized",
			Background: "#002b36",
			Foreground: "#eee8d5",
			Accent:     "#b58900",
			Muted:      "#586e75",
		},
	}
}
