package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Host.TickInterval != time.Second {
		t.Fatalf("expected tick_interval 1s, got %v", cfg.Host.TickInterval)
	}
	if cfg.Host.MaxZOrderSteps != DefaultMaxZOrderSteps {
		t.Fatalf("expected max_zorder_steps %d, got %d", DefaultMaxZOrderSteps, cfg.Host.MaxZOrderSteps)
	}
	if cfg.Theme.Preset != DefaultBuiltinTheme {
		t.Fatalf("expected theme preset %q, got %q", DefaultBuiltinTheme, cfg.Theme.Preset)
	}
}

func TestBuiltinThemes_AllValid(t *testing.T) {
	for name, theme := range BuiltinThemes() {
		cfg := DefaultConfig()
		cfg.Theme = theme
		if err := cfg.Validate(); err != nil {
			t.Fatalf("builtin theme %q invalid: %v", name, err)
		}
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Host.Anchor != AnchorTopRight {
		t.Fatalf("expected anchor %q, got %q", AnchorTopRight, res.Config.Host.Anchor)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Host.QueueSize != DefaultQueueSize {
		t.Fatalf("expected queue_size %d, got %d", DefaultQueueSize, res.Config.Host.QueueSize)
	}
}

func TestLoadFromPath_HostSettings(t *testing.T) {
	data := strings.Join([]string{
		"host:",
		"  tick_interval: 250ms",
		"  desktop_class: xfdesktop",
		"  max_zorder_steps: 8",
		"  width: 400",
		"  anchor: Bottom-Left",
		"  reload_hotkey: \" Mod4-r \"",
		"display: \":1\"",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	host := res.Config.Host
	if host.TickInterval != 250*time.Millisecond {
		t.Fatalf("expected tick_interval 250ms, got %v", host.TickInterval)
	}
	if host.DesktopClass != "xfdesktop" {
		t.Fatalf("expected desktop_class xfdesktop, got %q", host.DesktopClass)
	}
	if host.MaxZOrderSteps != 8 {
		t.Fatalf("expected max_zorder_steps 8, got %d", host.MaxZOrderSteps)
	}
	if host.Width != 400 || host.Height != DefaultHeight {
		t.Fatalf("expected 400x%d, got %dx%d", DefaultHeight, host.Width, host.Height)
	}
	if host.Anchor != AnchorBottomLeft {
		t.Fatalf("expected anchor %q, got %q", AnchorBottomLeft, host.Anchor)
	}
	if host.ReloadHotkey != "Mod4-r" {
		t.Fatalf("expected reload_hotkey Mod4-r, got %q", host.ReloadHotkey)
	}
	if res.Config.Display != ":1" {
		t.Fatalf("expected display :1, got %q", res.Config.Display)
	}

	val, src, err := Explain(res, "display")
	if err != nil {
		t.Fatalf("explain display: %v", err)
	}
	if val != ":1" {
		t.Fatalf("expected explain display :1, got %#v", val)
	}
	if src.Kind != SourceFile || src.File == "" || src.Line != 8 {
		t.Fatalf("expected file source at line 8, got %#v", src)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "host:\n  unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "host:\n  anchor: middle\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "host.anchor" {
		t.Fatalf("expected path host.anchor, got %q", verr.Path)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_Validation(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"zero tick", "host:\n  tick_interval: 0s\n", "host.tick_interval"},
		{"empty class", "host:\n  desktop_class: \"\"\n", "host.desktop_class"},
		{"zero steps", "host:\n  max_zorder_steps: 0\n", "host.max_zorder_steps"},
		{"negative margin", "host:\n  margin: -1\n", "host.margin"},
		{"zero queue", "host:\n  queue_size: 0\n", "host.queue_size"},
		{"bad color", "theme:\n  accent: \"blue\"\n", "theme.accent"},
		{"bad preset", "theme:\n  preset: neon\n", "theme.preset"},
		{"bad level", "logging:\n  level: trace\n", "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", tt.data)
			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestLoadFromPath_ThemePresetAndOverride(t *testing.T) {
	data := "theme:\n  preset: light\n  accent: \"#ff0000\"\n"
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	light := BuiltinThemes()["light"]
	if res.Config.Theme.Background != light.Background {
		t.Fatalf("expected light background %q, got %q", light.Background, res.Config.Theme.Background)
	}
	if got := res.Config.Theme.Colors().Accent; got != 0xff0000 {
		t.Fatalf("expected accent 0xff0000, got %#x", got)
	}

	_, src, err := Explain(res, "theme.background")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceBuiltin || src.Name != "light" {
		t.Fatalf("expected builtin source light, got %#v", src)
	}
	_, src, err = Explain(res, "theme.accent")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFile {
		t.Fatalf("expected file source, got %#v", src)
	}
}

func TestLoadFromPath_StorePathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, t.TempDir(), "config.yaml", "store:\n  path: ~/notes/reminders\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := filepath.Join(home, "notes", "reminders")
	if res.Config.Store.Path != want {
		t.Fatalf("expected store path %q, got %q", want, res.Config.Store.Path)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "host:\n  margin: 5\n  width: 300\n")
	writeConfig(t, configD, "20-override.yaml", "host:\n  margin: 6\n")

	// Main file overrides includes.
	path := writeConfig(t, dir, "config.yaml", "include:\n  - config.d\nhost:\n  margin: 7\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Host.Margin != 7 {
		t.Fatalf("expected margin to be 7, got %d", res.Config.Host.Margin)
	}
	if res.Config.Host.Width != 300 {
		t.Fatalf("expected width from include to be 300, got %d", res.Config.Host.Width)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestDefaultConfigPath_HonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	want := filepath.Join(dir, "deskminder", "config.yaml")
	if got != want {
		t.Fatalf("DefaultConfigPath() = %q, want %q", got, want)
	}
}

func TestLogLevel_EnvOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "warn"

	t.Setenv("DESKMINDER_LOG_LEVEL", "")
	if got := cfg.LogLevel(); got != "warn" {
		t.Fatalf("LogLevel() = %q, want warn", got)
	}
	t.Setenv("DESKMINDER_LOG_LEVEL", "DEBUG")
	if got := cfg.LogLevel(); got != "debug" {
		t.Fatalf("LogLevel() = %q, want debug", got)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Host.TickInterval = 2 * time.Second
	cfg.Host.Anchor = AnchorBottomRight

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Host.TickInterval != 2*time.Second {
		t.Fatalf("expected tick_interval 2s, got %v", res.Config.Host.TickInterval)
	}
	if res.Config.Host.Anchor != AnchorBottomRight {
		t.Fatalf("expected anchor %q, got %q", AnchorBottomRight, res.Config.Host.Anchor)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"#1e1f29", 0x1e1f29, false},
		{"FFFFFF", 0xffffff, false},
		{"#fff", 0, true},
		{"#gggggg", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseHexColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}
