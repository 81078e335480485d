package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/1broseidon/deskminder/internal/board"
	"github.com/1broseidon/deskminder/internal/config"
	"github.com/1broseidon/deskminder/internal/desktophost"
	"github.com/1broseidon/deskminder/internal/hotkeys"
	"github.com/1broseidon/deskminder/internal/ipc"
	"github.com/1broseidon/deskminder/internal/platform"
	"github.com/1broseidon/deskminder/internal/runtimepath"
	"github.com/1broseidon/deskminder/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runHost(os.Args[2:]))
	case "add":
		os.Exit(runAdd(os.Args[2:]))
	case "list", "ls":
		os.Exit(runList(os.Args[2:]))
	case "done":
		os.Exit(runSetCompleted("done", true, os.Args[2:]))
	case "undo-done":
		os.Exit(runSetCompleted("undo-done", false, os.Args[2:]))
	case "remove", "rm":
		os.Exit(runRemove(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskminder <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the desktop widget (foreground)")
	fmt.Fprintln(w, "  status              Show widget status")
	fmt.Fprintln(w, "  reload              Ask the running widget to re-read reminders")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  add                 Add a reminder")
	fmt.Fprintln(w, "  list                List reminders")
	fmt.Fprintln(w, "  done                Mark a reminder completed")
	fmt.Fprintln(w, "  undo-done           Mark a reminder pending again")
	fmt.Fprintln(w, "  remove              Delete a reminder")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskminder <command> --help' for command-specific options.")
}

// newLogger builds the process logger at the configured level. Output goes
// to stderr so stdout stays free for command output and the MCP transport.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel())); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// parseNoArgs parses a flag-less subcommand.
func parseNoArgs(name, usage string, args []string) (int, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deskminder %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, usage)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func runStatus(args []string) int {
	if code, ok := parseNoArgs("status", "Show widget status via IPC.", args); !ok {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("desktop:        %s\n", status.Desktop)
	fmt.Printf("phase:          %s\n", status.Phase)
	fmt.Printf("reminder_count: %d\n", status.ReminderCount)
	fmt.Printf("zorder_passes:  %d\n", status.ZOrderPasses)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string) int {
	if code, ok := parseNoArgs("reload", "Ask the running widget to re-read reminders.", args); !ok {
		return code
	}

	count, err := ipc.NewClient().Reload()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("reloaded %d reminders\n", count)
	return 0
}

// hostDaemon exposes the running host and board to IPC clients.
type hostDaemon struct {
	host     *desktophost.Host
	board    *board.Board
	registry *desktophost.Registry
}

func (d *hostDaemon) Status() ipc.StatusData {
	st := d.host.Status()
	return ipc.StatusData{
		Desktop:       st.Visibility.String(),
		Phase:         st.Phase.String(),
		ReminderCount: d.board.Count(),
		ZOrderPasses:  st.ZOrderPasses,
	}
}

func (d *hostDaemon) Reload(ctx context.Context) (int, error) {
	if err := d.board.Reload(ctx); err != nil {
		return 0, err
	}
	d.registry.Post(desktophost.RequestRepaint)
	return d.board.Count(), nil
}

func runHost(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskminder run [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the desktop widget in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	path := fs.String("config", "", "Config file path (default: ~/.config/deskminder/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		log.Fatalf("Failed to open reminder store: %v", err)
	}

	colors := cfg.Theme.Colors()
	b := board.New(st, board.Theme{
		Background: colors.Background,
		Foreground: colors.Foreground,
		Accent:     colors.Accent,
		Muted:      colors.Muted,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Reload(ctx); err != nil {
		// The board renders the load error; keep going.
		logger.Warn("initial reminder load failed", "error", err)
	}

	backend, err := platform.New(platform.Options{
		DesktopClass: cfg.Host.DesktopClass,
		Anchor:       cfg.Host.Anchor,
		Margin:       cfg.Host.Margin,
		Background:   colors.Background,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Close()

	registry := desktophost.ProcessRegistry()
	host := desktophost.New(desktophost.Config{
		Window: desktophost.WindowOptions{
			Title:  "deskminder",
			Width:  cfg.Host.Width,
			Height: cfg.Host.Height,
		},
		DesktopClass:   cfg.Host.DesktopClass,
		TickInterval:   cfg.Host.TickInterval,
		MaxZOrderSteps: cfg.Host.MaxZOrderSteps,
		QueueSize:      cfg.Host.QueueSize,
		Logger:         logger,
		Registry:       registry,
		OnVisibilityChange: func(v desktophost.Visibility) {
			logger.Debug("desktop visibility changed", "desktop", v.String())
		},
	}, backend, backend.Painter())

	daemon := &hostDaemon{host: host, board: b, registry: registry}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		log.Fatalf("Failed to resolve IPC socket path: %v", err)
	}
	ipcServer := ipc.NewServer(socketPath, daemon, logger)
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	changes, err := st.Watch(ctx)
	if err != nil {
		logger.Warn("store watcher unavailable; use 'deskminder reload' after edits", "error", err)
	}
	go b.Run(ctx, registry, changes)

	reload := func() error {
		count, err := daemon.Reload(ctx)
		if err != nil {
			return err
		}
		logger.Info("reminders reloaded", "count", count)
		return nil
	}

	hotkeyHandler := hotkeys.NewHandler(backend, logger)
	if err := hotkeyHandler.RegisterReload(cfg.Host.ReloadHotkey, reload); err != nil {
		if errors.Is(err, hotkeys.ErrUnsupported) {
			logger.Info("reload hotkey not supported on this platform")
		} else {
			logger.Warn("failed to register reload hotkey", "hotkey", cfg.Host.ReloadHotkey, "error", err)
		}
	}

	go watchHangup(ctx, logger, reload)

	logger.Info("deskminder started",
		"store", cfg.Store.Path,
		"reminders", b.Count(),
		"desktop_class", cfg.Host.DesktopClass)

	return hostExitCode(host.Run(ctx, b), logger)
}

// hostExitCode maps the result of Host.Run to a process exit code. It
// returns instead of exiting so deferred cleanup still removes the socket.
func hostExitCode(err error, logger *slog.Logger) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, desktophost.ErrRenderInit):
		logger.Error("fatal: cannot draw the widget", "error", err)
	default:
		logger.Error("host exited", "error", err)
	}
	return 1
}

func loadConfig(path string) (*config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func openStore(path string) (*store.Store, *slog.Logger, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)
	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return nil, nil, err
	}
	return st, logger, nil
}
