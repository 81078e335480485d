package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type fakeDaemon struct {
	reloads   atomic.Int32
	count     int
	reloadErr error
}

func (d *fakeDaemon) Status() StatusData {
	return StatusData{
		Desktop:       "shown",
		Phase:         "shown",
		ReminderCount: d.count,
		ZOrderPasses:  42,
	}
}

func (d *fakeDaemon) Reload(ctx context.Context) (int, error) {
	d.reloads.Add(1)
	if d.reloadErr != nil {
		return 0, d.reloadErr
	}
	return d.count, nil
}

// socketPath keeps the path short; unix socket paths are limited to ~100 bytes.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "dm")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "d.sock")
}

func startServer(t *testing.T, d Daemon) *Server {
	t.Helper()
	s := NewServer(socketPath(t), d, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestGetStatusRoundTrip(t *testing.T) {
	s := startServer(t, &fakeDaemon{count: 3})

	status, err := NewClientAt(s.SocketPath()).GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning {
		t.Fatalf("expected daemon_running=true")
	}
	if status.Desktop != "shown" || status.ReminderCount != 3 || status.ZOrderPasses != 42 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.UptimeSeconds < 0 {
		t.Fatalf("negative uptime %d", status.UptimeSeconds)
	}
}

func TestReloadRoundTrip(t *testing.T) {
	d := &fakeDaemon{count: 5}
	s := startServer(t, d)

	count, err := NewClientAt(s.SocketPath()).Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 reminders, got %d", count)
	}
	if d.reloads.Load() != 1 {
		t.Fatalf("expected 1 reload, got %d", d.reloads.Load())
	}
}

func TestReloadErrorIsReported(t *testing.T) {
	s := startServer(t, &fakeDaemon{reloadErr: errors.New("disk gone")})

	_, err := NewClientAt(s.SocketPath()).Reload()
	if err == nil || !strings.Contains(err.Error(), "disk gone") {
		t.Fatalf("expected daemon error mentioning cause, got %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	s := startServer(t, &fakeDaemon{})

	_, err := NewClientAt(s.SocketPath()).sendRequest(&Request{Command: "TILE"})
	if err == nil || !strings.Contains(err.Error(), "Unknown command: TILE") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestInvalidRequest(t *testing.T) {
	s := startServer(t, &fakeDaemon{})

	conn, err := net.Dial("unix", s.SocketPath())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("not json\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(string(buf[:n]), `"status":"ERROR"`) {
		t.Fatalf("expected error response, got %s", buf[:n])
	}
}

func TestSecondServerOnLiveSocketFails(t *testing.T) {
	s := startServer(t, &fakeDaemon{})

	second := NewServer(s.SocketPath(), &fakeDaemon{}, nil)
	if err := second.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestStaleSocketIsReplaced(t *testing.T) {
	path := socketPath(t)
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewServer(path, &fakeDaemon{}, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start over stale socket: %v", err)
	}
	defer s.Stop()

	if err := NewClientAt(path).Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	err := NewClientAt(socketPath(t)).Ping()
	if err == nil || !strings.Contains(err.Error(), "is the daemon running?") {
		t.Fatalf("expected connection hint, got %v", err)
	}
}
