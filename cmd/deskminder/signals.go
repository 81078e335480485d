package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// watchHangup reloads reminders on SIGHUP until ctx is done.
func watchHangup(ctx context.Context, logger *slog.Logger, reload func() error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			logger.Info("received SIGHUP, reloading reminders")
			if err := reload(); err != nil {
				logger.Warn("reload failed", "error", err)
			}
		}
	}
}
