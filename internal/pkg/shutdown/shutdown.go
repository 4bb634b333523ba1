// Package shutdown ties process signals to a context.
package shutdown

import (
	"context"
	"os/signal"
	"syscall"
)

// NotifyContext returns a context cancelled by the first SIGINT or SIGTERM.
// Default signal handling is restored once the context is done, so a second
// signal terminates a process stuck in cleanup.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go releaseOnDone(ctx, stop)
	return ctx, stop
}

func releaseOnDone(ctx context.Context, stop context.CancelFunc) {
	<-ctx.Done()
	stop()
}
