package docker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docker/cli/cli/streams"
	"github.com/ryanmoran/dockline/internal"
)

// Resizer changes the size of a container's TTY. Client implements it.
type Resizer interface {
	ResizeContainer(ctx context.Context, id string, height, width uint) error
}

type TTY struct {
	resizer    Resizer
	out        *streams.Out
	id         string
	maxRetries int
	retryDelay time.Duration
	writer     internal.Writer
}

// NewTTY creates a TTY handler keeping the container's terminal the size of
// out. The maxRetries parameter controls how many times to retry the initial
// resize, and retryDelay is the base delay between retries.
func NewTTY(resizer Resizer, out *streams.Out, id string, maxRetries int, retryDelay time.Duration, writer internal.Writer) TTY {
	return TTY{
		resizer:    resizer,
		out:        out,
		id:         id,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		writer:     writer,
	}
}

// Monitor resizes the container's TTY now and on every SIGWINCH until ctx is
// done. If the initial resize fails it is retried with a linearly growing
// delay; running out of retries only produces a warning.
func (t TTY) Monitor(ctx context.Context) {
	if err := t.Resize(ctx); err != nil {
		go func() {
			for retry := range t.maxRetries {
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Duration(retry+1) * t.retryDelay):
					if err = t.Resize(ctx); err == nil {
						return
					}
				}
			}
			t.writer.Warningf("failed to resize tty: %v", err)
		}()
	}

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGWINCH)
	go func() {
		defer signal.Stop(sigchan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigchan:
				_ = t.Resize(ctx)
			}
		}
	}()
}

// Resize resizes the container's TTY to match the current terminal dimensions.
// Returns nil without calling the daemon if the terminal has zero size.
func (t TTY) Resize(ctx context.Context) error {
	height, width := t.out.GetTtySize()

	if height == 0 && width == 0 {
		return nil
	}

	return t.resizer.ResizeContainer(ctx, t.id, height, width)
}
