// Package notify provides Notification Surface implementations for the cart
// controller: a structured-log sink, a terminal printer and a recorder.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/hwcart/internal/cart"
)

// Log writes notifications to a slog.Logger, at a level matching the kind.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(n cart.Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), level(n.Kind), n.Title,
		"text", n.Text,
		"kind", string(n.Kind),
		"toast", n.Toast,
	)
}

func level(k cart.Kind) slog.Level {
	switch k {
	case cart.KindError:
		return slog.LevelError
	case cart.KindWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Printer writes one line per notification, e.g. "[warning] Nothing selected: ...".
type Printer struct {
	mu sync.Mutex
	W  io.Writer
}

func (p *Printer) Notify(n cart.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n.Text == "" {
		fmt.Fprintf(p.W, "[%s] %s\n", n.Kind, n.Title)
		return
	}
	fmt.Fprintf(p.W, "[%s] %s: %s\n", n.Kind, n.Title, n.Text)
}

// Recorder keeps every notification in order. Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	seen []cart.Notification
}

func (r *Recorder) Notify(n cart.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []cart.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cart.Notification(nil), r.seen...)
}

// Kinds returns the kind of every recorded notification, in order.
func (r *Recorder) Kinds() []cart.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]cart.Kind, len(r.seen))
	for i, n := range r.seen {
		kinds[i] = n.Kind
	}
	return kinds
}

// Len returns the number of recorded notifications.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = nil
}

// Multi fans a notification out to several notifiers.
type Multi []cart.Notifier

func (m Multi) Notify(n cart.Notification) {
	for _, target := range m {
		target.Notify(n)
	}
}
