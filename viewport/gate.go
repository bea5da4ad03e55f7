// Package viewport defers rendering of expensive content until it first
// scrolls into view, then keeps it rendered for the rest of the gate's life.
package viewport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/a-h/templ"
)

// State is where a Gate is in its lifecycle.
type State int

const (
	// Pending gates render their fallback and wait for an intersection.
	Pending State = iota
	// Triggered gates render their child permanently.
	Triggered
)

func (s State) String() string {
	if s == Triggered {
		return "triggered"
	}
	return "pending"
}

// ErrNoObserver is returned by Mount when the gate was built without an
// ObserverFunc.
var ErrNoObserver = errors.New("viewport: no observer")

// Gate wraps a child component and swaps its fallback for the child after
// the first intersecting Entry. Gate is itself a templ.Component.
//
// Lifecycle calls (Mount, Unmount, SetOptions) are serialized. Signals may
// arrive from any goroutine, including after Unmount; stale ones are dropped.
type Gate struct {
	opMu sync.Mutex

	mu          sync.Mutex
	child       templ.Component
	newObserver ObserverFunc
	opts        Options
	state       State
	obs         Observer
	gen         uint64
	mounted     bool
	detached    bool
}

// New returns a pending gate around child. newObserver may be nil for gates
// that are only rendered server-side and observed by the client script.
func New(child templ.Component, newObserver ObserverFunc, opts ...Option) *Gate {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.normalize()
	return &Gate{child: child, newObserver: newObserver, opts: o}
}

// State returns the current lifecycle state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Observing reports whether the gate still holds an observer.
func (g *Gate) Observing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.obs != nil
}

// Detached reports whether the gate has been unmounted.
func (g *Gate) Detached() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.detached
}

// Options returns the options in effect.
func (g *Gate) Options() Options {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opts
}

// Mount starts observing. Mounting twice, or after Unmount, does nothing.
func (g *Gate) Mount() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	g.mu.Lock()
	if g.mounted || g.detached {
		g.mu.Unlock()
		return nil
	}
	if g.newObserver == nil {
		g.mu.Unlock()
		return ErrNoObserver
	}
	g.mounted = true
	g.mu.Unlock()
	return g.subscribe()
}

// Unmount releases the observer if one is still held and detaches the gate.
// It is safe in any state and safe to call more than once.
func (g *Gate) Unmount() {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	g.mu.Lock()
	g.detached = true
	g.mounted = false
	g.gen++
	obs := g.obs
	g.obs = nil
	g.mu.Unlock()

	if obs != nil {
		obs.Stop()
	}
}

// SetOptions changes the gate's options. While pending and mounted, a change
// of root margin or threshold replaces the observer. Once triggered the gate
// ignores option changes.
func (g *Gate) SetOptions(opts ...Option) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	g.mu.Lock()
	if g.state != Pending || g.detached {
		g.mu.Unlock()
		return nil
	}
	next := g.opts
	for _, opt := range opts {
		opt(&next)
	}
	next.normalize()
	changed := next.RootMargin != g.opts.RootMargin || next.Threshold != g.opts.Threshold
	g.opts = next
	if !changed || !g.mounted {
		g.mu.Unlock()
		return nil
	}
	old := g.obs
	g.obs = nil
	g.gen++
	g.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	return g.subscribe()
}

// subscribe creates and starts an observer for the current options.
// Callers hold opMu.
func (g *Gate) subscribe() error {
	g.mu.Lock()
	if !g.mounted || g.detached || g.state != Pending {
		g.mu.Unlock()
		return nil
	}
	g.gen++
	gen := g.gen
	obs := g.newObserver(g.opts)
	g.obs = obs
	g.mu.Unlock()

	// Start may deliver a signal synchronously; signal only takes mu.
	if err := obs.Start(func(e Entry) { g.signal(gen, e) }); err != nil {
		g.mu.Lock()
		owned := g.obs == obs
		if owned {
			g.obs = nil
		}
		g.mu.Unlock()
		if owned {
			obs.Stop()
		}
		return fmt.Errorf("viewport: start observer: %w", err)
	}
	return nil
}

// signal handles one intersection Entry from the observer of generation gen.
func (g *Gate) signal(gen uint64, e Entry) {
	g.mu.Lock()
	if g.detached || gen != g.gen || g.state != Pending || !e.Intersecting {
		g.mu.Unlock()
		return
	}
	g.state = Triggered
	obs := g.obs
	g.obs = nil
	g.mu.Unlock()

	if obs != nil {
		obs.Stop()
	}
}

// Render writes the child once triggered and the fallback before that.
func (g *Gate) Render(ctx context.Context, w io.Writer) error {
	g.mu.Lock()
	state, child, opts := g.state, g.child, g.opts
	g.mu.Unlock()

	if state == Triggered {
		if child == nil {
			return nil
		}
		return child.Render(ctx, w)
	}

	fallback := opts.Fallback
	if fallback == nil {
		fallback = Placeholder()
	}
	if opts.Source == "" {
		return fallback.Render(ctx, w)
	}
	if _, err := io.WriteString(w, `<div data-viewport-gate data-src="`+templ.EscapeString(opts.Source)+
		`" data-root-margin="`+templ.EscapeString(opts.RootMargin)+
		`" data-threshold="`+strconv.FormatFloat(opts.Threshold, 'f', -1, 64)+`">`); err != nil {
		return err
	}
	if err := fallback.Render(ctx, w); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</div>`)
	return err
}

// Placeholder is the fixed-size pulsing block shown when no fallback is set.
func Placeholder() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="viewport-placeholder animate-pulse" style="width:100%;height:200px;border-radius:8px;background:#e5e7eb" aria-hidden="true"></div>`)
		return err
	})
}
