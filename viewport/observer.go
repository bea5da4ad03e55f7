package viewport

import (
	"errors"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

// Entry is one intersection signal for an observed element.
type Entry struct {
	Intersecting bool
	// Ratio is the visible fraction of the element, 0..1.
	Ratio float64
}

// Observer watches one element for viewport intersection.
// Stop must be idempotent and may be called from inside the callback.
type Observer interface {
	Start(fn func(Entry)) error
	Stop()
}

// ObserverFunc builds an Observer for a set of options.
type ObserverFunc func(Options) Observer

// Options tune when a gate triggers and what it shows while pending.
type Options struct {
	// RootMargin grows the detection region beyond the viewport, CSS syntax.
	RootMargin string
	// Threshold is the visible fraction required to trigger, 0..1.
	Threshold float64
	// Fallback renders while pending. Nil means Placeholder.
	Fallback templ.Component
	// Source is the URL the client script loads the child from. Empty
	// means the fallback is rendered bare.
	Source string
}

const (
	DefaultRootMargin = "50px"
	DefaultThreshold  = 0.1
)

// DefaultOptions returns a 50px margin and a 10% threshold.
func DefaultOptions() Options {
	return Options{RootMargin: DefaultRootMargin, Threshold: DefaultThreshold}
}

func (o *Options) normalize() {
	o.RootMargin = strings.TrimSpace(o.RootMargin)
	if o.RootMargin == "" {
		o.RootMargin = DefaultRootMargin
	}
	switch {
	case o.Threshold < 0:
		o.Threshold = 0
	case o.Threshold > 1:
		o.Threshold = 1
	}
}

// Option configures a Gate.
type Option func(*Options)

// WithRootMargin sets the detection margin, e.g. "100px".
func WithRootMargin(m string) Option {
	return func(o *Options) { o.RootMargin = m }
}

// WithThreshold sets the visible fraction needed to trigger.
func WithThreshold(t float64) Option {
	return func(o *Options) { o.Threshold = t }
}

// WithFallback sets the component shown while pending.
func WithFallback(c templ.Component) Option {
	return func(o *Options) { o.Fallback = c }
}

// WithSource sets the fragment URL for client-side loading.
func WithSource(url string) Option {
	return func(o *Options) { o.Source = url }
}

var errObserverStarted = errors.New("viewport: observer already started")

// ChanObserver delivers entries read from a channel, dropping intersecting
// entries below its threshold.
type ChanObserver struct {
	in        <-chan Entry
	threshold float64

	mu      sync.Mutex
	started bool
	done    chan struct{}
	once    sync.Once
}

// NewChanObserver returns an observer reading in with opts' threshold.
func NewChanObserver(in <-chan Entry, opts Options) *ChanObserver {
	return &ChanObserver{in: in, threshold: opts.Threshold, done: make(chan struct{})}
}

// Start launches the delivery goroutine.
func (o *ChanObserver) Start(fn func(Entry)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return errObserverStarted
	}
	o.started = true
	go o.loop(fn)
	return nil
}

func (o *ChanObserver) loop(fn func(Entry)) {
	for {
		select {
		case <-o.done:
			return
		case e, ok := <-o.in:
			if !ok {
				return
			}
			if e.Intersecting && e.Ratio < o.threshold {
				continue
			}
			select {
			case <-o.done:
				return
			default:
			}
			fn(e)
		}
	}
}

// Stop ends delivery. Safe to call repeatedly and from the callback.
func (o *ChanObserver) Stop() {
	o.once.Do(func() { close(o.done) })
}
