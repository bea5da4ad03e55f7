package viewport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type mockObserver struct {
	mu       sync.Mutex
	opts     Options
	fn       func(Entry)
	starts   int
	stops    int
	startErr error
	onStart  func(fn func(Entry))
}

func (m *mockObserver) Start(fn func(Entry)) error {
	m.mu.Lock()
	m.starts++
	m.fn = fn
	hook := m.onStart
	err := m.startErr
	m.mu.Unlock()
	if hook != nil {
		hook(fn)
	}
	return err
}

func (m *mockObserver) Stop() {
	m.mu.Lock()
	m.stops++
	m.mu.Unlock()
}

func (m *mockObserver) fire(e Entry) {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	fn(e)
}

func (m *mockObserver) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts, m.stops
}

type mockFactory struct {
	mu        sync.Mutex
	observers []*mockObserver
	startErr  error
	onStart   func(fn func(Entry))
}

func (f *mockFactory) New(o Options) Observer {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &mockObserver{opts: o, startErr: f.startErr, onStart: f.onStart}
	f.observers = append(f.observers, m)
	return m
}

func (f *mockFactory) last() *mockObserver {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.observers[len(f.observers)-1]
}

func text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func render(t *testing.T, g *Gate) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, g.Render(context.Background(), &buf))
	return buf.String()
}

func TestGateDefaults(t *testing.T) {
	g := New(text("child"), nil)
	o := g.Options()
	assert.Equal(t, "50px", o.RootMargin)
	assert.Equal(t, 0.1, o.Threshold)
	assert.Equal(t, Pending, g.State())

	g = New(text("child"), nil, WithThreshold(7), WithRootMargin("  "))
	assert.Equal(t, 1.0, g.Options().Threshold)
	assert.Equal(t, "50px", g.Options().RootMargin)
}

func TestGateNeverIntersectingRendersFallbackOnly(t *testing.T) {
	f := &mockFactory{}
	g := New(text("child"), f.New, WithFallback(text("loading")))
	require.NoError(t, g.Mount())

	assert.Equal(t, "loading", render(t, g))
	f.last().fire(Entry{Intersecting: false})
	assert.Equal(t, "loading", render(t, g))
	assert.Equal(t, Pending, g.State())

	g.Unmount()
	starts, stops := f.last().counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, stops)
}

func TestGateDefaultPlaceholder(t *testing.T) {
	g := New(text("child"), nil)
	assert.Contains(t, render(t, g), "animate-pulse")
}

func TestGateTriggersOnce(t *testing.T) {
	f := &mockFactory{}
	g := New(text("child"), f.New)
	require.NoError(t, g.Mount())
	obs := f.last()
	assert.True(t, g.Observing())

	obs.fire(Entry{Intersecting: true, Ratio: 0.5})
	assert.Equal(t, Triggered, g.State())
	assert.False(t, g.Observing(), "observer released on trigger")
	_, stops := obs.counts()
	assert.Equal(t, 1, stops)

	obs.fire(Entry{Intersecting: true})
	obs.fire(Entry{Intersecting: false})
	assert.Equal(t, Triggered, g.State())
	assert.Equal(t, "child", render(t, g))

	g.Unmount()
	g.Unmount()
	_, stops = obs.counts()
	assert.Equal(t, 1, stops, "handle released exactly once")
	assert.Len(t, f.observers, 1)
}

func TestGateUnmountPendingIsIdempotent(t *testing.T) {
	f := &mockFactory{}
	g := New(text("child"), f.New)
	require.NoError(t, g.Mount())
	obs := f.last()

	g.Unmount()
	g.Unmount()
	assert.True(t, g.Detached())
	_, stops := obs.counts()
	assert.Equal(t, 1, stops)

	// Late delivery after unmount is ignored.
	obs.fire(Entry{Intersecting: true})
	assert.Equal(t, Pending, g.State())

	require.NoError(t, g.Mount())
	assert.Len(t, f.observers, 1, "no remount after detach")
}

func TestGateSynchronousSignalDuringStart(t *testing.T) {
	f := &mockFactory{onStart: func(fn func(Entry)) { fn(Entry{Intersecting: true, Ratio: 1}) }}
	g := New(text("child"), f.New)
	require.NoError(t, g.Mount())

	assert.Equal(t, Triggered, g.State())
	g.Unmount()
	_, stops := f.last().counts()
	assert.Equal(t, 1, stops)
}

func TestGateSetOptionsResubscribesWhilePending(t *testing.T) {
	f := &mockFactory{}
	g := New(text("child"), f.New)
	require.NoError(t, g.Mount())
	first := f.last()

	require.NoError(t, g.SetOptions(WithRootMargin("100px"), WithThreshold(0.5)))
	require.Len(t, f.observers, 2)
	second := f.last()
	assert.Equal(t, "100px", second.opts.RootMargin)
	assert.Equal(t, 0.5, second.opts.Threshold)
	_, stops := first.counts()
	assert.Equal(t, 1, stops)

	// The superseded observer no longer drives the gate.
	first.fire(Entry{Intersecting: true})
	assert.Equal(t, Pending, g.State())

	// Same values: no new subscription.
	require.NoError(t, g.SetOptions(WithRootMargin("100px")))
	assert.Len(t, f.observers, 2)

	second.fire(Entry{Intersecting: true})
	assert.Equal(t, Triggered, g.State())

	require.NoError(t, g.SetOptions(WithThreshold(0.9)))
	assert.Len(t, f.observers, 2, "no resubscribe once triggered")
	assert.Equal(t, 0.5, g.Options().Threshold)
	g.Unmount()
}

func TestGateSetOptionsBeforeMount(t *testing.T) {
	f := &mockFactory{}
	g := New(text("child"), f.New)
	require.NoError(t, g.SetOptions(WithRootMargin("10px")))
	assert.Empty(t, f.observers)
	require.NoError(t, g.Mount())
	assert.Equal(t, "10px", f.last().opts.RootMargin)
	g.Unmount()
}

func TestGateStartError(t *testing.T) {
	boom := errors.New("boom")
	f := &mockFactory{startErr: boom}
	g := New(text("child"), f.New)
	err := g.Mount()
	require.ErrorIs(t, err, boom)
	assert.False(t, g.Observing())
	g.Unmount()
	_, stops := f.last().counts()
	assert.Equal(t, 1, stops)
}

func TestGateMountWithoutObserver(t *testing.T) {
	g := New(text("child"), nil)
	assert.ErrorIs(t, g.Mount(), ErrNoObserver)
}

func TestGateRenderWithSource(t *testing.T) {
	g := New(text("child"), nil, WithSource("/fragments/related/a&b/"), WithFallback(text("wait")))
	out := render(t, g)
	assert.Contains(t, out, `data-viewport-gate`)
	assert.Contains(t, out, `data-src="/fragments/related/a&amp;b/"`)
	assert.Contains(t, out, `data-root-margin="50px"`)
	assert.Contains(t, out, `data-threshold="0.1"`)
	assert.Contains(t, out, "wait")
	assert.NotContains(t, out, "child")
}

func TestChanObserverDrivesGate(t *testing.T) {
	defer goleak.VerifyNone(t)

	ch := make(chan Entry)
	g := New(text("child"), func(o Options) Observer { return NewChanObserver(ch, o) }, WithThreshold(0.5))
	require.NoError(t, g.Mount())

	ch <- Entry{Intersecting: true, Ratio: 0.2} // below threshold
	ch <- Entry{Intersecting: false}
	assert.Equal(t, Pending, g.State())

	ch <- Entry{Intersecting: true, Ratio: 0.6}
	require.Eventually(t, func() bool { return g.State() == Triggered }, time.Second, 5*time.Millisecond)
	assert.False(t, g.Observing())
	g.Unmount()
}

func TestChanObserverStopEndsGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	ch := make(chan Entry)
	o := NewChanObserver(ch, DefaultOptions())
	require.NoError(t, o.Start(func(Entry) {}))
	assert.Error(t, o.Start(func(Entry) {}))
	o.Stop()
	o.Stop()
}
