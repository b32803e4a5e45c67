// Package dispatcher routes host commands to handlers.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrClosed is returned for buffered commands after Close.
var ErrClosed = errors.New("dispatcher closed")

// Event is one call from the game host.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger is what the dispatcher logs through.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*options)

type options struct {
	bufferSize int
	logged     bool
}

// Buffered runs the handler on its own goroutine behind a queue of the given size.
// Dispatch returns "queued" immediately, or an error when the queue is full; the
// host thread never waits on it.
func Buffered(size int) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

// Logged logs each call at debug and failures at error.
func Logged() Option {
	return func(o *options) {
		o.logged = true
	}
}

// Dispatcher routes events to registered handlers. A panicking handler is
// recovered and reported as an error, since a panic would take the host down with it.
type Dispatcher struct {
	logger Logger
	ins    instruments

	hmu      sync.RWMutex
	handlers map[string]HandlerFunc

	// bmu guards the queues and closed; senders hold it for reading
	bmu     sync.RWMutex
	buffers map[string]chan Event
	queues  []chan Event
	closed  bool
	workers sync.WaitGroup
}

// New creates a Dispatcher. Metrics go to the global OTel meter, a no-op until one is installed.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]chan Event),
	}

	m := meter()
	ins, err := newInstruments(m)
	if err != nil {
		return nil, err
	}
	d.ins = ins

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.bmu.RLock()
			defer d.bmu.RUnlock()
			for cmd, buf := range d.buffers {
				o.ObserveInt64(d.ins.queueSize, int64(len(buf)), commandAttr(cmd))
			}
			return nil
		},
		d.ins.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	return d, nil
}

// Register adds or replaces the handler for command.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	handler := d.withRecover(command, h)
	if o.bufferSize > 0 {
		handler = d.withBuffer(command, o.bufferSize, handler)
	}
	if o.logged {
		handler = d.withLogging(command, handler)
	}

	d.hmu.Lock()
	d.handlers[command] = handler
	d.hmu.Unlock()
}

// Dispatch routes an event to its handler.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	d.hmu.RLock()
	h, ok := d.handlers[e.Command]
	d.hmu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	return h(e)
}

// Commands returns the registered command names, sorted.
func (d *Dispatcher) Commands() []string {
	d.hmu.RLock()
	defer d.hmu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for cmd := range d.handlers {
		out = append(out, cmd)
	}
	sort.Strings(out)
	return out
}

// HasHandler reports whether command is registered.
func (d *Dispatcher) HasHandler(command string) bool {
	d.hmu.RLock()
	defer d.hmu.RUnlock()
	_, ok := d.handlers[command]
	return ok
}

// Close stops accepting buffered events and waits for queued ones to finish.
// Synchronous handlers keep working. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.bmu.Lock()
	if d.closed {
		d.bmu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.bmu.Unlock()

	d.workers.Wait()
}

func (d *Dispatcher) withRecover(command string, h HandlerFunc) HandlerFunc {
	attr := commandAttr(command)
	return func(e Event) (result any, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				d.ins.panics.Add(context.Background(), 1, attr)
				d.logger.Error("handler panicked", "command", command, "panic", r, "stack", string(debug.Stack()))
				result, err = nil, fmt.Errorf("%s: panic: %v", command, r)
			}
			d.ins.duration.Record(context.Background(), float64(time.Since(start).Microseconds())/1000, attr)
			d.ins.processed.Add(context.Background(), 1, attr)
		}()
		return h(e)
	}
}

func (d *Dispatcher) withBuffer(command string, size int, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)
	attr := commandAttr(command)

	d.bmu.Lock()
	d.buffers[command] = buffer
	if d.closed {
		close(buffer)
	} else {
		d.queues = append(d.queues, buffer)
	}
	d.bmu.Unlock()

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for e := range buffer {
			if _, err := h(e); err != nil {
				d.logger.Error("buffered event failed", "command", command, "error", err)
			}
		}
	}()

	return func(e Event) (any, error) {
		d.bmu.RLock()
		defer d.bmu.RUnlock()
		if d.closed {
			d.ins.dropped.Add(context.Background(), 1, attr)
			return nil, fmt.Errorf("%s: %w", command, ErrClosed)
		}

		select {
		case buffer <- e:
			return "queued", nil
		default:
			d.ins.dropped.Add(context.Background(), 1, attr)
			d.logger.Warn("dropping event, queue full", "command", command)
			return nil, fmt.Errorf("queue full: %s", command)
		}
	}
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))

		result, err := h(e)
		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
			return result, err
		}
		d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		return result, nil
	}
}
