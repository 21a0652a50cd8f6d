// Package signals dispatches process signals to registered handlers:
// SIGHUP to reload handlers, SIGINT and SIGTERM to interrupt handlers.
//
// Signals are only captured while Run is active, so commands that never
// call Run keep the default Ctrl-C behavior.
package signals

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Handler is a function called when a signal is received.
type Handler func()

// HandlerID identifies a registration so it can be removed again.
type HandlerID int

type kind int

const (
	kindUnknown kind = iota
	kindReload
	kindInterrupt
)

type registeredHandler struct {
	id   HandlerID
	kind kind
	fn   Handler
}

// Dispatcher routes signals to handlers in registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []registeredHandler
	nextID   HandlerID
}

// New returns a dispatcher with no handlers.
func New() *Dispatcher {
	return &Dispatcher{}
}

// OnReload registers a handler called on SIGHUP. Nil handlers are ignored
// and return -1.
func (d *Dispatcher) OnReload(f Handler) HandlerID {
	return d.register(kindReload, f)
}

// OnInterrupt registers a handler called on SIGINT or SIGTERM. Nil handlers
// are ignored and return -1.
func (d *Dispatcher) OnInterrupt(f Handler) HandlerID {
	return d.register(kindInterrupt, f)
}

func (d *Dispatcher) register(k kind, f Handler) HandlerID {
	if f == nil {
		return -1
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.handlers = append(d.handlers, registeredHandler{id: id, kind: k, fn: f})
	return id
}

// Remove deregisters a handler. Unknown ids are ignored.
func (d *Dispatcher) Remove(id HandlerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, h := range d.handlers {
		if h.id == id {
			d.handlers = append(d.handlers[:i], d.handlers[i+1:]...)
			return
		}
	}
}

// Run captures signals until ctx is done and dispatches each one.
func (d *Dispatcher) Run(ctx context.Context) {
	// buffered so a signal arriving during dispatch is not dropped
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, notifySignals...)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			d.dispatch(sig)
		}
	}
}

func (d *Dispatcher) dispatch(sig os.Signal) {
	k := kindOf(sig)
	if k == kindUnknown {
		return
	}
	log.WithField("signal", sig.String()).Debug("dispatching signal")

	d.mu.RLock()
	var snapshot []registeredHandler
	for _, h := range d.handlers {
		if h.kind == k {
			snapshot = append(snapshot, h)
		}
	}
	d.mu.RUnlock()

	for _, h := range snapshot {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithError(fmt.Errorf("%v", r)).WithField("signal", sig.String()).Error("panic in signal handler")
				}
			}()
			h.fn()
		}()
	}
}
