package signals

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Handler Registration Tests
// =============================================================================

func TestOnReloadAndInterrupt(t *testing.T) {
	d := New()
	var reloads, interrupts int
	d.OnReload(func() { reloads++ })
	d.OnInterrupt(func() { interrupts++ })

	d.dispatch(os.Interrupt)
	assert.Equal(t, 0, reloads)
	assert.Equal(t, 1, interrupts)
}

func TestHandlersCalledInOrder(t *testing.T) {
	d := New()
	var order []int
	for i := range 3 {
		d.OnInterrupt(func() { order = append(order, i) })
	}

	d.dispatch(os.Interrupt)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestNilHandlerIgnored(t *testing.T) {
	d := New()
	assert.Equal(t, HandlerID(-1), d.OnReload(nil))
	assert.Equal(t, HandlerID(-1), d.OnInterrupt(nil))
	assert.Empty(t, d.handlers)

	assert.NotPanics(t, func() { d.dispatch(os.Interrupt) })
}

func TestRemove(t *testing.T) {
	d := New()
	called := false
	id := d.OnInterrupt(func() { called = true })
	d.Remove(id)
	d.Remove(HandlerID(999))

	d.dispatch(os.Interrupt)
	assert.False(t, called)
}

// =============================================================================
// Panic Recovery Tests
// =============================================================================

func TestHandlerPanicRecovery(t *testing.T) {
	d := New()
	calledAfterPanic := false
	d.OnInterrupt(func() { panic("test panic in interrupt handler") })
	d.OnInterrupt(func() { calledAfterPanic = true })

	assert.NotPanics(t, func() { d.dispatch(os.Interrupt) })
	assert.True(t, calledAfterPanic, "handler after panicking handler was not called")
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestConcurrentRegistration(t *testing.T) {
	d := New()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.OnReload(func() {})
		}()
		go func() {
			defer wg.Done()
			d.OnInterrupt(func() {})
		}()
	}
	wg.Wait()

	assert.Len(t, d.handlers, 100)
	ids := make(map[HandlerID]bool)
	for _, h := range d.handlers {
		assert.False(t, ids[h.id], "duplicate handler id %d", h.id)
		ids[h.id] = true
	}
}
