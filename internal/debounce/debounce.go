// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package debounce delays reacting to input until it goes quiet. Each
// attached source has at most one pending timer; every input event restarts
// it, and when it fires the callback receives the source's value at that
// moment rather than the value seen when the event arrived.
package debounce

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when Options.Delay is zero.
const DefaultDelay = 300 * time.Millisecond

// Source is something that produces input events and holds a current value.
// Sources key the debouncer's bindings, so implementations must be
// comparable; pointers are the usual choice. Attach panics on a source whose
// dynamic type is not comparable, such as a func, map or slice type.
type Source interface {
	// Value returns the authoritative current value.
	Value() string

	// OnInput registers fn to run on every input event and returns a
	// function that removes it.
	OnInput(fn func()) (unsubscribe func())
}

// Options configures one attachment.
type Options struct {
	Delay time.Duration

	// OnFire runs on the timer goroutine with the source's value at fire
	// time.
	OnFire func(value string)
}

type binding struct {
	src         Source
	opts        Options
	unsubscribe func()

	timer    *time.Timer
	gen      uint64
	detached bool
}

// Debouncer tracks attached sources. The zero value is ready to use and it
// is safe for concurrent use.
type Debouncer struct {
	mu       sync.Mutex
	bindings map[Source]*binding
}

// Attach starts debouncing src. Attaching a source that is already attached
// replaces its previous binding and drops any pending fire. It panics if src
// is nil or not comparable.
func (d *Debouncer) Attach(src Source, opts Options) {
	if !isComparable(src) {
		panic(fmt.Sprintf("debounce: source of type %T is not comparable", src))
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	d.Detach(src)

	b := &binding{src: src, opts: opts}
	d.mu.Lock()
	if d.bindings == nil {
		d.bindings = make(map[Source]*binding)
	}
	d.bindings[src] = b
	d.mu.Unlock()

	unsubscribe := src.OnInput(func() { d.input(b) })

	d.mu.Lock()
	if b.detached {
		d.mu.Unlock()
		unsubscribe()
		return
	}
	b.unsubscribe = unsubscribe
	d.mu.Unlock()
}

// Detach stops debouncing src and cancels its pending fire, if any. It is a
// no-op for sources that are not attached.
func (d *Debouncer) Detach(src Source) {
	if !isComparable(src) {
		return
	}
	d.mu.Lock()
	b, ok := d.bindings[src]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.bindings, src)
	b.detached = true
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	unsubscribe := b.unsubscribe
	d.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Close detaches every source.
func (d *Debouncer) Close() {
	d.mu.Lock()
	srcs := make([]Source, 0, len(d.bindings))
	for src := range d.bindings {
		srcs = append(srcs, src)
	}
	d.mu.Unlock()

	for _, src := range srcs {
		d.Detach(src)
	}
}

// Pending reports whether src has a fire scheduled.
func (d *Debouncer) Pending(src Source) bool {
	if !isComparable(src) {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.bindings[src]
	return ok && b.timer != nil
}

// isComparable reports whether src can be used as a map key without
// panicking.
func isComparable(src Source) bool {
	t := reflect.TypeOf(src)
	return t != nil && t.Comparable()
}

func (d *Debouncer) input(b *binding) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b.detached {
		return
	}
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.opts.Delay, func() { d.fire(b, gen) })
}

// fire runs OnFire unless a newer event or Detach came in after the timer
// was scheduled. Stop does not prevent a timer that already expired from
// running, so the generation check is what guarantees a single fire.
func (d *Debouncer) fire(b *binding, gen uint64) {
	d.mu.Lock()
	if b.detached || b.gen != gen {
		d.mu.Unlock()
		return
	}
	b.timer = nil
	d.mu.Unlock()

	if b.opts.OnFire != nil {
		b.opts.OnFire(b.src.Value())
	}
}
