// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package debounce

import "sync"

// Field is an in-memory Source, the terminal stand-in for a text input.
// It is safe for concurrent use.
type Field struct {
	mu        sync.Mutex
	value     string
	listeners []listener
	nextID    uint64
}

type listener struct {
	id uint64
	fn func()
}

// NewField returns a Field holding initial.
func NewField(initial string) *Field {
	return &Field{value: initial}
}

// Value returns the current value.
func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// SetValue replaces the value without an input event.
func (f *Field) SetValue(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

// Input replaces the value and dispatches an input event, as a keystroke
// would. Listeners run on the calling goroutine, outside the lock.
func (f *Field) Input(v string) {
	f.mu.Lock()
	f.value = v
	fns := make([]func(), len(f.listeners))
	for i, l := range f.listeners {
		fns[i] = l.fn
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// OnInput registers fn for input events.
func (f *Field) OnInput(fn func()) func() {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.listeners = append(f.listeners, listener{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, l := range f.listeners {
				if l.id == id {
					f.listeners = append(f.listeners[:i:i], f.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Listeners returns the number of registered listeners.
func (f *Field) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}
