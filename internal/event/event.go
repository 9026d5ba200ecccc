package event

import "sync"

// Viewer lifecycle event names.
const (
	Loaded          = "loaded"
	ModelLoaded     = "model-loaded"
	ModelLoadFailed = "model-load-failed"
)

// Callback receives the arguments passed to Emit.
type Callback func(args ...interface{})

// SubscriberID identifies a registered callback so it can be removed later.
type SubscriberID uint64

type subscriber struct {
	id SubscriberID
	cb Callback
}

// Bus is a minimal synchronous publish/subscribe channel. Callbacks for an
// event run in registration order, on the goroutine that calls Emit.
type Bus struct {
	mu     sync.Mutex
	nextID SubscriberID
	subs   map[string][]subscriber
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscriber)}
}

// Subscribe appends cb to the subscriber list for name and returns an ID
// usable with Unsubscribe. A nil callback is ignored and returns 0.
func (b *Bus) Subscribe(name string, cb Callback) SubscriberID {
	if cb == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[name] = append(b.subs[name], subscriber{id: b.nextID, cb: cb})
	return b.nextID
}

// Unsubscribe removes a previously registered callback. It reports whether
// the subscription existed.
func (b *Bus) Unsubscribe(id SubscriberID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, list := range b.subs {
		for i, s := range list {
			if s.id == id {
				b.subs[name] = append(list[:i:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Emit invokes every subscriber registered for name, in registration order,
// passing args through. Emitting an event with no subscribers is a no-op.
func (b *Bus) Emit(name string, args ...interface{}) {
	b.mu.Lock()
	list := b.subs[name]
	// Snapshot so a callback may subscribe or unsubscribe without
	// corrupting this emission.
	snapshot := make([]subscriber, len(list))
	copy(snapshot, list)
	b.mu.Unlock()

	for _, s := range snapshot {
		s.cb(args...)
	}
}

// SubscriberCount returns the number of callbacks registered for name.
func (b *Bus) SubscriberCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[name])
}
