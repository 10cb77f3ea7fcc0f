package reflected

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/miruken-go/reflected/catalog"
	"github.com/miruken-go/reflected/internal/access"
)

type (
	// EventReplacer owns a single handler subscribed to a host event.
	// The host only ever sees one trampoline per replacer, so
	// subscribing again replaces the handler rather than stacking it.
	// All methods are safe for concurrent use.
	EventReplacer[H any] struct {
		lock      sync.Mutex
		target    *eventTarget
		handler   H
		thunk     reflect.Value
		installed bool
		displaced []reflect.Value
	}

	// eventSource is the resolved event handed to event adapters.
	eventSource struct {
		member *catalog.Member
	}

	// eventTarget is the host storage of an event's handlers.
	eventTarget struct {
		slot      reflect.Value
		multicast bool
	}
)

var (
	// hostLock serializes every mutation of host handler storage.
	hostLock sync.Mutex

	// chains maps the address of a single-cast slot to the handler
	// each installed trampoline displaced, keyed by trampoline.
	chains = make(map[uintptr]map[uintptr]reflect.Value)
)


// EventReplacer

// Subscribe makes h the active handler, replacing any other
// handler previously subscribed through r.
func (r *EventReplacer[H]) Subscribe(h H) {
	r.Replace(h)
}

// Replace atomically swaps the active handler and returns the
// previous one.
func (r *EventReplacer[H]) Replace(h H) (previous H) {
	r.lock.Lock()
	defer r.lock.Unlock()
	previous, r.handler = r.handler, h
	if !r.installed {
		r.target.install(r.thunk)
		r.installed = true
	}
	return previous
}

// Unsubscribe removes the trampoline from the host event.
// It returns false if r was not subscribed.
func (r *EventReplacer[H]) Unsubscribe() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	if !r.installed {
		return false
	}
	r.target.uninstall(r.thunk)
	var zero H
	r.handler, r.installed = zero, false
	return true
}

func (r *EventReplacer[H]) Subscribed() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.installed
}

// Displace removes every other handler of a multicast host event
// and remembers them for Restore. It returns the number removed.
func (r *EventReplacer[H]) Displace() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	removed := r.target.displace(r.thunk)
	r.displaced = append(r.displaced, removed...)
	return len(removed)
}

// Restore reinstalls the handlers removed by Displace.
func (r *EventReplacer[H]) Restore() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	count := len(r.displaced)
	r.target.restore(r.displaced)
	r.displaced = nil
	return count
}

func (r *EventReplacer[H]) dispatch(args []reflect.Value) []reflect.Value {
	r.lock.Lock()
	h := r.handler
	r.lock.Unlock()
	hv := reflect.ValueOf(&h).Elem()
	if hv.IsNil() {
		ht := hv.Type()
		results := make([]reflect.Value, ht.NumOut())
		for i := range results {
			results[i] = reflect.Zero(ht.Out(i))
		}
		return results
	}
	if hv.Type().IsVariadic() {
		return hv.CallSlice(args)
	}
	return hv.Call(args)
}

func newEventReplacer[H any](target *eventTarget) *EventReplacer[H] {
	ht := reflect.TypeFor[H]()
	r := &EventReplacer[H]{target: target, thunk: reflect.New(ht).Elem()}
	r.thunk.Set(reflect.MakeFunc(ht, r.dispatch))
	return r
}


// eventSource

func (s *eventSource) static() *eventTarget {
	return &eventTarget{slot: s.member.Var(), multicast: s.member.Multicast()}
}

func (s *eventSource) instance(recv reflect.Value) (*eventTarget, error) {
	if recv.Kind() == reflect.Interface {
		recv = recv.Elem()
	}
	if owner := reflect.PointerTo(s.member.Owner().Reflect()); recv.IsValid() && recv.Type() != owner {
		return nil, fmt.Errorf("receiver %v is not a %v", recv.Type(), owner)
	}
	slot, err := access.Field(recv, s.member.Index())
	if err != nil {
		return nil, err
	}
	return &eventTarget{slot: slot, multicast: s.member.Multicast()}, nil
}


// eventTarget

func (t *eventTarget) install(thunk reflect.Value) {
	hostLock.Lock()
	defer hostLock.Unlock()
	if t.multicast {
		t.slot.Set(reflect.Append(t.slot, thunk))
		return
	}
	var previous reflect.Value
	if !t.slot.IsNil() {
		previous = reflect.New(t.slot.Type()).Elem()
		previous.Set(t.slot)
	}
	addr := t.slot.UnsafeAddr()
	chain := chains[addr]
	if chain == nil {
		chain = make(map[uintptr]reflect.Value)
		chains[addr] = chain
	}
	chain[access.FuncIdentity(thunk)] = previous
	t.slot.Set(thunk)
}

// uninstall removes thunk from the host event. A single-cast
// trampoline covered by a later one passes the handler it
// displaced to that trampoline, so the chain stays intact.
func (t *eventTarget) uninstall(thunk reflect.Value) {
	hostLock.Lock()
	defer hostLock.Unlock()
	id := access.FuncIdentity(thunk)
	if t.multicast {
		kept, _ := t.partition(func(h reflect.Value) bool {
			return access.FuncIdentity(h) != id
		})
		t.slot.Set(kept)
		return
	}
	addr := t.slot.UnsafeAddr()
	chain := chains[addr]
	previous := chain[id]
	delete(chain, id)
	if len(chain) == 0 {
		delete(chains, addr)
	}
	if access.FuncIdentity(t.slot) == id {
		if previous.IsValid() {
			t.slot.Set(previous)
		} else {
			t.slot.Set(reflect.Zero(t.slot.Type()))
		}
		return
	}
	for above, displaced := range chain {
		if displaced.IsValid() && access.FuncIdentity(displaced) == id {
			chain[above] = previous
			return
		}
	}
}

func (t *eventTarget) displace(thunk reflect.Value) []reflect.Value {
	if !t.multicast {
		return nil
	}
	hostLock.Lock()
	defer hostLock.Unlock()
	id := access.FuncIdentity(thunk)
	kept, removed := t.partition(func(h reflect.Value) bool {
		return access.FuncIdentity(h) == id
	})
	t.slot.Set(kept)
	return sliceValues(removed)
}

func (t *eventTarget) restore(handlers []reflect.Value) {
	if !t.multicast || len(handlers) == 0 {
		return
	}
	hostLock.Lock()
	defer hostLock.Unlock()
	t.slot.Set(reflect.Append(t.slot, handlers...))
}

// partition splits the multicast handlers into those kept by
// keep and those removed, each as a new slice.
func (t *eventTarget) partition(
	keep func(reflect.Value) bool,
) (kept, removed reflect.Value) {
	kept = reflect.MakeSlice(t.slot.Type(), 0, t.slot.Len())
	removed = reflect.MakeSlice(t.slot.Type(), 0, 0)
	for i := 0; i < t.slot.Len(); i++ {
		if h := t.slot.Index(i); keep(h) {
			kept = reflect.Append(kept, h)
		} else {
			removed = reflect.Append(removed, h)
		}
	}
	return kept, removed
}

func sliceValues(s reflect.Value) []reflect.Value {
	values := make([]reflect.Value, s.Len())
	for i := range values {
		values[i] = s.Index(i)
	}
	return values
}
