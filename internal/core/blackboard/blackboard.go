package blackboard

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// ErrForeignHandle is raised when a handle is used against a blackboard that
// did not mint it, or against a slot of a different type.
var ErrForeignHandle = errors.New("blackboard: foreign handle")

var nextOwner atomic.Uint64

// Blackboard is a per-agent store of named, typed slots.
//
// Names are resolved to handles once, at tree construction time, via Register.
// After that every read and write goes straight to a slot index. A blackboard
// belongs to one agent and is not safe for concurrent use.
type Blackboard struct {
	owner uint64
	index map[uint64][]int
	slots []slot
}

type slot struct {
	name  string
	typ   reflect.Type
	value any
	set   bool
}

// Handle addresses one slot of one blackboard. The zero Handle is invalid.
type Handle[T any] struct {
	owner uint64
	slot  int
}

// Valid reports whether the handle was minted by Register.
func (h Handle[T]) Valid() bool { return h.owner != 0 }

func New() *Blackboard {
	return &Blackboard{
		owner: nextOwner.Add(1),
		index: make(map[uint64][]int),
	}
}

// Register returns the handle for (name, T), creating the slot on first use.
// Registering the same name with another type creates an independent slot.
func Register[T any](bb *Blackboard, name string) Handle[T] {
	typ := reflect.TypeFor[T]()
	key := xxhash.Sum64String(name)
	for _, idx := range bb.index[key] {
		s := &bb.slots[idx]
		if s.name == name && s.typ == typ {
			return Handle[T]{owner: bb.owner, slot: idx}
		}
	}
	idx := len(bb.slots)
	bb.slots = append(bb.slots, slot{name: name, typ: typ})
	bb.index[key] = append(bb.index[key], idx)
	return Handle[T]{owner: bb.owner, slot: idx}
}

// Get reads a slot. A slot that was never written reads as the zero value of T.
func Get[T any](bb *Blackboard, h Handle[T]) T {
	v, _ := Lookup(bb, h)
	return v
}

// Lookup reads a slot and reports whether it has ever been written.
func Lookup[T any](bb *Blackboard, h Handle[T]) (T, bool) {
	s := bb.mustSlot(h.owner, h.slot)
	var zero T
	if !s.set {
		return zero, false
	}
	v, ok := s.value.(T)
	if !ok {
		panic(fmt.Errorf("%w: slot %q holds %T", ErrForeignHandle, s.name, s.value))
	}
	return v, true
}

func Set[T any](bb *Blackboard, h Handle[T], v T) {
	s := bb.mustSlot(h.owner, h.slot)
	s.value = v
	s.set = true
}

// Put registers name and writes v in one step. Sensors use it to publish facts.
func Put[T any](bb *Blackboard, name string, v T) Handle[T] {
	h := Register[T](bb, name)
	Set(bb, h, v)
	return h
}

// Len returns the number of registered slots.
func (bb *Blackboard) Len() int { return len(bb.slots) }

// Names returns the distinct registered names, sorted.
func (bb *Blackboard) Names() []string {
	seen := make(map[string]struct{}, len(bb.slots))
	names := make([]string, 0, len(bb.slots))
	for _, s := range bb.slots {
		if _, ok := seen[s.name]; ok {
			continue
		}
		seen[s.name] = struct{}{}
		names = append(names, s.name)
	}
	sort.Strings(names)
	return names
}

func (bb *Blackboard) mustSlot(owner uint64, idx int) *slot {
	if owner != bb.owner || idx < 0 || idx >= len(bb.slots) {
		panic(fmt.Errorf("%w: owner %d slot %d", ErrForeignHandle, owner, idx))
	}
	return &bb.slots[idx]
}
