package fsm

import (
	"errors"
	"fmt"

	"github.com/zeusync/npcmind/internal/core/world"
)

// ErrUnknownState is raised when a transition references a missing state index.
var ErrUnknownState = errors.New("fsm: unknown state")

// Context is what states and transitions see on every tick.
type Context struct {
	World   world.Query
	Self    world.EntityID
	Actions world.ActionSink
}

func (c Context) emit(intent world.Intent) {
	if c.Actions != nil {
		c.Actions.Emit(c.Self, intent)
	}
}

// State is one behavioral mode. Enter and Exit run on transitions only,
// Act runs on every tick the state is current.
type State interface {
	Name() string
	Enter(ctx Context)
	Exit(ctx Context)
	Act(dt float64, ctx Context)
}

// Transition is a predicate evaluated fresh on every tick.
type Transition interface {
	Available(ctx Context) bool
}

// TransitionFunc adapts a function to Transition.
type TransitionFunc func(ctx Context) bool

func (f TransitionFunc) Available(ctx Context) bool { return f(ctx) }

type edge struct {
	to    int
	trans Transition
}

// Machine holds indexed states and ordered outgoing transitions per state.
// The first state added is the initial state. A Machine belongs to one agent.
type Machine struct {
	states       []State
	edges        [][]edge
	current      int
	onTransition func(from, to int)
}

func New() *Machine { return &Machine{current: -1} }

// AddState appends a state and returns its index.
func (m *Machine) AddState(s State) int {
	m.states = append(m.states, s)
	m.edges = append(m.edges, nil)
	if m.current < 0 {
		m.current = 0
	}
	return len(m.states) - 1
}

// AddTransition registers an edge. Registration order is priority order
// among the edges leaving the same state. Indices out of range panic.
func (m *Machine) AddTransition(t Transition, from, to int) {
	if from < 0 || from >= len(m.states) || to < 0 || to >= len(m.states) {
		panic(fmt.Errorf("%w: %d -> %d with %d states", ErrUnknownState, from, to, len(m.states)))
	}
	m.edges[from] = append(m.edges[from], edge{to: to, trans: t})
}

// OnTransition installs a hook called after every state switch.
func (m *Machine) OnTransition(fn func(from, to int)) { m.onTransition = fn }

// Act takes at most one transition, the first available one leaving the
// current state, then acts on whichever state is current.
func (m *Machine) Act(dt float64, ctx Context) {
	if m.current < 0 {
		return
	}
	for _, e := range m.edges[m.current] {
		if !e.trans.Available(ctx) {
			continue
		}
		from := m.current
		m.states[from].Exit(ctx)
		m.current = e.to
		m.states[e.to].Enter(ctx)
		if m.onTransition != nil {
			m.onTransition(from, e.to)
		}
		break
	}
	m.states[m.current].Act(dt, ctx)
}

// Current returns the active state index, or -1 for an empty machine.
func (m *Machine) Current() int { return m.current }

func (m *Machine) StateName() string {
	if m.current < 0 {
		return ""
	}
	return m.states[m.current].Name()
}

func (m *Machine) Len() int { return len(m.states) }

// State returns the state at index i.
func (m *Machine) State(i int) State { return m.states[i] }
