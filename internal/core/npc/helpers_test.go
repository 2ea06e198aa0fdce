package npc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/npcmind/internal/arena"
	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/rng"
)

// stub returns scripted results and counts its calls.
type stub struct {
	named
	status  Status
	react   Status
	updates int
	reacts  int
}

func newStub(name string, st Status) *stub {
	return &stub{named: named{name: name}, status: st, react: Fail}
}

func (s *stub) Update(*Context) Status { s.updates++; return s.status }

func (s *stub) React(Event, *Context) Status { s.reacts++; return s.react }

func requireViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a contract violation")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.ErrorIs(t, err, ErrContractViolation)
	}()
	fn()
}

// agentEnv is one agent in an arena with its binding and tick context.
type agentEnv struct {
	world   *arena.World
	id      world.EntityID
	bind    Binding
	ctx     *Context
	intents world.IntentSet
	events  *ReactionList
}

func newAgentEnv(w *arena.World, id world.EntityID, rnd rng.Source) *agentEnv {
	bb := blackboard.New()
	intents := world.IntentSet{}
	events := &ReactionList{}
	return &agentEnv{
		world:   w,
		id:      id,
		bind:    Binding{World: w, Self: id, Blackboard: bb, Rand: rnd},
		ctx:     &Context{World: w, Self: id, Blackboard: bb, Actions: intents, Reactions: events},
		intents: intents,
		events:  events,
	}
}

func (e *agentEnv) action() world.Action { return e.intents[e.id].Action }

func (e *agentEnv) entity(name string) world.EntityID {
	return blackboard.Get(e.ctx.Blackboard, blackboard.Register[world.EntityID](e.ctx.Blackboard, name))
}

func (e *agentEnv) setEntity(name string, id world.EntityID) {
	blackboard.Put(e.ctx.Blackboard, name, id)
}

func (e *agentEnv) setFloat(name string, v float64) {
	blackboard.Put(e.ctx.Blackboard, name, v)
}
