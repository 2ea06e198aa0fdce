package npc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/npcmind/internal/arena"
	"github.com/zeusync/npcmind/internal/core/world"
)

func TestNotifyEnemyNear_QueuesForNearbyTeammates(t *testing.T) {
	w := arena.New()
	self := w.SpawnAgent(arena.AgentSpec{Team: 1})
	near := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 2}, Team: 1})
	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 5}, Team: 1})
	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{Y: 1}, Team: 3})
	enemy := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 3, Y: 3}, Team: 2})

	env := newAgentEnv(w, self, nil)
	env.setEntity("enemy", enemy)
	node := NewNotifyEnemyNear(env.bind, 5, "enemy", "reported")

	assert.Equal(t, Success, node.Update(env.ctx))
	require.Len(t, *env.events, 1, "radius is exclusive and other teams are skipped")
	assert.Equal(t, Reaction{
		Source:      self,
		Target:      near,
		Event:       EnemyIsNear,
		PayloadName: "reported",
		Payload:     enemy,
	}, (*env.events)[0])
}

func TestNotifyEnemyNear_DeadEnemyFails(t *testing.T) {
	w := arena.New()
	self := w.SpawnAgent(arena.AgentSpec{Team: 1})
	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 1}, Team: 1})
	env := newAgentEnv(w, self, nil)
	env.setEntity("enemy", world.EntityID(77))

	assert.Equal(t, Fail, NewNotifyEnemyNear(env.bind, 5, "enemy", "reported").Update(env.ctx))
	assert.Empty(t, *env.events)
}

func TestNotifyEnemyNear_SucceedsWithoutListeners(t *testing.T) {
	w := arena.New()
	self := w.SpawnAgent(arena.AgentSpec{Team: 1})
	enemy := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 1}, Team: 2})
	env := newAgentEnv(w, self, nil)
	env.setEntity("enemy", enemy)

	assert.Equal(t, Success, NewNotifyEnemyNear(env.bind, 5, "enemy", "reported").Update(env.ctx))
	assert.Empty(t, *env.events)
}

func TestReactSelectTarget(t *testing.T) {
	w := arena.New()
	self := w.SpawnAgent(arena.AgentSpec{})
	env := newAgentEnv(w, self, nil)
	node := NewReactSelectTarget(env.bind, EnemyIsNear, "reported", "target")

	assert.Equal(t, Success, node.Update(env.ctx))
	assert.Equal(t, Fail, node.React(Event(99), env.ctx))

	env.setEntity("reported", 42)
	assert.Equal(t, Success, node.React(EnemyIsNear, env.ctx))
	assert.Equal(t, world.EntityID(42), env.entity("target"))
}

// A broadcast reaches a teammate whose tree listens for the event and
// redirects its target.
func TestScenario_BroadcastRetargetsAlly(t *testing.T) {
	w := arena.New()
	scout := w.SpawnAgent(arena.AgentSpec{Team: 1})
	ally := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 2, Y: 2}, Team: 1})
	enemy := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: -3}, Team: 2})

	scoutEnv := newAgentEnv(w, scout, nil)
	scoutTree := NewTree(NewSequence(
		NewFindEnemy(scoutEnv.bind, 4, "enemy"),
		NewNotifyEnemyNear(scoutEnv.bind, 5, "enemy", "reported"),
	))

	allyEnv := newAgentEnv(w, ally, nil)
	listener := NewReactSelectTarget(allyEnv.bind, EnemyIsNear, "reported", "target")
	allyTree := NewTree(NewSelector(
		NewSequence(listener, NewMoveToEntity(allyEnv.bind, "target")),
		NewPatrol(allyEnv.bind, 2, "anchor"),
	))

	require.Equal(t, Success, scoutTree.Update(scoutEnv.ctx))
	require.Len(t, *scoutEnv.events, 1)

	r := (*scoutEnv.events)[0]
	assert.Equal(t, ally, r.Target)
	assert.Equal(t, Success, allyTree.Receive(r, allyEnv.ctx))
	assert.Equal(t, enemy, allyEnv.entity("target"))

	assert.Equal(t, Running, allyTree.Update(allyEnv.ctx))
	assert.Equal(t, world.MoveLeft, allyEnv.action())
}

func TestPackHunter_ChasesReportedEnemy(t *testing.T) {
	w := arena.New()
	a := w.SpawnAgent(arena.AgentSpec{Team: 1})
	b := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 6}, Team: 1})
	enemy := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: -4}, Team: 2})

	envA := newAgentEnv(w, a, nil)
	envB := newAgentEnv(w, b, nil)
	treeA := PackHunter(envA.bind)
	treeB := PackHunter(envB.bind)

	require.Equal(t, Running, treeB.Update(envB.ctx), "b sees nothing and patrols")

	require.Equal(t, Running, treeA.Update(envA.ctx))
	assert.Equal(t, world.MoveLeft, envA.action())
	require.Len(t, *envA.events, 1)

	assert.Equal(t, Success, treeB.Receive((*envA.events)[0], envB.ctx))
	assert.Equal(t, enemy, envB.entity("target"))

	require.Equal(t, Running, treeB.Update(envB.ctx))
	assert.Equal(t, world.MoveLeft, envB.action())
}
