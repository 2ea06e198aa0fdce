package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/npcmind/internal/arena"
	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/rng"
)

type recState struct {
	baseState
	calls *[]string
}

func (s recState) Enter(Context)        { *s.calls = append(*s.calls, "enter:"+s.name) }
func (s recState) Exit(Context)         { *s.calls = append(*s.calls, "exit:"+s.name) }
func (s recState) Act(float64, Context) { *s.calls = append(*s.calls, "act:"+s.name) }

func rec(name string, calls *[]string) State {
	return recState{baseState: baseState{name: name}, calls: calls}
}

func fixed(v bool, evaluated *int) Transition {
	return TransitionFunc(func(Context) bool {
		if evaluated != nil {
			*evaluated++
		}
		return v
	})
}

func TestEmptyMachine(t *testing.T) {
	m := New()
	assert.Equal(t, -1, m.Current())
	assert.Equal(t, "", m.StateName())
	m.Act(0, Context{})
}

func TestNoTransitionStillActs(t *testing.T) {
	var calls []string
	m := New()
	a := m.AddState(rec("a", &calls))
	b := m.AddState(rec("b", &calls))
	m.AddTransition(fixed(false, nil), a, b)

	m.Act(0, Context{})
	m.Act(0, Context{})
	assert.Equal(t, []string{"act:a", "act:a"}, calls)
	assert.Equal(t, a, m.Current())
}

func TestFirstRegisteredTransitionWins(t *testing.T) {
	var calls []string
	m := New()
	a := m.AddState(rec("a", &calls))
	b := m.AddState(rec("b", &calls))
	c := m.AddState(rec("c", &calls))
	m.AddTransition(fixed(false, nil), a, c)
	m.AddTransition(fixed(true, nil), a, b)
	m.AddTransition(fixed(true, nil), a, c)

	m.Act(0, Context{})
	assert.Equal(t, b, m.Current())
	assert.Equal(t, []string{"exit:a", "enter:b", "act:b"}, calls)
}

func TestAtMostOneTransitionPerTick(t *testing.T) {
	var calls []string
	m := New()
	a := m.AddState(rec("a", &calls))
	b := m.AddState(rec("b", &calls))
	c := m.AddState(rec("c", &calls))
	m.AddTransition(fixed(true, nil), a, b)
	m.AddTransition(fixed(true, nil), b, c)

	var switches [][2]int
	m.OnTransition(func(from, to int) { switches = append(switches, [2]int{from, to}) })

	m.Act(0, Context{})
	assert.Equal(t, b, m.Current(), "b's own transition waits for the next tick")
	m.Act(0, Context{})
	assert.Equal(t, c, m.Current())
	assert.Equal(t, [][2]int{{a, b}, {b, c}}, switches)
	assert.Equal(t, []string{"exit:a", "enter:b", "act:b", "exit:b", "enter:c", "act:c"}, calls)
}

func TestAddTransitionRejectsUnknownState(t *testing.T) {
	m := New()
	m.AddState(Nop())
	assert.Panics(t, func() { m.AddTransition(fixed(true, nil), 0, 3) })
}

func TestCombinators(t *testing.T) {
	tests := []struct {
		name string
		tr   Transition
		want bool
	}{
		{"negate true", Negate(fixed(true, nil)), false},
		{"negate false", Negate(fixed(false, nil)), true},
		{"and tt", And(fixed(true, nil), fixed(true, nil)), true},
		{"and tf", And(fixed(true, nil), fixed(false, nil)), false},
		{"and ff", And(fixed(false, nil), fixed(false, nil)), false},
		{"or ft", Or(fixed(false, nil), fixed(true, nil)), true},
		{"or ff", Or(fixed(false, nil), fixed(false, nil)), false},
		{"nested", And(Negate(fixed(false, nil)), Or(fixed(false, nil), fixed(true, nil))), true},
		{"reachable", EnemyReachable(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tr.Available(Context{}))
		})
	}
}

func TestCombinatorsEvaluateFresh(t *testing.T) {
	n := 0
	tr := And(fixed(false, &n), fixed(true, &n))
	tr.Available(Context{})
	tr.Available(Context{})
	assert.Equal(t, 4, n)
}

func TestScenarioHurtAgentFleesWhileChasing(t *testing.T) {
	w := arena.New()
	me := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{}, Team: 1})
	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 2}, Team: 0})

	m := PatrolAttackFlee(Params{Anchor: world.Position{}, Rand: rng.New(3)})
	intents := world.IntentSet{}
	ctx := Context{World: w, Self: me, Actions: intents}

	m.Act(0, ctx)
	require.Equal(t, "move_to_enemy", m.StateName())
	assert.Equal(t, world.MoveRight, intents[me].Action)

	require.NoError(t, w.SetHitpoints(me, 55))
	m.Act(0, ctx)
	assert.Equal(t, "flee_from_enemy", m.StateName())
	assert.Equal(t, world.MoveLeft, intents[me].Action)
}

func TestPatrolAttackFleeReturnsToPatrol(t *testing.T) {
	w := arena.New()
	me := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{}, Team: 1, Hitpoints: 50})
	enemy := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 3}, Team: 0})

	m := PatrolAttackFlee(Params{Rand: rng.New(3)})
	ctx := Context{World: w, Self: me, Actions: world.IntentSet{}}

	m.Act(0, ctx)
	assert.Equal(t, "move_to_enemy", m.StateName(), "enemy edge is registered before the flee edge")
	m.Act(0, ctx)
	assert.Equal(t, "flee_from_enemy", m.StateName())

	require.NoError(t, w.Place(enemy, world.Position{X: 8}))
	m.Act(0, ctx)
	assert.Equal(t, "patrol", m.StateName())
}

func TestPatrolState(t *testing.T) {
	w := arena.New()
	me := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 5}, Team: 1})
	intents := world.IntentSet{}
	ctx := Context{World: w, Self: me, Actions: intents}

	s := Patrol(3, world.Position{}, rng.NewFixed(2))
	s.Act(0, ctx)
	assert.Equal(t, world.MoveLeft, intents[me].Action, "recovery walk beyond range")

	require.NoError(t, w.Place(me, world.Position{X: 1}))
	s.Act(0, ctx)
	assert.Equal(t, world.Moves[2], intents[me].Action, "random walk within range")
}

func TestHealStates(t *testing.T) {
	w := arena.New()
	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{}, Team: 0, Player: true, Hitpoints: 40})
	squire := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 1}, Team: 0, Heal: &arena.HealAbility{Restoration: 10, Cooldown: 3}})
	intents := world.IntentSet{}
	ctx := Context{World: w, Self: squire, Actions: intents}

	HealPlayer().Act(0, ctx)
	assert.Equal(t, world.HealPlayer, intents[squire].Action)
	w.Resolve(intents)

	delete(intents, squire)
	HealPlayer().Act(0, ctx)
	_, emitted := intents[squire]
	assert.False(t, emitted, "on cooldown")

	HealSelf(7).Act(0, ctx)
	assert.Equal(t, world.Intent{Action: world.HealSelf, Amount: 7}, intents[squire])
}

func TestSquireHealsHurtPlayer(t *testing.T) {
	w := arena.New()
	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{}, Team: 0, Player: true, Hitpoints: 60})
	squire := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 2}, Team: 0, Heal: &arena.HealAbility{Restoration: 10, Cooldown: 2}})

	m, err := Build("squire", Params{})
	require.NoError(t, err)
	intents := world.IntentSet{}
	m.Act(0, Context{World: w, Self: squire, Actions: intents})
	assert.Equal(t, "heal_player", m.StateName())
	assert.Equal(t, world.HealPlayer, intents[squire].Action)
}

func TestBuildUnknown(t *testing.T) {
	_, err := Build("dragon", Params{})
	assert.Error(t, err)
	assert.Contains(t, Names(), "healer")
	for _, name := range Names() {
		m, err := Build(name, Params{})
		require.NoError(t, err, name)
		assert.Greater(t, m.Len(), 0, name)
	}
}

func TestMoveStates(t *testing.T) {
	w := arena.New()
	me := w.SpawnAgent(arena.AgentSpec{Pos: world.Position{}, Team: 1})
	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{Y: 4}, Team: 1})
	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: -6}, Team: 0, Player: true})
	intents := world.IntentSet{}
	ctx := Context{World: w, Self: me, Actions: intents}

	MoveToAlly().Act(0, ctx)
	assert.Equal(t, world.MoveUp, intents[me].Action)
	MoveToPlayer().Act(0, ctx)
	assert.Equal(t, world.MoveLeft, intents[me].Action)
	MoveToEnemy().Act(0, ctx)
	assert.Equal(t, world.MoveLeft, intents[me].Action)
	FleeFromEnemy().Act(0, ctx)
	assert.Equal(t, world.MoveRight, intents[me].Action)
	AttackEnemy().Act(0, ctx)
	assert.Equal(t, world.Nop, intents[me].Action)
}
