package npc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/npcmind/internal/arena"
	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/rng"
)

const minotaurYAML = `
root: brain
nodes:
  brain:
    type: selector
    children: [flee_branch, attack_branch, wander]
  flee_branch:
    type: sequence
    children: [hurt, spot_threat, run]
  hurt:
    type: is_low_hp
    params: {threshold: 50}
  spot_threat:
    type: find_enemy
    params: {max_dist: 4, target: flee_enemy}
  run:
    type: flee
    params: {target: flee_enemy}
  attack_branch:
    type: sequence
    children: [spot_prey, chase]
  spot_prey:
    type: find_enemy
    params: {max_dist: 3, target: attack_enemy}
  chase:
    type: move_to_entity
    params: {target: attack_enemy}
  wander:
    type: patrol
    params: {max_dist: 2, anchor: patrol_pos}
`

func TestLoadYAML_BuildsTree(t *testing.T) {
	cfg, err := LoadYAML(strings.NewReader(minotaurYAML))
	require.NoError(t, err)

	w := arena.New()
	self := w.SpawnAgent(arena.AgentSpec{Team: 1, Hitpoints: 40})
	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 3}, Team: 2})
	env := newAgentEnv(w, self, rng.NewFixed(0))

	tree, err := cfg.Build(DefaultRegistry(), env.bind)
	require.NoError(t, err)
	assert.Equal(t, "brain", tree.Root().Name())
	assert.Equal(t, 9, tree.Len())

	assert.Equal(t, Running, tree.Update(env.ctx))
	assert.Equal(t, world.MoveLeft, env.action())
}

const utilityJSON = `{
  "root": "pick",
  "nodes": {
    "pick": {
      "type": "utility",
      "children": ["idle", "heal"],
      "scorers": [
        {"type": "constant", "params": {"value": 50}},
        {"type": "linear", "params": {"key": "hp", "bias": 140, "slope": -1, "floor": 0}}
      ]
    },
    "idle": {"type": "patrol", "params": {"max_dist": "max", "anchor": "home"}},
    "heal": {"type": "patch_up", "params": {"threshold": 100}}
  }
}`

func TestLoadJSON_BuildsUtility(t *testing.T) {
	cfg, err := LoadJSON(strings.NewReader(utilityJSON))
	require.NoError(t, err)

	w := arena.New()
	self := w.SpawnAgent(arena.AgentSpec{Hitpoints: 60})
	env := newAgentEnv(w, self, nil)
	tree, err := cfg.Build(DefaultRegistry(), env.bind)
	require.NoError(t, err)

	blackboard.Put(env.ctx.Blackboard, "hp", 60.0)
	assert.Equal(t, Success, tree.Update(env.ctx))
	assert.Equal(t, world.HealSelf, env.action())

	blackboard.Put(env.ctx.Blackboard, "hp", 95.0)
	assert.Equal(t, Running, tree.Update(env.ctx))
	assert.Equal(t, 0, tree.Root().(*Utility).Selected())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "no root",
			yaml: "nodes: {}",
			want: "no root",
		},
		{
			name: "unknown node",
			yaml: "root: a\nnodes:\n  a: {type: sequence, children: [b]}",
			want: "unknown node in config: b",
		},
		{
			name: "unknown type",
			yaml: "root: a\nnodes:\n  a: {type: teleport}",
			want: "unknown node type: teleport",
		},
		{
			name: "missing param",
			yaml: "root: a\nnodes:\n  a: {type: find_enemy, params: {max_dist: 3}}",
			want: `missing param "target"`,
		},
		{
			name: "shared child",
			yaml: "root: a\nnodes:\n  a: {type: selector, children: [b, b]}\n  b: {type: is_low_hp, params: {threshold: 1}}",
			want: "more than one parent",
		},
		{
			name: "negate arity",
			yaml: "root: a\nnodes:\n  a: {type: negate, children: [b]}\n  b: {type: is_low_hp, params: {threshold: 1}}",
			want: "exactly one child",
		},
		{
			name: "scorer count",
			yaml: "root: a\nnodes:\n  a: {type: utility, children: [b]}\n  b: {type: is_low_hp, params: {threshold: 1}}",
			want: "1 children but 0 scorers",
		},
		{
			name: "unknown scorer",
			yaml: "root: a\nnodes:\n  a: {type: utility, children: [b], scorers: [{type: vibes}]}\n  b: {type: is_low_hp, params: {threshold: 1}}",
			want: "unknown scorer: vibes",
		},
		{
			name: "unknown event",
			yaml: "root: a\nnodes:\n  a: {type: react_select_target, params: {event: dinner, payload: p, target: t}}",
			want: `unknown event "dinner"`,
		},
	}

	w := arena.New()
	self := w.SpawnAgent(arena.AgentSpec{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadYAML(strings.NewReader(tt.yaml))
			require.NoError(t, err)
			_, err = cfg.Build(DefaultRegistry(), newAgentEnv(w, self, nil).bind)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuild_NegateAndLogic(t *testing.T) {
	const src = `
root: gate
nodes:
  gate: {type: and, children: [healthy, alone]}
  healthy: {type: negate, child: low}
  low: {type: is_low_hp, params: {threshold: 30}}
  alone:
    type: or
    children: [no_enemy]
  no_enemy: {type: negate, child: look}
  look: {type: find_enemy, params: {max_dist: 5, target: e}}
`
	cfg, err := LoadYAML(strings.NewReader(src))
	require.NoError(t, err)

	w := arena.New()
	self := w.SpawnAgent(arena.AgentSpec{Hitpoints: 80})
	env := newAgentEnv(w, self, nil)
	tree, err := cfg.Build(DefaultRegistry(), env.bind)
	require.NoError(t, err)
	assert.Equal(t, Success, tree.Update(env.ctx))

	w.SpawnAgent(arena.AgentSpec{Pos: world.Position{X: 2}, Team: 5})
	assert.Equal(t, Fail, tree.Update(env.ctx))
}

func TestParams(t *testing.T) {
	p := Params{"i": 3, "f": 2.5, "s": "x", "inf": "max", "id": 7.0, "bad_id": 1.5}

	f, err := p.Float("i")
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	f, err = p.FloatOr("missing", 9)
	require.NoError(t, err)
	assert.Equal(t, 9.0, f)

	_, err = p.Float("s")
	assert.Error(t, err)

	id, err := p.Entity("id")
	require.NoError(t, err)
	assert.Equal(t, world.EntityID(7), id)

	_, err = p.Entity("bad_id")
	assert.Error(t, err)

	s, err := p.String("s")
	require.NoError(t, err)
	assert.Equal(t, "x", s)
}
