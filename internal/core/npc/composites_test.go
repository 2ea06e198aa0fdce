package npc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Update(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
		ticked   int
		running  int
	}{
		{"all succeed", []Status{Success, Success, Success}, Success, 3, -1},
		{"fail short circuits", []Status{Success, Fail, Success}, Fail, 2, -1},
		{"running short circuits", []Status{Success, Running, Success}, Running, 2, 1},
		{"empty fails", nil, Fail, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stubs []*stub
			var children []Node
			for _, st := range tt.statuses {
				s := newStub("s", st)
				stubs = append(stubs, s)
				children = append(children, s)
			}
			seq := NewSequence(children...)
			assert.Equal(t, tt.want, seq.Update(&Context{}))
			ticked := 0
			for _, s := range stubs {
				ticked += s.updates
			}
			assert.Equal(t, tt.ticked, ticked)
			assert.Equal(t, tt.running, seq.RunningIndex())
		})
	}
}

func TestSelector_Update(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
		running  int
	}{
		{"all fail", []Status{Fail, Fail}, Fail, -1},
		{"first success wins", []Status{Fail, Success, Running}, Success, -1},
		{"running recorded", []Status{Fail, Running, Success}, Running, 1},
		{"empty fails", nil, Fail, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var children []Node
			for _, st := range tt.statuses {
				children = append(children, newStub("s", st))
			}
			sel := NewSelector(children...)
			assert.Equal(t, tt.want, sel.Update(&Context{}))
			assert.Equal(t, tt.running, sel.RunningIndex())
		})
	}
}

func TestSelector_RunningIndexResetsEachUpdate(t *testing.T) {
	a := newStub("a", Running)
	sel := NewSelector(a)
	sel.Update(&Context{})
	require.Equal(t, 0, sel.RunningIndex())

	a.status = Success
	sel.Update(&Context{})
	assert.Equal(t, -1, sel.RunningIndex())
}

func TestParallel_Update(t *testing.T) {
	a := newStub("a", Running)
	b := newStub("b", Fail)
	c := newStub("c", Success)
	par := NewParallel(a, b, c)

	assert.Equal(t, Fail, par.Update(&Context{}))
	assert.Equal(t, 1, c.updates, "children after the settled one are still ticked")

	b.status, c.status = Running, Running
	assert.Equal(t, Running, par.Update(&Context{}))
	assert.Equal(t, Fail, NewParallel().Update(&Context{}))
}

func TestCompound_ReactPrefersRunningChild(t *testing.T) {
	first := newStub("first", Fail)
	first.react = Success
	running := newStub("running", Running)
	running.react = Success
	sel := NewSelector(first, running)

	require.Equal(t, Running, sel.Update(&Context{}))
	assert.Equal(t, Success, sel.React(EnemyIsNear, &Context{}))
	assert.Equal(t, 1, running.reacts)
	assert.Equal(t, 0, first.reacts, "siblings are not consulted when the running child absorbs the event")

	running.react = Fail
	assert.Equal(t, Success, sel.React(EnemyIsNear, &Context{}))
	assert.Equal(t, 1, first.reacts)
	assert.Equal(t, 2, running.reacts)
}

func TestCompound_ReactWithoutRunningChild(t *testing.T) {
	a := newStub("a", Fail)
	b := newStub("b", Fail)
	seq := NewSequence(a, b)

	assert.Equal(t, Fail, seq.React(EnemyIsNear, &Context{}))
	assert.Equal(t, 1, a.reacts)
	assert.Equal(t, 1, b.reacts)

	b.react = Success
	assert.Equal(t, Success, seq.React(EnemyIsNear, &Context{}))
	assert.Equal(t, Fail, NewSequence().React(EnemyIsNear, &Context{}))
}

func TestParallel_ReactReachesAllChildren(t *testing.T) {
	a := newStub("a", Running)
	a.react = Success
	b := newStub("b", Running)
	par := NewParallel(a, b)

	assert.Equal(t, Success, par.React(EnemyIsNear, &Context{}))
	assert.Equal(t, 1, a.reacts)
	assert.Equal(t, 1, b.reacts)

	a.react = Fail
	assert.Equal(t, Fail, par.React(EnemyIsNear, &Context{}))
}

func TestReact_RunningIsViolation(t *testing.T) {
	bad := newStub("bad", Success)
	bad.react = Running
	requireViolation(t, func() { NewSelector(bad).React(EnemyIsNear, &Context{}) })
	requireViolation(t, func() { NewTree(bad).React(EnemyIsNear, &Context{}) })
}

func TestWalk(t *testing.T) {
	root := NewSelector(
		NewSequence(newStub("a", Success), NewNegate(newStub("b", Fail))),
		newStub("c", Success),
	)
	var names []string
	var depths []int
	Walk(root, func(depth int, n Node) {
		names = append(names, n.Name())
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"selector", "sequence", "a", "negate", "b", "c"}, names)
	assert.Equal(t, []int{0, 1, 2, 2, 3, 1}, depths)
	assert.Equal(t, 6, NewTree(root).Len())
}
