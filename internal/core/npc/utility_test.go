package npc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/npcmind/internal/core/blackboard"
)

func TestUtility_PicksGreatestScore(t *testing.T) {
	bb := blackboard.New()
	key := blackboard.Put(bb, "x", 3.0)
	a := newStub("a", Success)
	b := newStub("b", Running)
	c := newStub("c", Fail)
	u := NewUtility(
		Choice{Node: a, Score: Constant(1)},
		Choice{Node: b, Score: func(bb *blackboard.Blackboard) float64 { return blackboard.Get(bb, key) * 2 }},
		Choice{Node: c, Score: Constant(5)},
	)
	ctx := &Context{Blackboard: bb}

	assert.Equal(t, Running, u.Update(ctx))
	assert.Equal(t, 1, u.Selected())
	assert.Equal(t, 1, u.RunningIndex())
	assert.Equal(t, 0, a.updates+c.updates, "unselected subtrees are not ticked")

	blackboard.Set(bb, key, 1.0)
	assert.Equal(t, Fail, u.Update(ctx))
	assert.Equal(t, 2, u.Selected())
	assert.Equal(t, -1, u.RunningIndex())
}

func TestUtility_Deterministic(t *testing.T) {
	bb := blackboard.New()
	u := NewUtility(
		Choice{Node: newStub("a", Success), Score: Constant(7)},
		Choice{Node: newStub("b", Success), Score: Constant(7)},
		Choice{Node: newStub("c", Success), Score: Constant(math.NaN())},
	)
	for i := 0; i < 10; i++ {
		u.Update(&Context{Blackboard: bb})
		assert.Equal(t, 0, u.Selected(), "first registered wins exact ties")
	}
}

func TestUtility_EmptyAndNilScorer(t *testing.T) {
	assert.Equal(t, Fail, NewUtility().Update(&Context{Blackboard: blackboard.New()}))

	u := NewUtility()
	u.AddChoice(newStub("a", Success), nil)
	u.AddChoice(newStub("b", Fail), Constant(-1))
	assert.Equal(t, Success, u.Update(&Context{Blackboard: blackboard.New()}))
	assert.Equal(t, []float64{0, -1}, u.Scores(blackboard.New()))
}

func TestUtility_AddScoresZero(t *testing.T) {
	u := NewUtility(Choice{Node: newStub("a", Fail), Score: Constant(-1)})
	b := newStub("b", Success)
	u.Add(b)

	require.Len(t, u.Children(), 2)
	assert.Equal(t, []float64{-1, 0}, u.Scores(blackboard.New()))
	assert.Equal(t, Success, u.Update(&Context{Blackboard: blackboard.New()}))
	assert.Equal(t, 1, u.Selected())
	assert.Equal(t, 1, b.updates)
}
