package npc

import (
	"math"

	"github.com/zeusync/npcmind/internal/core/blackboard"
)

// Scorer rates a subtree from blackboard contents only.
type Scorer func(bb *blackboard.Blackboard) float64

// Constant scores the same value every tick.
func Constant(v float64) Scorer { return func(*blackboard.Blackboard) float64 { return v } }

// Choice pairs a subtree with its scorer.
type Choice struct {
	Node  Node
	Score Scorer
}

// Utility ticks the highest scoring choice. The first choice wins ties.
type Utility struct {
	compound
	scorers []Scorer
	last    int
}

func NewUtility(choices ...Choice) *Utility {
	u := &Utility{compound: newCompound("utility", nil), last: noRunning}
	for _, c := range choices {
		u.AddChoice(c.Node, c.Score)
	}
	return u
}

func (u *Utility) AddChoice(n Node, score Scorer) {
	if score == nil {
		score = Constant(0)
	}
	u.children = append(u.children, n)
	u.scorers = append(u.scorers, score)
}

// Add appends children that score a constant zero.
func (u *Utility) Add(children ...Node) {
	for _, n := range children {
		u.AddChoice(n, nil)
	}
}

// Selected is the index picked on the last update, or -1.
func (u *Utility) Selected() int { return u.last }

// Scores evaluates every scorer against bb.
func (u *Utility) Scores(bb *blackboard.Blackboard) []float64 {
	out := make([]float64, len(u.scorers))
	for i, s := range u.scorers {
		out[i] = s(bb)
	}
	return out
}

func (u *Utility) Update(ctx *Context) Status {
	u.running, u.last = noRunning, noRunning
	if len(u.children) == 0 {
		return Fail
	}
	best, bestScore := 0, math.Inf(-1)
	for i, s := range u.Scores(ctx.Blackboard) {
		if math.IsNaN(s) {
			continue
		}
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	u.last = best
	st := u.children[best].Update(ctx)
	if st == Running {
		u.running = best
	}
	return st
}
