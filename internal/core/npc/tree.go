package npc

import "github.com/zeusync/npcmind/internal/core/blackboard"

// Tree is the per-agent root of a behavior tree.
type Tree struct {
	root Node
}

func NewTree(root Node) *Tree { return &Tree{root: root} }

func (t *Tree) Root() Node { return t.root }

func (t *Tree) Update(ctx *Context) Status {
	if t.root == nil {
		return Fail
	}
	return t.root.Update(ctx)
}

func (t *Tree) React(ev Event, ctx *Context) Status {
	if t.root == nil {
		return Fail
	}
	return checkedReact(t.root, ev, ctx)
}

// Receive stores the reaction payload in the tree's blackboard and reacts.
func (t *Tree) Receive(r Reaction, ctx *Context) Status {
	blackboard.Put(ctx.Blackboard, r.PayloadName, r.Payload)
	return t.React(r.Event, ctx)
}

// Len counts the nodes of the tree.
func (t *Tree) Len() int {
	n := 0
	Walk(t.root, func(int, Node) { n++ })
	return n
}
