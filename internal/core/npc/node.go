package npc

import (
	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/rng"
)

// Context is what nodes see on every update and reaction.
type Context struct {
	World      world.Query
	Self       world.EntityID
	Blackboard *blackboard.Blackboard
	Actions    world.ActionSink
	Reactions  ReactionSink
}

func (c *Context) emit(intent world.Intent) {
	if c.Actions != nil {
		c.Actions.Emit(c.Self, intent)
	}
}

func (c *Context) position() (world.Position, bool) { return c.World.Position(c.Self) }

// Binding is the construction-time environment of a tree. Leaves resolve
// their blackboard names into handles against it once, when they are built.
type Binding struct {
	World      world.Query
	Self       world.EntityID
	Blackboard *blackboard.Blackboard
	Rand       rng.Source
}

// Node is one unit of a behavior tree.
type Node interface {
	Name() string
	Update(ctx *Context) Status
	// React handles an out-of-band event. It must not return Running.
	React(ev Event, ctx *Context) Status
}

// Parent is implemented by nodes that own children.
type Parent interface {
	Node
	Children() []Node
}

type named struct{ name string }

func (n *named) Name() string { return n.name }

// SetName overrides the diagnostic name of a node.
func (n *named) SetName(name string) { n.name = name }

// leaf gives nodes a name and the default reaction, which is to not react.
type leaf struct{ named }

func (*leaf) React(Event, *Context) Status { return Fail }

// checkedReact forwards a reaction and rejects Running.
func checkedReact(n Node, ev Event, ctx *Context) Status {
	st := n.React(ev, ctx)
	if st == Running {
		violation("%s returned running from react", n.Name())
	}
	return st
}

// Walk visits n and its descendants depth first.
func Walk(n Node, fn func(depth int, n Node)) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(int, Node)) {
	if n == nil {
		return
	}
	fn(depth, n)
	if p, ok := n.(Parent); ok {
		for _, ch := range p.Children() {
			walk(ch, depth+1, fn)
		}
	}
}
