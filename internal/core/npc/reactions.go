package npc

import (
	"fmt"

	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/world"
)

// Reaction is an event addressed to another agent's tree. The payload is
// written into the target's blackboard under PayloadName before the tree
// reacts.
type Reaction struct {
	Source      world.EntityID
	Target      world.EntityID
	Event       Event
	PayloadName string
	Payload     world.EntityID
}

// ReactionSink buffers reactions until the current agent finishes its update.
type ReactionSink interface {
	Notify(r Reaction)
}

// ReactionList is a ReactionSink that keeps reactions in emission order.
type ReactionList []Reaction

func (l *ReactionList) Notify(r Reaction) { *l = append(*l, r) }

// NotifyEnemyNear tells every teammate within radius about the enemy stored
// under a blackboard name.
type NotifyEnemyNear struct {
	leaf
	radius  float64
	enemy   blackboard.Handle[world.EntityID]
	payload string
}

func NewNotifyEnemyNear(b Binding, radius float64, enemy, payload string) *NotifyEnemyNear {
	return &NotifyEnemyNear{
		leaf:    leaf{named{name: fmt.Sprintf("notify_enemy_near(%g,%s)", radius, enemy)}},
		radius:  radius,
		enemy:   blackboard.Register[world.EntityID](b.Blackboard, enemy),
		payload: payload,
	}
}

func (n *NotifyEnemyNear) Update(ctx *Context) Status {
	enemy := blackboard.Get(ctx.Blackboard, n.enemy)
	if enemy == world.NoEntity || !ctx.World.Alive(enemy) {
		return Fail
	}
	pos, ok := ctx.position()
	if !ok {
		return Fail
	}
	if ctx.Reactions == nil {
		return Success
	}
	team := ctx.World.Team(ctx.Self)
	r2 := n.radius * n.radius
	for _, id := range ctx.World.Agents() {
		if id == ctx.Self || ctx.World.Team(id) != team {
			continue
		}
		apos, ok := ctx.World.Position(id)
		if !ok || world.DistSq(pos, apos) >= r2 {
			continue
		}
		ctx.Reactions.Notify(Reaction{
			Source:      ctx.Self,
			Target:      id,
			Event:       EnemyIsNear,
			PayloadName: n.payload,
			Payload:     enemy,
		})
	}
	return Success
}

// ReactSelectTarget retargets the tree when it receives its event.
type ReactSelectTarget struct {
	leaf
	event   Event
	payload blackboard.Handle[world.EntityID]
	target  blackboard.Handle[world.EntityID]
}

func NewReactSelectTarget(b Binding, ev Event, payload, target string) *ReactSelectTarget {
	return &ReactSelectTarget{
		leaf:    leaf{named{name: fmt.Sprintf("react_select_target(%s,%s)", ev, target)}},
		event:   ev,
		payload: blackboard.Register[world.EntityID](b.Blackboard, payload),
		target:  blackboard.Register[world.EntityID](b.Blackboard, target),
	}
}

func (*ReactSelectTarget) Update(*Context) Status { return Success }

func (r *ReactSelectTarget) React(ev Event, ctx *Context) Status {
	if ev != r.event {
		return Fail
	}
	blackboard.Set(ctx.Blackboard, r.target, blackboard.Get(ctx.Blackboard, r.payload))
	return Success
}
