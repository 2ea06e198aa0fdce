package arena

import (
	"math"

	"github.com/zeusync/npcmind/internal/core/world"
)

func (w *World) Agents() []world.EntityID {
	out := make([]world.EntityID, len(w.order))
	copy(out, w.order)
	return out
}

func (w *World) Alive(id world.EntityID) bool {
	if _, ok := w.agents[id]; ok {
		return true
	}
	_, ok := w.items[id]
	return ok
}

func (w *World) Position(id world.EntityID) (world.Position, bool) {
	if a, ok := w.agents[id]; ok {
		return a.pos, true
	}
	if it, ok := w.items[id]; ok {
		return it.pos, true
	}
	return world.Position{}, false
}

func (w *World) Team(id world.EntityID) world.Team {
	if a, ok := w.agents[id]; ok {
		return a.team
	}
	return -1
}

func (w *World) Hitpoints(id world.EntityID) float64 {
	if a, ok := w.agents[id]; ok {
		return a.hp
	}
	return 0
}

func (w *World) IsPlayer(id world.EntityID) bool {
	a, ok := w.agents[id]
	return ok && a.player
}

func (w *World) HealCooldown(id world.EntityID) int {
	if a, ok := w.agents[id]; ok && a.heal != nil {
		return a.cooldown
	}
	return 0
}

func (w *World) NextWaypoint(id world.EntityID) (world.EntityID, bool) {
	it, ok := w.items[id]
	if !ok || it.kind != world.KindWaypoint || it.next == world.NoEntity {
		return world.NoEntity, false
	}
	if _, ok := w.items[it.next]; !ok {
		return world.NoEntity, false
	}
	return it.next, true
}

func (w *World) NearestOpponent(self world.EntityID, maxDist float64) (world.Sighting, bool) {
	me, ok := w.agents[self]
	if !ok {
		return world.Sighting{}, false
	}
	return w.nearestAgent(me, maxDist, func(a *agent) bool { return a.team != me.team })
}

func (w *World) NearestAlly(self world.EntityID, maxDist float64) (world.Sighting, bool) {
	me, ok := w.agents[self]
	if !ok {
		return world.Sighting{}, false
	}
	return w.nearestAgent(me, maxDist, func(a *agent) bool { return a.id != me.id && a.team == me.team })
}

func (w *World) NearestPlayer(self world.EntityID) (world.Sighting, bool) {
	me, ok := w.agents[self]
	if !ok {
		return world.Sighting{}, false
	}
	return w.nearestAgent(me, world.Unbounded, func(a *agent) bool { return a.player })
}

func (w *World) NearestOfKind(self world.EntityID, kind world.Kind) (world.Sighting, bool) {
	origin, ok := w.Position(self)
	if !ok {
		return world.Sighting{}, false
	}
	if kind == world.KindAgent {
		me := w.agents[self]
		if me == nil {
			me = &agent{pos: origin}
		}
		return w.nearestAgent(me, world.Unbounded, func(a *agent) bool { return a.id != self })
	}
	best := world.Sighting{}
	bestDist := math.Inf(1)
	found := false
	for _, it := range w.items {
		if it.kind != kind {
			continue
		}
		d := world.Dist(origin, it.pos)
		if d < bestDist || (d == bestDist && it.id < best.ID) {
			best = world.Sighting{ID: it.id, Pos: it.pos, Dist: d}
			bestDist = d
			found = true
		}
	}
	return best, found
}

func (w *World) nearestAgent(me *agent, maxDist float64, match func(*agent) bool) (world.Sighting, bool) {
	best := world.Sighting{}
	bestDist := math.Inf(1)
	found := false
	for _, id := range w.order {
		a := w.agents[id]
		if !match(a) {
			continue
		}
		d := world.Dist(me.pos, a.pos)
		if d > maxDist {
			continue
		}
		if d < bestDist {
			best = world.Sighting{ID: a.id, Pos: a.pos, Dist: d}
			bestDist = d
			found = true
		}
	}
	return best, found
}
