package arena

import (
	"fmt"

	"github.com/zeusync/npcmind/internal/core/observability/log"
	"github.com/zeusync/npcmind/internal/core/world"
)

// Outcome summarizes one resolved turn.
type Outcome struct {
	Turn    int
	Moved   []world.EntityID
	Blocked []world.EntityID
	Hits    []Hit
	Killed  []world.EntityID
	Picked  []world.EntityID
}

// Hit records melee damage dealt by a blocked move.
type Hit struct {
	Attacker world.EntityID
	Target   world.EntityID
	Damage   float64
}

// Emit stages an intent for the next Resolve.
func (w *World) Emit(id world.EntityID, intent world.Intent) {
	if a, ok := w.agents[id]; ok {
		a.intent = intent
	}
}

// Resolve stages the given intents on top of anything emitted earlier and
// applies every staged intent at once. Nothing a caller read before Resolve
// is changed until Resolve runs.
func (w *World) Resolve(intents world.IntentSet) Outcome {
	for id, in := range intents {
		w.Emit(id, in)
	}
	out := Outcome{Turn: w.turn}

	w.applyHeals()

	for _, id := range w.order {
		a := w.agents[id]
		if !a.intent.Action.IsMove() {
			continue
		}
		next := world.Step(a.pos, a.intent.Action)
		blocked := false
		for _, oid := range w.order {
			other := w.agents[oid]
			if other.id == a.id || other.movePos != next {
				continue
			}
			blocked = true
			if other.team != a.team {
				other.hp -= a.damage
				out.Hits = append(out.Hits, Hit{Attacker: a.id, Target: other.id, Damage: a.damage})
				w.log.Push(w.turn, "%s damaged %s for %.0f", w.label(a.id), w.label(other.id), a.damage)
			}
		}
		if blocked {
			out.Blocked = append(out.Blocked, a.id)
			continue
		}
		a.movePos = next
		out.Moved = append(out.Moved, a.id)
	}

	for _, id := range w.order {
		a := w.agents[id]
		a.pos = a.movePos
		a.intent = world.Intent{}
	}

	out.Killed = w.removeDead()
	out.Picked = w.pickups()

	for _, id := range w.order {
		if a := w.agents[id]; a.heal != nil && a.cooldown > 0 {
			a.cooldown--
		}
	}

	w.turn++
	w.logger.Debug("turn resolved",
		log.Int("turn", out.Turn),
		log.Int("moved", len(out.Moved)),
		log.Int("hits", len(out.Hits)),
		log.Int("killed", len(out.Killed)))
	return out
}

func (w *World) applyHeals() {
	for _, id := range w.order {
		a := w.agents[id]
		switch a.intent.Action {
		case world.HealSelf:
			amount := a.intent.Amount
			if amount == 0 {
				amount = defaultSelfHeal
			}
			a.hp += amount
			w.log.Push(w.turn, "%s healed itself", w.label(a.id))
		case world.HealPlayer:
			if a.heal == nil || a.cooldown > 0 {
				continue
			}
			a.cooldown = a.heal.Cooldown
			for _, pid := range w.order {
				if p := w.agents[pid]; p.player {
					p.hp += a.heal.Restoration
					w.log.Push(w.turn, "%s healed %s", w.label(a.id), w.label(p.id))
				}
			}
		}
	}
	for _, id := range w.order {
		if a := w.agents[id]; a.intent.Action == world.HealSelf || a.intent.Action == world.HealPlayer {
			a.intent = world.Intent{}
		}
	}
}

func (w *World) removeDead() []world.EntityID {
	var dead []world.EntityID
	for _, id := range w.order {
		if w.agents[id].hp <= 0 {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		w.log.Push(w.turn, "%s died", w.label(id))
		w.Remove(id)
	}
	return dead
}

func (w *World) pickups() []world.EntityID {
	var picked []world.EntityID
	for _, id := range w.order {
		p := w.agents[id]
		if !p.player {
			continue
		}
		for iid, it := range w.items {
			if it.pos != p.pos {
				continue
			}
			switch it.kind {
			case world.KindHeal:
				p.hp += it.amount
			case world.KindPowerup:
				p.damage += it.amount
			default:
				continue
			}
			picked = append(picked, iid)
			delete(w.items, iid)
		}
	}
	return picked
}

func (w *World) label(id world.EntityID) string {
	if a, ok := w.agents[id]; ok && a.name != "" {
		return a.name
	}
	return fmt.Sprintf("agent %d", id)
}
