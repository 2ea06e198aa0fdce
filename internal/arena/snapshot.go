package arena

import (
	"sort"

	"github.com/zeusync/npcmind/internal/core/world"
)

// EntityState is the externally visible state of one entity.
type EntityState struct {
	ID        world.EntityID `json:"id"`
	Name      string         `json:"name,omitempty"`
	Kind      string         `json:"kind"`
	X         int            `json:"x"`
	Y         int            `json:"y"`
	Team      world.Team     `json:"team"`
	Hitpoints float64        `json:"hp,omitempty"`
	Player    bool           `json:"player,omitempty"`
}

// Snapshot lists every entity ordered by id.
func (w *World) Snapshot() []EntityState {
	out := make([]EntityState, 0, len(w.agents)+len(w.items))
	for _, id := range w.order {
		a := w.agents[id]
		out = append(out, EntityState{
			ID: a.id, Name: a.name, Kind: world.KindAgent.String(),
			X: a.pos.X, Y: a.pos.Y, Team: a.team, Hitpoints: a.hp, Player: a.player,
		})
	}
	for _, it := range w.items {
		out = append(out, EntityState{ID: it.id, Kind: it.kind.String(), X: it.pos.X, Y: it.pos.Y, Team: -1})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
