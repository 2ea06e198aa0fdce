package engine

import (
	"github.com/zeusync/npcmind/internal/core/npc"
	"github.com/zeusync/npcmind/internal/core/world"
)

// Report is the outcome of one decision pass.
type Report struct {
	RunID string
	Pass  int
	// Intents holds the last intent each agent emitted.
	Intents   world.IntentSet
	States    map[world.EntityID]string
	Statuses  map[world.EntityID]npc.Status
	Reactions int
	Removed   []world.EntityID
}

func newReport(runID string, pass int) Report {
	return Report{
		RunID:    runID,
		Pass:     pass,
		Intents:  world.IntentSet{},
		States:   make(map[world.EntityID]string),
		Statuses: make(map[world.EntityID]npc.Status),
	}
}

// Intent returns the intent of id, Nop when it emitted none.
func (r Report) Intent(id world.EntityID) world.Intent { return r.Intents[id] }
