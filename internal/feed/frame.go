package feed

import (
	"sort"

	"github.com/zeusync/npcmind/internal/arena"
	"github.com/zeusync/npcmind/internal/core/engine"
	"github.com/zeusync/npcmind/internal/core/world"
)

// Frame is what spectators receive once per turn.
type Frame struct {
	RunID     string              `json:"run_id"`
	Turn      int                 `json:"turn"`
	Decisions []Decision          `json:"decisions"`
	Entities  []arena.EntityState `json:"entities"`
	Killed    []world.EntityID    `json:"killed,omitempty"`
	Log       []string            `json:"log,omitempty"`
}

// Decision is the choice one agent made in a pass.
type Decision struct {
	Agent  world.EntityID `json:"agent"`
	Action string         `json:"action"`
	State  string         `json:"state,omitempty"`
	Status string         `json:"status,omitempty"`
}

// NewFrame combines a decision pass with the turn it resolved into.
func NewFrame(report engine.Report, outcome arena.Outcome, w *arena.World) Frame {
	ids := make([]world.EntityID, 0, len(report.Intents)+len(report.States)+len(report.Statuses))
	seen := make(map[world.EntityID]bool)
	add := func(id world.EntityID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range report.Intents {
		add(id)
	}
	for id := range report.States {
		add(id)
	}
	for id := range report.Statuses {
		add(id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	decisions := make([]Decision, 0, len(ids))
	for _, id := range ids {
		d := Decision{Agent: id, Action: report.Intent(id).Action.String(), State: report.States[id]}
		if st, ok := report.Statuses[id]; ok {
			d.Status = st.String()
		}
		decisions = append(decisions, d)
	}

	return Frame{
		RunID:     report.RunID,
		Turn:      outcome.Turn,
		Decisions: decisions,
		Entities:  w.Snapshot(),
		Killed:    outcome.Killed,
		Log:       w.Log(),
	}
}
