package engine

import (
	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/events/bus"
	"github.com/zeusync/npcmind/internal/core/fsm"
	"github.com/zeusync/npcmind/internal/core/npc"
	"github.com/zeusync/npcmind/internal/core/sensor"
	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/rng"
)

// Agent is the decision state of one entity. Machine and Tree are both
// optional and run independently; the tree acts after the machine.
type Agent struct {
	ID         world.EntityID
	Name       string
	Blackboard *blackboard.Blackboard
	Machine    *fsm.Machine
	Tree       *npc.Tree
	Sensors    []sensor.Sensor

	sub bus.Subscription
}

// NewAgent creates an agent with a fresh blackboard.
func NewAgent(id world.EntityID, name string) *Agent {
	return &Agent{ID: id, Name: name, Blackboard: blackboard.New()}
}

// Binding is the construction environment for trees of this agent.
func (a *Agent) Binding(q world.Query, rnd rng.Source) npc.Binding {
	return npc.Binding{World: q, Self: a.ID, Blackboard: a.Blackboard, Rand: rnd}
}

// Label is the agent name or its id.
func (a *Agent) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return "agent " + topic(a.ID)
}
