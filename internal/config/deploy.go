package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeusync/npcmind/internal/arena"
	"github.com/zeusync/npcmind/internal/core/engine"
	"github.com/zeusync/npcmind/internal/core/fsm"
	"github.com/zeusync/npcmind/internal/core/npc"
	"github.com/zeusync/npcmind/internal/core/sensor"
	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/rng"
)

// Deployment maps scenario names onto the entities they were spawned as.
type Deployment struct {
	Waypoints map[string]world.EntityID
	Agents    map[string]world.EntityID
}

// Deploy spawns the scenario into w and registers deciding agents with e.
// Relative tree files resolve against baseDir.
func (s *Scenario) Deploy(w *arena.World, e *engine.Engine, rnd rng.Source, baseDir string) (*Deployment, error) {
	d := &Deployment{
		Waypoints: make(map[string]world.EntityID, len(s.Waypoints)),
		Agents:    make(map[string]world.EntityID, len(s.Agents)),
	}

	for _, wp := range s.Waypoints {
		d.Waypoints[wp.Name] = w.SpawnWaypoint(world.Position{X: wp.X, Y: wp.Y})
	}
	for _, wp := range s.Waypoints {
		if wp.Next == "" {
			continue
		}
		if err := w.Link(d.Waypoints[wp.Name], d.Waypoints[wp.Next]); err != nil {
			return nil, fmt.Errorf("link %s -> %s: %w", wp.Name, wp.Next, err)
		}
	}

	for _, it := range s.Items {
		pos := world.Position{X: it.X, Y: it.Y}
		switch it.Kind {
		case "treasure":
			w.SpawnTreasure(pos)
		case "heal":
			w.SpawnHeal(pos, it.Amount)
		case "powerup":
			w.SpawnPowerup(pos, it.Amount)
		}
	}

	for _, ac := range s.Agents {
		spec := arena.AgentSpec{
			Name:      ac.Name,
			Pos:       world.Position{X: ac.X, Y: ac.Y},
			Team:      world.Team(ac.Team),
			Hitpoints: ac.Hitpoints,
			Damage:    ac.Damage,
			Player:    ac.Player,
		}
		if ac.Heal != nil {
			spec.Heal = &arena.HealAbility{Restoration: ac.Heal.Restoration, Cooldown: ac.Heal.Cooldown}
		}
		id := w.SpawnAgent(spec)
		if ac.Name != "" {
			d.Agents[ac.Name] = id
		}

		agent, err := s.buildAgent(ac, id, spec.Pos, w, rnd, d, baseDir)
		if err != nil {
			return nil, err
		}
		if agent == nil {
			continue
		}
		if err := e.Add(agent); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (s *Scenario) buildAgent(ac AgentConfig, id world.EntityID, pos world.Position, q world.Query, rnd rng.Source, d *Deployment, baseDir string) (*engine.Agent, error) {
	a := engine.NewAgent(id, ac.Name)

	if ac.Machine != "" {
		m, err := fsm.Build(ac.Machine, fsm.Params{Anchor: pos, Rand: rnd, HealRegen: ac.HealRegen})
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.Label(), err)
		}
		a.Machine = m
	}

	tree, err := s.buildTree(ac, a.Binding(q, rnd), d, baseDir)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.Label(), err)
	}
	if tree != nil {
		a.Tree = tree
		a.Sensors = []sensor.Sensor{sensor.NewWorldInfo(a.Blackboard)}
	}

	if a.Machine == nil && a.Tree == nil {
		return nil, nil
	}
	return a, nil
}

func (s *Scenario) buildTree(ac AgentConfig, b npc.Binding, d *Deployment, baseDir string) (*npc.Tree, error) {
	switch {
	case ac.Tree != "":
		params := npc.ArchetypeParams{FirstWaypoint: d.Waypoints[ac.Waypoint]}
		if h := ac.Hive; h != nil {
			params.Hive = npc.HiveParams{
				AttackRadius: h.AttackRadius,
				AllyRadius:   h.AllyRadius,
				BaseRadius1:  h.BaseRadius1,
				BaseRadius2:  h.BaseRadius2,
				Base:         d.Waypoints[h.Base],
			}
		}
		return npc.BuildArchetype(ac.Tree, b, params)
	case ac.TreeConfig != nil:
		return ac.TreeConfig.Build(npc.DefaultRegistry(), b)
	case ac.TreeFile != "":
		cfg, err := loadTree(resolvePath(baseDir, ac.TreeFile))
		if err != nil {
			return nil, err
		}
		return cfg.Build(npc.DefaultRegistry(), b)
	default:
		return nil, nil
	}
}

func loadTree(path string) (*npc.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg *npc.Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		cfg, err = npc.LoadJSON(f)
	} else {
		cfg, err = npc.LoadYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", path, err)
	}
	return cfg, nil
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
