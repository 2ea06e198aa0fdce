package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/npcmind/internal/core/fsm"
	"github.com/zeusync/npcmind/internal/core/npc"
	"github.com/zeusync/npcmind/internal/core/observability/log"
)

const (
	defaultTurns       = 100
	defaultLogCapacity = 20
	defaultSeed        = 1
)

var ErrInvalid = errors.New("config: invalid scenario")

// Scenario describes a world, its agents and how long to run it.
type Scenario struct {
	Name      string           `yaml:"name"`
	Seed      int64            `yaml:"seed"`
	Turns     int              `yaml:"turns"`
	Log       LogConfig        `yaml:"log"`
	Engine    EngineConfig     `yaml:"engine"`
	Feed      FeedConfig       `yaml:"feed"`
	Waypoints []WaypointConfig `yaml:"waypoints"`
	Items     []ItemConfig     `yaml:"items"`
	Agents    []AgentConfig    `yaml:"agents"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type EngineConfig struct {
	SensorWorkers int `yaml:"sensor_workers"`
	// LogCapacity bounds the arena action log.
	LogCapacity int `yaml:"log_capacity"`
}

// FeedConfig holds spectator listen addresses. Empty disables a transport.
type FeedConfig struct {
	WebSocket string `yaml:"websocket"`
	QUIC      string `yaml:"quic"`
}

type WaypointConfig struct {
	Name string `yaml:"name"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Next string `yaml:"next"`
}

type ItemConfig struct {
	Kind   string  `yaml:"kind"`
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	Amount float64 `yaml:"amount"`
}

type AgentConfig struct {
	Name      string      `yaml:"name"`
	X         int         `yaml:"x"`
	Y         int         `yaml:"y"`
	Team      int         `yaml:"team"`
	Hitpoints float64     `yaml:"hitpoints"`
	Damage    float64     `yaml:"damage"`
	Player    bool        `yaml:"player"`
	Heal      *HealConfig `yaml:"heal"`

	// Machine names a prebuilt state machine.
	Machine   string  `yaml:"machine"`
	HealRegen float64 `yaml:"heal_regen"`

	// Tree names a prebuilt archetype; TreeConfig and TreeFile describe a
	// custom tree instead. At most one of the three may be set.
	Tree       string      `yaml:"tree"`
	TreeConfig *npc.Config `yaml:"tree_config"`
	TreeFile   string      `yaml:"tree_file"`

	// Waypoint is the first waypoint of a waypoint walker.
	Waypoint string      `yaml:"waypoint"`
	Hive     *HiveConfig `yaml:"hive"`
}

type HealConfig struct {
	Restoration float64 `yaml:"restoration"`
	Cooldown    int     `yaml:"cooldown"`
}

type HiveConfig struct {
	AttackRadius float64 `yaml:"attack_radius"`
	AllyRadius   float64 `yaml:"ally_radius"`
	BaseRadius1  float64 `yaml:"base_radius1"`
	BaseRadius2  float64 `yaml:"base_radius2"`
	Base         string  `yaml:"base"`
}

// Load decodes, defaults and validates a scenario.
func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Scenario) ApplyDefaults() {
	if s.Seed == 0 {
		s.Seed = defaultSeed
	}
	if s.Turns == 0 {
		s.Turns = defaultTurns
	}
	if s.Log.Level == "" {
		s.Log.Level = log.LevelInfo.String()
	}
	if s.Log.Encoding == "" {
		s.Log.Encoding = "json"
	}
	if s.Engine.SensorWorkers == 0 {
		s.Engine.SensorWorkers = 1
	}
	if s.Engine.LogCapacity == 0 {
		s.Engine.LogCapacity = defaultLogCapacity
	}
}

// Validate reports every problem found, joined into one error.
func (s *Scenario) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if s.Turns < 0 {
		fail("turns must not be negative, got %d", s.Turns)
	}
	if _, err := log.ParseLevel(s.Log.Level); err != nil {
		fail("log level: %v", err)
	}
	if s.Log.Encoding != "json" && s.Log.Encoding != "console" {
		fail("log encoding must be json or console, got %q", s.Log.Encoding)
	}
	if s.Engine.SensorWorkers < 0 {
		fail("sensor_workers must not be negative")
	}

	waypoints := make(map[string]bool, len(s.Waypoints))
	for i, wp := range s.Waypoints {
		if wp.Name == "" {
			fail("waypoint %d has no name", i)
			continue
		}
		if waypoints[wp.Name] {
			fail("duplicate waypoint %q", wp.Name)
		}
		waypoints[wp.Name] = true
	}
	for _, wp := range s.Waypoints {
		if wp.Next != "" && !waypoints[wp.Next] {
			fail("waypoint %q links to unknown waypoint %q", wp.Name, wp.Next)
		}
	}

	for i, it := range s.Items {
		if !slices.Contains([]string{"treasure", "heal", "powerup"}, it.Kind) {
			fail("item %d: unknown kind %q", i, it.Kind)
		}
	}

	names := make(map[string]bool, len(s.Agents))
	for i, a := range s.Agents {
		label := a.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		} else if names[a.Name] {
			fail("duplicate agent %q", a.Name)
		}
		names[a.Name] = true

		if a.Machine != "" && !slices.Contains(fsm.Names(), a.Machine) {
			fail("agent %s: unknown machine %q", label, a.Machine)
		}
		trees := 0
		for _, set := range []bool{a.Tree != "", a.TreeConfig != nil, a.TreeFile != ""} {
			if set {
				trees++
			}
		}
		if trees > 1 {
			fail("agent %s: tree, tree_config and tree_file are mutually exclusive", label)
		}
		if a.Tree != "" && !slices.Contains(npc.Archetypes(), a.Tree) {
			fail("agent %s: unknown tree %q", label, a.Tree)
		}
		if a.Waypoint != "" && !waypoints[a.Waypoint] {
			fail("agent %s: unknown waypoint %q", label, a.Waypoint)
		}
		if a.Tree == "waypoint_walker" && a.Waypoint == "" {
			fail("agent %s: waypoint_walker needs a waypoint", label)
		}
		if a.Tree == "hive" {
			switch {
			case a.Hive == nil:
				fail("agent %s: hive tree needs a hive block", label)
			case !waypoints[a.Hive.Base]:
				fail("agent %s: unknown hive base %q", label, a.Hive.Base)
			case a.Hive.BaseRadius1 == a.Hive.BaseRadius2:
				fail("agent %s: hive base radii must differ", label)
			}
		}
		if a.Heal != nil && a.Heal.Cooldown < 0 {
			fail("agent %s: heal cooldown must not be negative", label)
		}
	}
	return errors.Join(errs...)
}

// Options converts the log section into logger options.
func (l LogConfig) Options() (log.Options, error) {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.Options{}, err
	}
	return log.Options{Level: level, Encoding: l.Encoding}, nil
}
