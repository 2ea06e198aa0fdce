package npc

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/world"
)

// Params are the decoded parameters of a configured node or scorer.
type Params map[string]any

// Float reads a number. "max" and "inf" map to math.MaxFloat64.
func (p Params) Float(key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing param %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		if n == "max" || n == "inf" {
			return math.MaxFloat64, nil
		}
	}
	return 0, fmt.Errorf("param %q: expected a number, got %T", key, v)
}

// FloatOr reads a number, falling back to def when the key is absent.
func (p Params) FloatOr(key string, def float64) (float64, error) {
	if _, ok := p[key]; !ok {
		return def, nil
	}
	return p.Float(key)
}

func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("param %q: expected a non-empty string, got %T", key, v)
	}
	return s, nil
}

func (p Params) Entity(key string) (world.EntityID, error) {
	f, err := p.Float(key)
	if err != nil {
		return world.NoEntity, err
	}
	if f < 1 || f > math.MaxUint32 || f != math.Trunc(f) {
		return world.NoEntity, fmt.Errorf("param %q: invalid entity id %g", key, f)
	}
	return world.EntityID(f), nil
}

type (
	LeafFactory   func(b Binding, p Params) (Node, error)
	ScorerFactory func(bb *blackboard.Blackboard, p Params) (Scorer, error)
)

// Registry maps configured type names onto leaf and scorer factories.
type Registry struct {
	mu      sync.RWMutex
	leaves  map[string]LeafFactory
	scorers map[string]ScorerFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		leaves:  make(map[string]LeafFactory),
		scorers: make(map[string]ScorerFactory),
	}
}

// DefaultRegistry returns a registry holding every built-in leaf and scorer.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

func (r *Registry) RegisterLeaf(name string, factory LeafFactory) {
	r.mu.Lock()
	r.leaves[name] = factory
	r.mu.Unlock()
}

func (r *Registry) RegisterScorer(name string, factory ScorerFactory) {
	r.mu.Lock()
	r.scorers[name] = factory
	r.mu.Unlock()
}

func (r *Registry) NewLeaf(name string, b Binding, p Params) (Node, error) {
	r.mu.RLock()
	f := r.leaves[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown node type: %s", name)
	}
	return f(b, p)
}

func (r *Registry) NewScorer(name string, bb *blackboard.Blackboard, p Params) (Scorer, error) {
	r.mu.RLock()
	f := r.scorers[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown scorer: %s", name)
	}
	return f(bb, p)
}

// Leaves lists the registered leaf types in sorted order.
func (r *Registry) Leaves() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.leaves))
	for name := range r.leaves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins registers every library leaf and scorer into r.
func RegisterBuiltins(r *Registry) {
	r.RegisterLeaf("move_to_entity", func(b Binding, p Params) (Node, error) {
		target, err := p.String("target")
		if err != nil {
			return nil, err
		}
		return NewMoveToEntity(b, target), nil
	})
	r.RegisterLeaf("flee", func(b Binding, p Params) (Node, error) {
		target, err := p.String("target")
		if err != nil {
			return nil, err
		}
		return NewFlee(b, target), nil
	})
	r.RegisterLeaf("is_low_hp", func(_ Binding, p Params) (Node, error) {
		thr, err := p.Float("threshold")
		if err != nil {
			return nil, err
		}
		return NewIsLowHp(thr), nil
	})
	r.RegisterLeaf("patch_up", func(_ Binding, p Params) (Node, error) {
		thr, err := p.Float("threshold")
		if err != nil {
			return nil, err
		}
		return NewPatchUp(thr), nil
	})
	r.RegisterLeaf("find_enemy", func(b Binding, p Params) (Node, error) {
		dist, err := p.Float("max_dist")
		if err != nil {
			return nil, err
		}
		target, err := p.String("target")
		if err != nil {
			return nil, err
		}
		return NewFindEnemy(b, dist, target), nil
	})
	r.RegisterLeaf("find_treasure", func(b Binding, p Params) (Node, error) {
		target, err := p.String("target")
		if err != nil {
			return nil, err
		}
		return NewFindTreasure(b, target), nil
	})
	r.RegisterLeaf("patrol", func(b Binding, p Params) (Node, error) {
		dist, err := p.Float("max_dist")
		if err != nil {
			return nil, err
		}
		anchor, err := p.String("anchor")
		if err != nil {
			return nil, err
		}
		return NewPatrol(b, dist, anchor), nil
	})
	r.RegisterLeaf("choose_waypoint", func(b Binding, p Params) (Node, error) {
		first, err := p.Entity("first")
		if err != nil {
			return nil, err
		}
		name, err := p.String("name")
		if err != nil {
			return nil, err
		}
		return NewChooseWaypoint(b, first, name), nil
	})
	r.RegisterLeaf("notify_enemy_near", func(b Binding, p Params) (Node, error) {
		radius, err := p.Float("radius")
		if err != nil {
			return nil, err
		}
		enemy, err := p.String("enemy")
		if err != nil {
			return nil, err
		}
		payload, err := p.String("payload")
		if err != nil {
			return nil, err
		}
		return NewNotifyEnemyNear(b, radius, enemy, payload), nil
	})
	r.RegisterLeaf("react_select_target", func(b Binding, p Params) (Node, error) {
		name, err := p.String("event")
		if err != nil {
			return nil, err
		}
		ev, err := ParseEvent(name)
		if err != nil {
			return nil, err
		}
		payload, err := p.String("payload")
		if err != nil {
			return nil, err
		}
		target, err := p.String("target")
		if err != nil {
			return nil, err
		}
		return NewReactSelectTarget(b, ev, payload, target), nil
	})

	r.RegisterScorer("constant", func(_ *blackboard.Blackboard, p Params) (Scorer, error) {
		v, err := p.Float("value")
		if err != nil {
			return nil, err
		}
		return Constant(v), nil
	})
	r.RegisterScorer("linear", linearScorer)
	r.RegisterScorer("fuzzy_flee", func(bb *blackboard.Blackboard, _ Params) (Scorer, error) {
		return FuzzyFleeScore(bb), nil
	})
	r.RegisterScorer("fuzzy_attack", func(bb *blackboard.Blackboard, _ Params) (Scorer, error) {
		return FuzzyAttackScore(bb), nil
	})
	r.RegisterScorer("fuzzy_patch_up", func(bb *blackboard.Blackboard, _ Params) (Scorer, error) {
		return FuzzyPatchUpScore(bb), nil
	})
	r.RegisterScorer("hive_attack", func(bb *blackboard.Blackboard, p Params) (Scorer, error) {
		hv, err := hiveParams(p, "attack_radius")
		if err != nil {
			return nil, err
		}
		return HiveAttackScore(bb, hv), nil
	})
	r.RegisterScorer("hive_return", func(bb *blackboard.Blackboard, p Params) (Scorer, error) {
		hv, err := hiveParams(p, "ally_radius")
		if err != nil {
			return nil, err
		}
		return HiveReturnScore(bb, hv), nil
	})
}

// linearScorer is bias + slope*key, optionally clamped from below by floor.
func linearScorer(bb *blackboard.Blackboard, p Params) (Scorer, error) {
	key, err := p.String("key")
	if err != nil {
		return nil, err
	}
	bias, err := p.FloatOr("bias", 0)
	if err != nil {
		return nil, err
	}
	slope, err := p.FloatOr("slope", 1)
	if err != nil {
		return nil, err
	}
	floor, err := p.FloatOr("floor", math.Inf(-1))
	if err != nil {
		return nil, err
	}
	h := blackboard.Register[float64](bb, key)
	return func(bb *blackboard.Blackboard) float64 {
		return math.Max(floor, bias+slope*blackboard.Get(bb, h))
	}, nil
}

func hiveParams(p Params, radius string) (HiveParams, error) {
	var hv HiveParams
	r, err := p.Float(radius)
	if err != nil {
		return hv, err
	}
	if hv.BaseRadius1, err = p.Float("base_radius1"); err != nil {
		return hv, err
	}
	if hv.BaseRadius2, err = p.Float("base_radius2"); err != nil {
		return hv, err
	}
	if hv.BaseRadius1 == hv.BaseRadius2 {
		return hv, fmt.Errorf("base radii must differ, got %g", hv.BaseRadius1)
	}
	if r <= 0 {
		return hv, fmt.Errorf("param %q must be positive", radius)
	}
	hv.AttackRadius, hv.AllyRadius = r, r
	return hv, nil
}
