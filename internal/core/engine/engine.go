package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/zeusync/npcmind/internal/core/events/bus"
	"github.com/zeusync/npcmind/internal/core/fsm"
	"github.com/zeusync/npcmind/internal/core/npc"
	"github.com/zeusync/npcmind/internal/core/observability/log"
	"github.com/zeusync/npcmind/internal/core/sensor"
	"github.com/zeusync/npcmind/internal/core/world"
)

var (
	ErrDuplicateAgent = errors.New("engine: agent already registered")
	ErrNoDecider      = errors.New("engine: agent has neither a machine nor a tree")
)

// tickDelta is the dt handed to state machines; one pass is one turn.
const tickDelta = 1.0

type Option func(*Engine)

func WithLogger(l log.Log) Option { return func(e *Engine) { e.logger = l } }

func WithBus(b bus.EventBus) Option { return func(e *Engine) { e.bus = b } }

func WithSensorWorkers(n int) Option { return func(e *Engine) { e.phase = sensor.NewPhase(n) } }

// Engine runs decision passes over its agents. A pass is not safe for
// concurrent use; agents are visited one at a time in ascending id order.
type Engine struct {
	runID  string
	agents map[world.EntityID]*Agent
	order  []world.EntityID
	phase  *sensor.Phase
	bus    bus.EventBus
	queue  *bus.Queue
	logger log.Log
	passes int

	// set for the duration of a pass
	query   world.Query
	intents world.IntentSet
}

func New(opts ...Option) *Engine {
	e := &Engine{
		runID:  uuid.NewString(),
		agents: make(map[world.EntityID]*Agent),
		phase:  sensor.NewPhase(1),
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = bus.New()
	}
	e.queue = bus.NewQueue(e.bus)
	e.logger = e.logger.Named("engine").With(log.String("run_id", e.runID))
	return e
}

func (e *Engine) RunID() string { return e.runID }

func (e *Engine) Passes() int { return e.passes }

// Add registers an agent. Agents with a tree receive reactions addressed to them.
func (e *Engine) Add(a *Agent) error {
	if a.Machine == nil && a.Tree == nil {
		return fmt.Errorf("add %s: %w", a.Label(), ErrNoDecider)
	}
	if _, ok := e.agents[a.ID]; ok {
		return fmt.Errorf("add %s: %w", a.Label(), ErrDuplicateAgent)
	}
	if a.Tree != nil {
		sub, err := e.bus.SubscribeTopic(topic(a.ID), npc.EnemyIsNear.String(), e.reactionHandler(a))
		if err != nil {
			return fmt.Errorf("add %s: %w", a.Label(), err)
		}
		a.sub = sub
	}
	e.agents[a.ID] = a
	idx := sort.Search(len(e.order), func(i int) bool { return e.order[i] >= a.ID })
	e.order = append(e.order, 0)
	copy(e.order[idx+1:], e.order[idx:])
	e.order[idx] = a.ID
	return nil
}

// Remove drops an agent and its reaction subscription.
func (e *Engine) Remove(id world.EntityID) {
	a, ok := e.agents[id]
	if !ok {
		return
	}
	_ = e.bus.Unsubscribe(a.sub)
	delete(e.agents, id)
	idx := sort.Search(len(e.order), func(i int) bool { return e.order[i] >= id })
	if idx < len(e.order) && e.order[idx] == id {
		e.order = append(e.order[:idx], e.order[idx+1:]...)
	}
}

func (e *Engine) Agent(id world.EntityID) (*Agent, bool) {
	a, ok := e.agents[id]
	return a, ok
}

// Agents returns the agents in pass order.
func (e *Engine) Agents() []*Agent {
	out := make([]*Agent, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.agents[id])
	}
	return out
}

func (e *Engine) Len() int { return len(e.order) }

// Notify queues a reaction for delivery once the current agent is done.
func (e *Engine) Notify(r npc.Reaction) {
	e.queue.Enqueue(topic(r.Target), bus.NewEvent(r.Event.String(), topic(r.Source), r))
}

func (e *Engine) reactionHandler(a *Agent) bus.EventHandler {
	return func(ev bus.Event) (err error) {
		defer recoverViolation(a.Label(), &err)
		r, ok := ev.Data().(npc.Reaction)
		if !ok {
			return fmt.Errorf("reaction for %s: unexpected payload %T", a.Label(), ev.Data())
		}
		if e.query == nil || !e.query.Alive(a.ID) {
			return nil
		}
		st := a.Tree.Receive(r, e.treeContext(a))
		e.logger.Debug("reaction delivered",
			log.Uint64("source", uint64(r.Source)),
			log.Uint64("target", uint64(a.ID)),
			log.Stringer("event", r.Event),
			log.Stringer("status", st),
		)
		return nil
	}
}

func (e *Engine) treeContext(a *Agent) *npc.Context {
	return &npc.Context{
		World:      e.query,
		Self:       a.ID,
		Blackboard: a.Blackboard,
		Actions:    e.intents,
		Reactions:  e,
	}
}

// Pass senses every agent against q, then lets each agent decide. Intents
// are collected, never applied: q is expected to stay unchanged for the
// whole pass. Contract violations of one agent are returned as errors and
// do not stop the others.
func (e *Engine) Pass(ctx context.Context, q world.Query) (Report, error) {
	e.passes++
	report := newReport(e.runID, e.passes)
	e.query, e.intents = q, report.Intents
	defer func() { e.query, e.intents = nil, nil }()

	for _, id := range append([]world.EntityID(nil), e.order...) {
		if !q.Alive(id) {
			e.Remove(id)
			report.Removed = append(report.Removed, id)
		}
	}

	var errs []error
	targets := make([]sensor.Target, 0, len(e.order))
	for _, id := range e.order {
		a := e.agents[id]
		if len(a.Sensors) > 0 {
			targets = append(targets, sensor.Target{ID: id, Blackboard: a.Blackboard, Sensors: a.Sensors})
		}
	}
	if err := e.phase.Run(ctx, q, targets); err != nil {
		e.logger.Warn("sensor phase failed", log.Error(err))
		errs = append(errs, err)
	}

	for _, id := range e.order {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		a := e.agents[id]
		if err := e.step(a, &report); err != nil {
			e.queue.Discard()
			e.logger.Warn("agent step failed", log.String("agent", a.Label()), log.Error(err))
			errs = append(errs, err)
			continue
		}
		n, err := e.queue.Drain()
		report.Reactions += n
		if err != nil {
			e.logger.Warn("reaction delivery failed", log.String("source", a.Label()), log.Error(err))
			errs = append(errs, err)
		}
	}

	e.logger.Debug("pass complete",
		log.Int("pass", report.Pass),
		log.Int("agents", len(e.order)),
		log.Int("intents", len(report.Intents)),
		log.Int("reactions", report.Reactions),
		log.Int("removed", len(report.Removed)),
	)
	return report, errors.Join(errs...)
}

// step runs the deciders of a. Delivery of the reactions it queued is
// left to the caller so a failing receiver is not blamed on a.
func (e *Engine) step(a *Agent, report *Report) (err error) {
	defer recoverViolation(a.Label(), &err)

	if a.Machine != nil {
		a.Machine.Act(tickDelta, fsm.Context{World: e.query, Self: a.ID, Actions: e.intents})
		report.States[a.ID] = a.Machine.StateName()
	}
	if a.Tree != nil {
		report.Statuses[a.ID] = a.Tree.Update(e.treeContext(a))
	}
	return nil
}

// recoverViolation turns a contract violation panic into *err, labelled
// with the agent whose tree raised it. Other panics propagate.
func recoverViolation(label string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	if perr, ok := r.(error); ok && errors.Is(perr, npc.ErrContractViolation) {
		*err = fmt.Errorf("%s: %w", label, perr)
		return
	}
	panic(r)
}

func topic(id world.EntityID) string { return strconv.FormatUint(uint64(id), 10) }
