package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/npcmind/internal/arena"
	"github.com/zeusync/npcmind/internal/config"
	"github.com/zeusync/npcmind/internal/core/engine"
	"github.com/zeusync/npcmind/internal/core/observability/log"
	"github.com/zeusync/npcmind/internal/feed"
	"github.com/zeusync/npcmind/pkg/rng"
)

// Server runs a scenario turn by turn and streams every turn to spectators.
type Server struct {
	config Config
	logger log.Log

	world      *arena.World
	engine     *engine.Engine
	feed       *feed.Server
	deployment *config.Deployment

	running int32 // atomic bool
	closed  int32 // atomic bool
	turns   int64 // atomic

	cancel      context.CancelFunc
	done        chan struct{}
	workerGroup sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// Config holds server configuration
type Config struct {
	Scenario *config.Scenario
	// BaseDir resolves relative tree files of the scenario.
	BaseDir string
	// TickInterval paces turns; zero runs them back to back.
	TickInterval time.Duration
}

// NewServer spawns the scenario into a fresh world.
func NewServer(cfg Config, logger log.Log) (*Server, error) {
	if cfg.Scenario == nil {
		return nil, fmt.Errorf("%w: no scenario", ErrInvalidConfig)
	}
	if cfg.TickInterval < 0 {
		return nil, fmt.Errorf("%w: negative tick interval", ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	sc := cfg.Scenario

	s := &Server{
		config: cfg,
		logger: logger.With(log.String("component", "server"), log.String("scenario", sc.Name)),
		done:   make(chan struct{}),
	}

	s.world = arena.New(arena.WithLogCapacity(sc.Engine.LogCapacity), arena.WithLogger(logger.Named("arena")))
	s.engine = engine.New(engine.WithLogger(logger), engine.WithSensorWorkers(sc.Engine.SensorWorkers))
	s.feed = feed.NewServer(feed.NewHub(logger), sc.Feed.WebSocket, sc.Feed.QUIC, logger)

	d, err := sc.Deploy(s.world, s.engine, rng.New(sc.Seed), cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("deploy scenario %s: %w", sc.Name, err)
	}
	s.deployment = d

	s.logger.Info("Server created",
		log.String("run_id", s.engine.RunID()),
		log.Int("agents", s.engine.Len()),
		log.Int("turns", sc.Turns))
	return s, nil
}

func (s *Server) World() *arena.World            { return s.world }
func (s *Server) Engine() *engine.Engine         { return s.engine }
func (s *Server) Deployment() *config.Deployment { return s.deployment }
func (s *Server) Hub() *feed.Hub                 { return s.feed.Hub }

// Turns is the number of turns resolved so far.
func (s *Server) Turns() int { return int(atomic.LoadInt64(&s.turns)) }

// Done is closed when the turn loop of the current run exits.
func (s *Server) Done() <-chan struct{} {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.done
}

// Err is the error that ended the run, if any.
func (s *Server) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Start starts the feed and the turn loop in the background.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server", log.Int("turns", s.Turns()))
	ctx, s.cancel = context.WithCancel(ctx)

	s.errMu.Lock()
	select {
	case <-s.done:
		// restart after a finished run
		s.done = make(chan struct{})
		s.err = nil
	default:
	}
	done := s.done
	s.errMu.Unlock()

	if s.feed.Enabled() {
		s.workerGroup.Add(1)
		go func() {
			defer s.workerGroup.Done()
			if err := s.feed.Run(ctx); err != nil {
				s.logger.Error("Feed stopped", log.Error(err))
				s.setErr(err)
				s.cancel()
			}
		}()
	}

	s.workerGroup.Add(1)
	go func() {
		defer s.workerGroup.Done()
		defer close(done)
		if err := s.loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.setErr(err)
		}
	}()
	return nil
}

// Stop cancels the run and waits for the workers.
func (s *Server) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}
	s.logger.Info("Stopping server")
	s.cancel()
	s.workerGroup.Wait()
	s.logger.Info("Server stopped", log.Int("turns", s.Turns()))
	return s.Err()
}

// Close stops the server if needed. Further Starts fail.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if atomic.LoadInt32(&s.running) == 1 {
		return s.Stop()
	}
	return nil
}

func (s *Server) loop(ctx context.Context) error {
	var tick <-chan time.Time
	if s.config.TickInterval > 0 {
		ticker := time.NewTicker(s.config.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for s.Turns() < s.config.Scenario.Turns {
		if s.engine.Len() == 0 {
			s.logger.Info("No agents left")
			return nil
		}
		if _, err := s.Step(ctx); err != nil {
			return err
		}
		if tick == nil {
			continue
		}
		select {
		case <-tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.logger.Info("Scenario finished", log.Int("turns", s.Turns()))
	return nil
}

// Step runs one decision pass, resolves it and publishes the frame.
// Agent failures are logged; the pass still resolves.
func (s *Server) Step(ctx context.Context) (feed.Frame, error) {
	report, err := s.engine.Pass(ctx, s.world)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return feed.Frame{}, ctxErr
	}
	if err != nil {
		s.logger.Warn("Decision pass had failures", log.Int("pass", report.Pass), log.Error(err))
	}

	outcome := s.world.Resolve(report.Intents)
	atomic.AddInt64(&s.turns, 1)

	frame := feed.NewFrame(report, outcome, s.world)
	if err := s.feed.Publish(frame); err != nil {
		s.logger.Error("Failed to publish frame", log.Error(err))
	}
	for _, id := range outcome.Killed {
		s.logger.Info("Agent killed", log.Int("turn", outcome.Turn), log.Uint64("agent_id", uint64(id)))
	}
	return frame, nil
}

func (s *Server) setErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}
