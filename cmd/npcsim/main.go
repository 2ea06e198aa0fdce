package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/zeusync/npcmind/internal/config"
	"github.com/zeusync/npcmind/internal/injector"
	"github.com/zeusync/npcmind/internal/server"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "examples/scenarios/squad.yaml", "scenario file")
		turns        = flag.Int("turns", 0, "override the number of turns")
		seed         = flag.Int64("seed", 0, "override the random seed")
		logLevel     = flag.String("log-level", "", "override the log level")
		wsAddr       = flag.String("ws", "", "override the websocket feed address")
		quicAddr     = flag.String("quic", "", "override the QUIC feed address")
		tick         = flag.Duration("tick", 0, "delay between turns")
		linger       = flag.Bool("linger", false, "keep the feed up after the last turn until interrupted")
	)
	flag.Parse()

	if err := run(*scenarioPath, overrides{
		turns: *turns, seed: *seed, logLevel: *logLevel,
		wsAddr: *wsAddr, quicAddr: *quicAddr,
	}, *tick, *linger); err != nil {
		fmt.Fprintln(os.Stderr, "npcsim:", err)
		os.Exit(1)
	}
}

type overrides struct {
	turns    int
	seed     int64
	logLevel string
	wsAddr   string
	quicAddr string
}

func (o overrides) apply(sc *config.Scenario) error {
	if o.turns > 0 {
		sc.Turns = o.turns
	}
	if o.seed != 0 {
		sc.Seed = o.seed
	}
	if o.logLevel != "" {
		sc.Log.Level = o.logLevel
	}
	if o.wsAddr != "" {
		sc.Feed.WebSocket = o.wsAddr
	}
	if o.quicAddr != "" {
		sc.Feed.QUIC = o.quicAddr
	}
	return sc.Validate()
}

func run(path string, o overrides, tick time.Duration, linger bool) error {
	sc, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if err := o.apply(sc); err != nil {
		return err
	}

	srv, err := injector.InitializeServer(server.Config{
		Scenario:     sc,
		BaseDir:      filepath.Dir(path),
		TickInterval: tick,
	})
	if err != nil {
		return err
	}
	defer func() { _ = srv.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopCh)

	if err := srv.Start(ctx); err != nil {
		return err
	}

	select {
	case <-stopCh:
	case <-srv.Done():
		if linger {
			<-stopCh
		}
	}
	cancel()
	return srv.Stop()
}
