package feed

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/npcmind/internal/core/observability/log"
)

// Server runs the configured spectator transports over one Hub.
type Server struct {
	Hub       *Hub
	websocket *WebSocket
	wsAddr    string
	quic      *QUIC
	quicAddr  string
}

// NewServer wires a transport for every non-empty address.
func NewServer(hub *Hub, wsAddr, quicAddr string, logger log.Log) *Server {
	s := &Server{Hub: hub, wsAddr: wsAddr, quicAddr: quicAddr}
	if wsAddr != "" {
		s.websocket = NewWebSocket(hub, logger)
	}
	if quicAddr != "" {
		s.quic = NewQUIC(hub, nil, logger)
	}
	return s
}

// Enabled reports whether any transport is configured.
func (s *Server) Enabled() bool { return s.websocket != nil || s.quic != nil }

// Publish forwards to the hub.
func (s *Server) Publish(f Frame) error { return s.Hub.Publish(f) }

// Run blocks until ctx is done or a transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.quic != nil {
		if err := s.quic.Listen(s.quicAddr); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if s.websocket != nil {
		g.Go(func() error { return s.websocket.ListenAndServe(ctx, s.wsAddr) })
	}
	if s.quic != nil {
		g.Go(func() error { return s.quic.Serve(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		s.Hub.Close()
		return nil
	})
	return g.Wait()
}
