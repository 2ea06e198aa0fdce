package feed

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/npcmind/internal/core/observability/log"
)

const (
	pingPeriod   = 30 * time.Second
	writeTimeout = 10 * time.Second
	readLimit    = 512
)

// WebSocket serves frames to browsers on /ws.
type WebSocket struct {
	hub      *Hub
	logger   log.Log
	upgrader websocket.Upgrader
}

func NewWebSocket(hub *Hub, logger log.Log) *WebSocket {
	if logger == nil {
		logger = log.NewNop()
	}
	return &WebSocket{
		hub:    hub,
		logger: logger.With(log.String("transport", "websocket")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *WebSocket) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe blocks until ctx is done or the listener fails.
func (s *WebSocket) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "failed to start websocket listener")
	}
	return s.Serve(ctx, ln)
}

func (s *WebSocket) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: writeTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("websocket feed listening", log.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "websocket server failed")
	}
	return nil
}

func (s *WebSocket) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	client := s.hub.Subscribe()
	defer s.hub.Unsubscribe(client)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", log.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	s.logger.Info("spectator connected", log.String("client_id", client.ID))

	// Spectators never send data; reading only services control frames.
	done := make(chan struct{})
	conn.SetReadLimit(readLimit)
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Error("websocket error", log.Error(err))
				}
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case data, ok := <-client.Frames():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"),
					time.Now().Add(writeTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Warn("failed to send frame", log.String("client_id", client.ID), log.Error(err))
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout)); err != nil {
				s.logger.Error("failed to send ping", log.Error(err))
				return
			}
		case <-done:
			s.logger.Info("spectator disconnected", log.String("client_id", client.ID))
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *WebSocket) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
		Stats
	}{Status: "healthy", Stats: s.hub.Stats()})
}
