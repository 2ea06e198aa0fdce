package feed

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/npcmind/internal/core/observability/log"
)

// ALPN is the application protocol spectators negotiate over QUIC.
const ALPN = "npcmind-feed"

// GenerateSelfSignedTLS returns a server config valid for localhost.
func GenerateSelfSignedTLS() (*tls.Config, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key")
	}

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"npcmind"}},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:              []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{certDER}, PrivateKey: privateKey}},
		NextProtos:   []string{ALPN},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// QUIC streams frames as newline-delimited JSON, one unidirectional
// stream per spectator connection.
type QUIC struct {
	hub    *Hub
	logger log.Log
	tls    *tls.Config
	conf   *quic.Config
	ln     *quic.Listener
	wg     sync.WaitGroup
}

func NewQUIC(hub *Hub, tlsConf *tls.Config, logger log.Log) *QUIC {
	if logger == nil {
		logger = log.NewNop()
	}
	return &QUIC{
		hub:    hub,
		logger: logger.With(log.String("transport", "quic")),
		tls:    tlsConf,
		conf: &quic.Config{
			MaxIdleTimeout:        time.Minute,
			KeepAlivePeriod:       pingPeriod,
			MaxIncomingStreams:    1,
			MaxIncomingUniStreams: 1,
		},
	}
}

func (s *QUIC) Listen(addr string) error {
	if s.tls == nil {
		conf, err := GenerateSelfSignedTLS()
		if err != nil {
			return err
		}
		s.tls = conf
	}
	ln, err := quic.ListenAddr(addr, s.tls, s.conf)
	if err != nil {
		return errors.Wrap(err, "failed to start QUIC listener")
	}
	s.ln = ln
	s.logger.Info("quic feed listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address; nil before Listen.
func (s *QUIC) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts spectators until ctx is done, then waits for their
// writers to finish.
func (s *QUIC) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("quic feed is not listening")
	}
	defer s.wg.Wait()
	defer func() { _ = s.ln.Close() }()

	for {
		conn, err := s.ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "failed to accept QUIC connection")
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *QUIC) serveConn(ctx context.Context, conn *quic.Conn) {
	client := s.hub.Subscribe()
	defer s.hub.Unsubscribe(client)

	logger := s.logger.With(log.String("client_id", client.ID), log.String("remote", conn.RemoteAddr().String()))
	logger.Info("spectator connected")

	stream, err := conn.OpenUniStreamSync(ctx)
	if err != nil {
		logger.Error("failed to open stream", log.Error(err))
		_ = conn.CloseWithError(quic.ApplicationErrorCode(1), "stream failed")
		return
	}

	for {
		select {
		case data, ok := <-client.Frames():
			if !ok {
				_ = stream.Close()
				_ = conn.CloseWithError(quic.ApplicationErrorCode(0), "feed closed")
				return
			}
			line := make([]byte, len(data)+1)
			copy(line, data)
			line[len(data)] = '\n'
			if _, err := stream.Write(line); err != nil {
				logger.Warn("failed to send frame", log.Error(err))
				_ = conn.CloseWithError(quic.ApplicationErrorCode(1), "write failed")
				return
			}
		case <-conn.Context().Done():
			logger.Info("spectator disconnected")
			return
		case <-ctx.Done():
			_ = stream.Close()
			_ = conn.CloseWithError(quic.ApplicationErrorCode(0), "server shutting down")
			return
		}
	}
}
