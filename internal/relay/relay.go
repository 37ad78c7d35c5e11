// Package relay implements the realtime streaming proxy: it authenticates the
// first client frame, opens a secured connection to the vendor's bidi
// endpoint, and forwards JSON frames in both directions until either side
// closes.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Config holds the relay's listen and upstream settings.
type Config struct {
	Addr        string
	UpstreamURL string
	CertFile    string
	KeyFile     string
	AuthTimeout time.Duration
}

// Server accepts client websocket connections and pairs each with an
// upstream connection. Pairings share no state with each other.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	dialer   *websocket.Dialer
	logger   *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	httpServer *http.Server
}

// NewServer creates a relay server.
func NewServer(log *slog.Logger, cfg Config) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = 5 * time.Second
	}
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from arbitrary origins; the bearer
			// token is the actual access control.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		dialer: websocket.DefaultDialer,
		logger: log.With(slog.String("service", "relay")),
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler performing the websocket upgrade.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleUpgrade)
}

// ListenAndServe runs the relay until ctx is canceled. TLS is used when a
// cert/key pair is configured.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.CertFile != "" && s.cfg.KeyFile != "" {
			err = s.httpServer.ListenAndServeTLS(s.cfg.CertFile, s.cfg.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		errCh <- err
	}()

	s.logger.Info("relay listening",
		slog.String("addr", s.cfg.Addr),
		slog.Bool("tls", s.cfg.CertFile != ""))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		s.closeAll()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) track(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

type authFrame struct {
	BearerToken string `json:"bearer_token"`
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	client, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", slog.Any("error", err))
		return
	}
	s.track(client)
	defer func() {
		s.untrack(client)
		_ = client.Close()
	}()

	pairingID := uuid.NewString()
	log := s.logger.With(slog.String("pairing_id", pairingID))
	log.Info("client connected", slog.String("remote", client.RemoteAddr().String()))

	token, err := s.authenticate(client)
	if err != nil {
		switch {
		case errors.Is(err, ErrAuthRequired):
			closeWith(client, websocket.ClosePolicyViolation, "bearer token missing")
		case errors.Is(err, ErrAuthTimeout):
			closeWith(client, websocket.ClosePolicyViolation, "authentication timeout")
		default:
			closeWith(client, websocket.CloseInternalServerErr, "server error during handshake")
		}
		log.Warn("handshake rejected", slog.Any("error", err))
		return
	}

	upstream, err := s.dialUpstream(r.Context(), token)
	if err != nil {
		closeWith(client, websocket.CloseInternalServerErr, "upstream unavailable")
		log.Error("upstream dial failed", slog.Any("error", err))
		return
	}
	s.track(upstream)
	defer func() {
		s.untrack(upstream)
		_ = upstream.Close()
	}()

	log.Info("relaying", slog.String("upstream", s.cfg.UpstreamURL))
	s.relay(log, client, upstream)
	log.Info("pairing closed")
}

// authenticate reads exactly one frame within the auth timeout and extracts
// the bearer credential.
func (s *Server) authenticate(client *websocket.Conn) (string, error) {
	if err := client.SetReadDeadline(time.Now().Add(s.cfg.AuthTimeout)); err != nil {
		return "", err
	}
	_, data, err := client.ReadMessage()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", ErrAuthTimeout
		}
		return "", fmt.Errorf("read auth frame: %w", err)
	}
	// Clear the deadline for the relay phase.
	if err := client.SetReadDeadline(time.Time{}); err != nil {
		return "", err
	}

	var frame authFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return "", fmt.Errorf("decode auth frame: %w", err)
	}
	if frame.BearerToken == "" {
		return "", ErrAuthRequired
	}
	return frame.BearerToken, nil
}

func (s *Server) dialUpstream(ctx context.Context, token string) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+token)

	upstream, _, err := s.dialer.DialContext(ctx, s.cfg.UpstreamURL, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamConnect, err)
	}
	return upstream, nil
}

// relay runs both forwarding loops and tears the pairing down together: the
// loop that observes termination closes the other endpoint, unblocking its
// peer loop.
func (s *Server) relay(log *slog.Logger, client, upstream *websocket.Conn) {
	var once sync.Once
	teardown := func() {
		once.Do(func() {
			_ = client.Close()
			_ = upstream.Close()
		})
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer teardown()
		s.pump(log.With(slog.String("direction", "client_to_upstream")), client, upstream)
	}()
	go func() {
		defer wg.Done()
		defer teardown()
		s.pump(log.With(slog.String("direction", "upstream_to_client")), upstream, client)
	}()
	wg.Wait()
}

// pump forwards frames from src to dst until src closes or dst rejects a
// write. Frames are decoded and re-encoded as JSON; malformed frames are
// dropped without terminating the loop.
func (s *Server) pump(log *slog.Logger, src, dst *websocket.Conn) {
	for {
		_, data, err := src.ReadMessage()
		if err != nil {
			if !isExpectedClose(err) {
				log.Warn("read terminated", slog.Any("error", err))
			}
			return
		}

		var frame any
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Warn("dropping malformed frame", slog.Any("error", err))
			continue
		}
		encoded, err := json.Marshal(frame)
		if err != nil {
			log.Warn("dropping unencodable frame", slog.Any("error", err))
			continue
		}

		if err := dst.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := dst.WriteMessage(websocket.TextMessage, encoded); err != nil {
			log.Warn("write terminated", slog.Any("error", err))
			return
		}
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = conn.Close()
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) || errors.Is(err, net.ErrClosed)
}
