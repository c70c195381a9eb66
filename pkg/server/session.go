package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	navErrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/nav"
)

// ErrSessionClosed is returned when writing to a closed session.
var ErrSessionClosed = errors.New("server: session closed")

// Session is one websocket connection and the router it drives.
type Session struct {
	ID string

	conn    *websocket.Conn
	config  *ServerConfig
	router  *nav.Router
	history *SocketHistory
	base    *history.Base
	logger  *slog.Logger
	onError func(errorType string)

	writeMu sync.Mutex
	closed  atomic.Bool
	started bool
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

func generateSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "session"
	}
	return hex.EncodeToString(b)
}

// newSession wires a router to conn. The router starts on the client's
// hello message.
func (s *Server) newSession(ctx context.Context, conn *websocket.Conn) *Session {
	sess := &Session{
		ID:     generateSessionID(),
		conn:   conn,
		config: s.config,
		done:   make(chan struct{}),
	}
	sess.logger = s.logger.With("session_id", sess.ID)
	sess.ctx, sess.cancel = context.WithCancel(ctx)
	if s.metrics != nil {
		sess.onError = s.metrics.ProtocolError
	}

	sess.history = NewSocketHistory(sess.send)
	sess.base = history.WithBase(sess.history, s.config.Base)
	renderer := NewSocketRenderer(sess.send, s.views...)

	opts := []nav.Option{nav.WithLogger(sess.logger)}
	if s.config.NotFoundView != "" {
		opts = append(opts, nav.WithNotFoundView(s.config.NotFoundView))
	}
	if s.metrics != nil {
		opts = append(opts, nav.WithMiddleware(s.metrics))
	}
	opts = append(opts, s.navOptions...)
	sess.router = nav.New(s.table, sess.base, renderer, opts...)

	sess.router.Subscribe(func(ev nav.Event) {
		sess.send(ServerMessage{
			Op:    OpState,
			Path:  sess.base.Join(ev.To.Location()),
			View:  ev.To.ViewID,
			Index: ev.To.HistoryIndex,
		})
	})
	sess.router.OnFailure(func(f nav.Failure) {
		sess.sendError(navErrors.CodeOf(f.Err), f.Err.Error())
	})
	return sess
}

// Router returns the session's router.
func (s *Session) Router() *nav.Router {
	return s.router
}

// Run serves the connection until it closes.
func (s *Session) Run() {
	go s.heartbeat()
	s.readLoop()
}

func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.protocolError("decode", err)
			continue
		}
		if err := msg.Validate(); err != nil {
			s.protocolError("invalid", err)
			continue
		}
		s.handle(msg)
	}
}

func (s *Session) handle(msg ClientMessage) {
	if !s.started && msg.Type != TypeHello {
		s.protocolError("order", errors.New("expected hello before "+msg.Type))
		return
	}

	switch msg.Type {
	case TypeHello:
		if s.started {
			s.protocolError("order", errors.New("duplicate hello"))
			return
		}
		s.started = true
		s.history.Reset(history.Location{Path: msg.Path, Index: msg.Index})
		s.logger.Info("session started", "path", msg.Path)
		s.result(s.router.Start(s.ctx, s.base.Strip(msg.Path)))

	case TypeNavigate:
		var opts []nav.NavigateOption
		if msg.Replace {
			opts = append(opts, nav.Replace())
		}
		s.result(s.router.Navigate(s.ctx, msg.Path, opts...))

	case TypeLocation:
		s.history.Pop(history.Location{Path: msg.Path, Index: msg.Index})

	case TypeBack:
		s.result(s.router.Back())

	case TypeForward:
		s.result(s.router.Forward())
	}
}

// result handles a router error. Failed navigations reach the client
// through the failure listener.
func (s *Session) result(err error) {
	switch {
	case err == nil:
	case errors.Is(err, nav.ErrSuperseded):
		s.logger.Debug("navigation superseded", "error", err)
	case navErrors.CodeOf(err) != "":
	default:
		s.logger.Warn("navigation error", "error", err)
	}
}

func (s *Session) protocolError(errorType string, err error) {
	s.logger.Warn("invalid client message", "type", errorType, "error", err)
	if s.onError != nil {
		s.onError(errorType)
	}
	s.sendError(navErrors.CodeInvalidMessage, err.Error())
}

func (s *Session) sendError(code, message string) {
	s.send(ServerMessage{Op: OpError, Code: code, Message: message})
}

// send writes one message. It is safe for concurrent use.
func (s *Session) send(msg ServerMessage) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Error("write error", "op", msg.Op, "error", err)
		return err
	}
	return nil
}

// heartbeat pings the client until the session closes.
func (s *Session) heartbeat() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping error", "error", err)
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close ends the session and its router.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)
	s.cancel()
	s.router.Close()

	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.conn.Close()

	st := s.router.State()
	s.logger.Info("session closed", "path", st.Location(), "view", string(st.ViewID))
}
