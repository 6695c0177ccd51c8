package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/outlet/pkg/boundary"
	"github.com/vango-dev/outlet/pkg/middleware"
	"github.com/vango-dev/outlet/pkg/navigation"
	"github.com/vango-dev/outlet/pkg/route"
)

// ClientMessage asks for a client transition or submission.
type ClientMessage struct {
	// Seq is echoed in the reply.
	Seq int64 `json:"seq"`

	// Path may carry a query string.
	Path   string     `json:"path"`
	Method string     `json:"method,omitempty"`
	Form   url.Values `json:"form,omitempty"`
}

// ServerMessage answers a ClientMessage. Superseded navigations get no
// reply.
type ServerMessage struct {
	Seq   int64          `json:"seq"`
	Plan  *boundary.Plan `json:"plan,omitempty"`
	Error string         `json:"error,omitempty"`
}

type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	timeout time.Duration

	closeOnce sync.Once
}

func (c *wsConn) send(msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) close() {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.conn.Close()
	})
}

// HandleWebSocket upgrades the connection and runs client transitions on a
// navigator owned by the connection. Each message starts a navigation that
// supersedes the one in flight.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	var header http.Header
	key := ""
	if s.config.Store != nil {
		if c, err := r.Cookie(s.config.CookieName); err == nil {
			key = c.Value
		}
		if _, err := uuid.Parse(key); err != nil {
			key = uuid.NewString()
			cookie := &http.Cookie{Name: s.config.CookieName, Value: key, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
			header = http.Header{"Set-Cookie": []string{cookie.String()}}
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		middleware.RecordWebSocketError("upgrade")
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &wsConn{conn: conn, timeout: s.config.WSWriteTimeout}
	s.track(c, true)
	middleware.RecordWebSocketOpen()
	defer func() {
		s.track(c, false)
		c.close()
		middleware.RecordWebSocketClose()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	var inflight sync.WaitGroup
	defer func() {
		cancel()
		inflight.Wait()
	}()

	nav := s.navigator(key)
	if err := nav.Restore(ctx); err != nil {
		s.logger.Warn("restore failed", "error", err)
	}

	conn.SetReadLimit(s.config.MaxMessageSize)
	for {
		conn.SetReadDeadline(time.Now().Add(s.config.WSReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				middleware.RecordWebSocketError("read")
				s.logger.Error("read error", "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Path == "" {
			middleware.RecordWebSocketError("decode")
			c.send(ServerMessage{Seq: msg.Seq, Error: "invalid message"})
			continue
		}

		// Start in read order so a later message always supersedes an
		// earlier one; only the loaders run concurrently.
		pending := nav.Start(ctx, transitionRequest(msg))
		inflight.Add(1)
		go func(msg ClientMessage) {
			defer inflight.Done()
			s.transition(ctx, c, pending, msg)
		}(msg)
	}
}

func transitionRequest(msg ClientMessage) *route.Request {
	req := &route.Request{Method: msg.Method, Path: msg.Path, Form: msg.Form}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	return req
}

func (s *Server) transition(ctx context.Context, c *wsConn, pending *navigation.Pending, msg ClientMessage) {
	plan, err := pending.Wait()
	switch {
	case errors.Is(err, navigation.ErrSuperseded), ctx.Err() != nil:
		return
	case err != nil:
		s.logger.Error("navigation failed", "path", msg.Path, "error", err)
		err = c.send(ServerMessage{Seq: msg.Seq, Error: "navigation failed"})
	default:
		err = c.send(ServerMessage{Seq: msg.Seq, Plan: plan})
	}
	if err != nil {
		middleware.RecordWebSocketError("write")
		s.logger.Debug("websocket write failed", "error", err)
	}
}

func (s *Server) track(c *wsConn, open bool) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if open {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}
