package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/romanzzaa/mod-auth/internal/domain"
)

const (
	pingInterval = 20 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

// keysMessage - то, что сервер пушит в браузер
type keysMessage struct {
	Type string           `json:"type"`
	Keys []domain.KeyView `json:"keys"`
}

// clientMessage - команды от страницы: refresh, ping
type clientMessage struct {
	Op string `json:"op"`
}

// streamConn - одно websocket соединение. Писать в conn можно только под mu.
type streamConn struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	logger *slog.Logger
}

func (c *streamConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *streamConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &streamConn{conn: conn, logger: s.logger}
	events, unsubscribe := s.svc.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		unsubscribe()
		conn.Close()
	}()

	if err := s.pushKeys(ctx, c); err != nil {
		return
	}

	go s.heartbeat(ctx, c)
	go s.forwardEvents(ctx, c, events)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Цикл чтения
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Websocket read error", slog.String("error", err.Error()))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Op {
		case "refresh":
			if err := s.pushKeys(ctx, c); err != nil {
				return
			}
		case "ping":
			if err := c.writeJSON(clientMessage{Op: "pong"}); err != nil {
				return
			}
		}
	}
}

func (s *Server) forwardEvents(ctx context.Context, c *streamConn, events <-chan domain.KeysChangedEvent) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			if err := s.pushKeys(ctx, c); err != nil {
				c.conn.Close()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) heartbeat(ctx context.Context, c *streamConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				s.logger.Warn("Websocket ping failed", slog.String("error", err.Error()))
				c.conn.Close()
				return
			}
		}
	}
}

func (s *Server) pushKeys(ctx context.Context, c *streamConn) error {
	views, err := s.svc.Views(ctx)
	if err != nil {
		s.logger.Error("failed to load keys", slog.String("error", err.Error()))
		return err
	}
	return c.writeJSON(keysMessage{Type: "keys", Keys: views})
}
