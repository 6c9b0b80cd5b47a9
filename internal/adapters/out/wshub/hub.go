// Package wshub pushes notifications to websocket sessions of clients, drivers and
// admins connected to this process.
//
// Sessions connect with GET /ws?role=<client|driver|admin>&id=<uuid>. A party may hold
// several sessions; each receives every frame addressed to it. Admin sessions receive
// all admin frames whatever their id. Frames to parties without a session are dropped.
package wshub

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"relocation/internal/adapters/out/events"
	"relocation/internal/core/domain/model/intent"
	"relocation/internal/core/domain/model/kernel"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var ErrInvalidSession = errors.New("invalid websocket session parameters")

// Frame is the JSON message written to a websocket.
type Frame struct {
	Kind    string         `json:"kind"`
	JobID   string         `json:"jobId"`
	Payload intent.Payload `json:"payload,omitempty"`
}

type sessionKey struct {
	audience intent.Audience
	id       string
}

type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

// Hub is the registry of live sessions. It implements ports.Notifier and http.Handler.
type Hub struct {
	mu       sync.RWMutex
	sessions map[sessionKey]map[*session]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[sessionKey]map[*session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With("component", "ws_hub"),
	}
}

func (h *Hub) PushOffer(ctx context.Context, jobID kernel.UUID, driverIDs []kernel.UUID) error {
	return h.Deliver(ctx, events.Offer(jobID, driverIDs))
}

func (h *Hub) PushUpdate(ctx context.Context, jobID kernel.UUID, audience intent.Audience, payload intent.Payload) error {
	return h.Deliver(ctx, events.Update(jobID, audience, payload))
}

// Deliver writes the envelope to every local session it is addressed to and joins the
// write errors.
func (h *Hub) Deliver(ctx context.Context, e events.Envelope) error {
	if err := e.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(Frame{Kind: e.Kind, JobID: e.JobID, Payload: e.Payload})
	if err != nil {
		return err
	}

	var writeErrs []error
	for _, s := range h.targets(e) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.write(websocket.TextMessage, data); err != nil {
			writeErrs = append(writeErrs, err)
		}
	}
	return errors.Join(writeErrs...)
}

// Sessions returns the number of live sessions of a party.
func (h *Hub) Sessions(audience intent.Audience, id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[keyFor(audience, id)])
}

// ServeHTTP upgrades the request and keeps the session registered until the peer goes
// away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, err := parseSession(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed", "error", err)
		return
	}

	s := &session{conn: conn}
	h.register(key, s)
	h.logger.DebugContext(r.Context(), "Websocket session opened", "role", key.audience, "id", key.id)

	done := make(chan struct{})
	go h.ping(s, done)

	h.read(s)

	close(done)
	h.unregister(key, s)
	_ = conn.Close()
	h.logger.DebugContext(r.Context(), "Websocket session closed", "role", key.audience, "id", key.id)
}

// read drains incoming frames until the connection fails. Sessions are push only.
func (h *Hub) read(s *session) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Websocket closed unexpectedly", "error", err)
			}
			return
		}
	}
}

func (h *Hub) ping(s *session, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) targets(e events.Envelope) []*session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	keys := []sessionKey{keyFor(intent.AudienceAdmin, "")}
	if e.Audience != intent.AudienceAdmin {
		keys = keys[:0]
		for _, r := range e.Recipients {
			keys = append(keys, keyFor(e.Audience, r))
		}
	}

	var out []*session
	for _, k := range keys {
		for s := range h.sessions[k] {
			out = append(out, s)
		}
	}
	return out
}

func (h *Hub) register(key sessionKey, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[key]
	if !ok {
		set = make(map[*session]struct{})
		h.sessions[key] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) unregister(key sessionKey, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.sessions[key]
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, key)
	}
}

func keyFor(audience intent.Audience, id string) sessionKey {
	if audience == intent.AudienceAdmin {
		return sessionKey{audience: audience}
	}
	return sessionKey{audience: audience, id: id}
}

func parseSession(r *http.Request) (sessionKey, error) {
	q := r.URL.Query()
	audience := intent.Audience(q.Get("role"))

	switch audience {
	case intent.AudienceAdmin:
		return keyFor(audience, ""), nil
	case intent.AudienceClient, intent.AudienceDriver:
		id, err := kernel.UUIDFromString(q.Get("id"))
		if err != nil {
			return sessionKey{}, errors.Join(ErrInvalidSession, err)
		}
		return keyFor(audience, id.String()), nil
	default:
		return sessionKey{}, ErrInvalidSession
	}
}
