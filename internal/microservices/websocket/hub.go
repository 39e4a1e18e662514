package websocket

import (
	"log/slog"
)

// Central hub driving the lifecycle of every connection.
// Each connection runs its own read goroutine and calls into the hub; all
// shared state lives in the Registry.

// ConnState is the lifecycle state of one connection.
type ConnState int

const (
	StateClosed       ConnState = iota // never opened or already closed
	StateOpenNoRole                    // registered, no role declared yet
	StateOpenWithRole                  // registered with a declared role
)

func (s ConnState) String() string {
	switch s {
	case StateOpenNoRole:
		return "OPEN_NO_ROLE"
	case StateOpenWithRole:
		return "OPEN_WITH_ROLE"
	default:
		return "CLOSED"
	}
}

type Hub struct {
	registry *Registry
	engine   *Engine
	logger   *slog.Logger
}

// NewHub wires the lifecycle callbacks to registry and engine. Recipients
// the engine finds unusable are closed and unregistered through the hub.
func NewHub(registry *Registry, engine *Engine, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		registry: registry,
		engine:   engine,
		logger:   logger,
	}
	engine.evict = h.evict
	return h
}

func (h *Hub) Registry() *Registry { return h.registry }
func (h *Hub) Engine() *Engine     { return h.engine }

// OnOpen registers a freshly established session.
func (h *Hub) OnOpen(s Session) {
	h.registry.Register(s)
}

// OnTextFrame handles one text frame: role declarations are consumed,
// everything else is relayed to the opposite role.
func (h *Hub) OnTextFrame(s Session, data []byte) {
	if !h.registry.Contains(s.ID()) {
		return // closed; late frames are ignored
	}

	msg, err := DecodeText(data)
	if err != nil {
		h.logger.Warn("invalid_json_received",
			"client_id", s.ID(),
			"error", err.Error(),
		)
		return
	}

	switch m := msg.(type) {
	case RoleDeclaration:
		h.registry.SetRole(s.ID(), m.Role)
	case SignalingMessage:
		h.engine.RelayToOpposite(s, m.Raw, KindSignaling)
	}
}

// OnBinaryFrame relays a binary frame to the opposite role, or to everyone
// when the sender has no role.
func (h *Hub) OnBinaryFrame(s Session, data []byte) {
	if !h.registry.Contains(s.ID()) {
		return
	}
	h.engine.RelayToOpposite(s, data, KindBinary)
}

// OnClose removes the session. It is safe to call more than once.
func (h *Hub) OnClose(s Session) {
	h.registry.Unregister(s)
}

// State reports the lifecycle state of the session with the given id.
func (h *Hub) State(id string) ConnState {
	if !h.registry.Contains(id) {
		return StateClosed
	}
	if _, ok := h.registry.RoleOf(id); ok {
		return StateOpenWithRole
	}
	return StateOpenNoRole
}

func (h *Hub) evict(s Session) {
	if err := s.Close(); err != nil {
		h.logger.Debug("client_close_failed",
			"client_id", s.ID(),
			"error", err.Error(),
		)
	}
	h.OnClose(s)
}
