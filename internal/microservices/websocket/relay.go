package websocket

import (
	"bytes"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Engine decides who receives a frame and fans it out.
type Engine struct {
	registry *Registry
	logger   *slog.Logger

	// failureLog rate-limits relay_send_failed; skipped lines are counted
	// in suppressed and reported with the next line that gets through.
	failureLog *rate.Limiter
	suppressed atomic.Int64

	// evict is called for recipients whose transport is unusable.
	evict func(Session)
}

// constructor for Engine
func NewEngine(registry *Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry:   registry,
		logger:     logger,
		failureLog: rate.NewLimiter(rate.Limit(10), 20), // 10 lines/sec with burst of 20
		evict: func(s Session) {
			_ = s.Close()
		},
	}
}

// RelayToOpposite forwards payload from sender to every other open session
// whose declared role differs from the sender's. It returns the number of
// successful deliveries.
//
// A sender without a role has no opposite. Its binary frames still go to
// every other open session (degraded broadcast) while its signaling frames
// are dropped. This asymmetry is intentional: deployed vehicles stream
// video before they declare a role.
func (e *Engine) RelayToOpposite(sender Session, payload []byte, kind Kind) int {
	senderID := sender.ID()
	senderRole, hasRole := e.registry.RoleOf(senderID)
	if !hasRole && kind == KindSignaling {
		e.logger.Debug("relay_dropped_no_role",
			"client_id", senderID,
			"kind", kind.String(),
		)
		return 0
	}

	var recipients []Session
	for s := range e.registry.AllSessions() {
		if s.ID() == senderID || !s.IsOpen() {
			continue
		}
		if hasRole {
			role, ok := e.registry.RoleOf(s.ID())
			if !ok || role == senderRole {
				continue
			}
		}
		recipients = append(recipients, s)
	}

	delivered := e.deliver(recipients, payload, kind)
	e.logger.Debug("relay_complete",
		"client_id", senderID,
		"role", senderRole,
		"kind", kind.String(),
		"bytes", len(payload),
		"recipients", len(recipients),
		"delivered", delivered,
	)
	return delivered
}

// BroadcastToAll sends payload as a binary frame to every registered open
// session regardless of role.
func (e *Engine) BroadcastToAll(payload []byte) int {
	var recipients []Session
	for s := range e.registry.AllSessions() {
		if s.IsOpen() {
			recipients = append(recipients, s)
		}
	}

	delivered := e.deliver(recipients, payload, KindBinary)
	e.logger.Debug("broadcast_complete",
		"bytes", len(payload),
		"recipients", len(recipients),
		"delivered", delivered,
	)
	return delivered
}

// deliver sends to each recipient in its own goroutine so a slow peer only
// costs its own write deadline, then waits for all of them.
func (e *Engine) deliver(recipients []Session, payload []byte, kind Kind) int {
	var wg sync.WaitGroup
	var delivered atomic.Int64

	for _, s := range recipients {
		wg.Add(1)
		go func(s Session) {
			defer wg.Done()
			if err := send(s, payload, kind); err != nil {
				e.handleSendFailure(s, kind, err)
				return
			}
			delivered.Add(1)
		}(s)
	}

	wg.Wait()
	return int(delivered.Load())
}

func send(s Session, payload []byte, kind Kind) error {
	if kind == KindBinary {
		// every recipient gets its own buffer
		return s.SendBinary(bytes.Clone(payload))
	}
	return s.SendText(payload)
}

func (e *Engine) handleSendFailure(s Session, kind Kind, err error) {
	failure := ClassifySendError(err)

	if e.failureLog.Allow() {
		e.logger.Warn("relay_send_failed",
			"client_id", s.ID(),
			"kind", kind.String(),
			"failure", failure.String(),
			"error", err.Error(),
			"suppressed", e.suppressed.Swap(0),
		)
	} else {
		e.suppressed.Add(1)
	}

	if failure.TransportUnusable() {
		e.logger.Info("closing_unusable_client",
			"client_id", s.ID(),
			"failure", failure.String(),
		)
		e.evict(s)
	}
}
