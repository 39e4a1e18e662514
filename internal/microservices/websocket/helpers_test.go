package websocket

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSession records every frame sent to it.
type fakeSession struct {
	id      string
	open    atomic.Bool
	sendErr error // returned by every send when set

	mu       sync.Mutex
	texts    [][]byte
	binaries [][]byte
	closes   int
}

func newFakeSession(id string) *fakeSession {
	s := &fakeSession{id: id}
	s.open.Store(true)
	return s
}

func (s *fakeSession) ID() string         { return s.id }
func (s *fakeSession) RemoteAddr() string { return "fake:" + s.id }
func (s *fakeSession) IsOpen() bool       { return s.open.Load() }

func (s *fakeSession) SendText(data []byte) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, data)
	return nil
}

func (s *fakeSession) SendBinary(data []byte) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.binaries = append(s.binaries, data)
	return nil
}

func (s *fakeSession) Close() error {
	s.open.Store(false)
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	return nil
}

func (s *fakeSession) Texts() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.texts...)
}

func (s *fakeSession) Binaries() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.binaries...)
}

func (s *fakeSession) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// newTestHub returns a hub over a fresh registry and engine.
func newTestHub() *Hub {
	logger := discardLogger()
	registry := NewRegistry(logger)
	return NewHub(registry, NewEngine(registry, logger), logger)
}

// openWithRole registers s and declares role when non-empty.
func openWithRole(h *Hub, s Session, role string) {
	h.OnOpen(s)
	if role != "" {
		h.OnTextFrame(s, []byte(`{"role":"`+role+`"}`))
	}
}
