package websocket

import (
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/gorilla/websocket"
)

// ErrSessionClosed is returned when sending on a session that was already
// closed locally.
var ErrSessionClosed = errors.New("session closed")

// SendFailure classifies a failed send by what it says about the
// recipient's transport.
type SendFailure int

const (
	FailureNone      SendFailure = iota
	FailureOther                 // unclassified write error
	FailureTimeout               // write deadline hit; peer may still recover
	FailureClosed                // connection already closed on either side
	FailurePeerReset             // reset / broken pipe from the peer
)

func (f SendFailure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureClosed:
		return "closed"
	case FailurePeerReset:
		return "peer_reset"
	default:
		return "other"
	}
}

// TransportUnusable reports whether the recipient should be closed after
// this failure.
func (f SendFailure) TransportUnusable() bool {
	return f == FailurePeerReset || f == FailureClosed
}

// ClassifySendError maps a send error onto a SendFailure using the error
// chain only.
func ClassifySendError(err error) SendFailure {
	if err == nil {
		return FailureNone
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return FailurePeerReset
	}

	var closeErr *websocket.CloseError
	if errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, websocket.ErrCloseSent) ||
		errors.As(err, &closeErr) {
		return FailureClosed
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	return FailureOther
}
