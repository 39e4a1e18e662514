package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Message protocol definitions

// Kind tells the relay how a payload travels on the wire.
type Kind int

const (
	KindSignaling Kind = iota // text frame, relayed verbatim
	KindBinary                // binary frame, copied per recipient
)

func (k Kind) String() string {
	switch k {
	case KindSignaling:
		return "signaling"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrMalformedFrame is returned by DecodeText for text frames that are not a
// JSON object or carry a role that is not a string.
var ErrMalformedFrame = errors.New("malformed frame")

// Inbound is a decoded text frame: either a RoleDeclaration or a
// SignalingMessage.
type Inbound interface {
	inbound()
}

// RoleDeclaration is a control frame such as {"role":"pi"}. It is consumed
// by the server and never relayed.
type RoleDeclaration struct {
	Role string
}

// SignalingMessage is any other JSON object (SDP offers/answers, ICE
// candidates, dashboard commands). Raw holds the frame exactly as received.
type SignalingMessage struct {
	Raw []byte
}

func (RoleDeclaration) inbound()  {}
func (SignalingMessage) inbound() {}

// DecodeText classifies one inbound text frame. The frame must be a JSON
// object; the presence of a "role" key makes it a role declaration,
// whatever other fields it carries.
func DecodeText(data []byte) (Inbound, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if fields == nil { // literal null
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedFrame)
	}

	raw, ok := fields["role"]
	if !ok {
		return SignalingMessage{Raw: data}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: role is null", ErrMalformedFrame)
	}
	var role string
	if err := json.Unmarshal(raw, &role); err != nil {
		return nil, fmt.Errorf("%w: role must be a string", ErrMalformedFrame)
	}
	return RoleDeclaration{Role: role}, nil
}
