package websocket

// Session is one open duplex connection as seen by the relay.
// The transport owns the underlying connection; the relay only keeps a
// reference while IsOpen reports true.
type Session interface {
	ID() string         // unique per connection, assigned by the transport
	RemoteAddr() string // peer address for logging
	IsOpen() bool
	SendText(data []byte) error
	SendBinary(data []byte) error
	Close() error // idempotent
}
