package client

// ws_client.go = interactive relay session over /ws.

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

// WSURL maps the server's http(s) base URL onto its /ws endpoint.
func WSURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// Connect joins the relay, declares role, prints every frame received to
// out and sends each line read from in as a signaling frame. It returns
// when ctx is done or the server closes the connection.
func Connect(ctx context.Context, baseURL, role string, in io.Reader, out io.Writer) error {
	wsURL, err := WSURL(baseURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	info := color.New(color.FgGreen)
	info.Fprintf(out, "connected to %s\n", wsURL)

	if role != "" {
		declaration, _ := json.Marshal(map[string]string{"role": role})
		if err := conn.WriteMessage(websocket.TextMessage, declaration); err != nil {
			return fmt.Errorf("failed to declare role: %w", err)
		}
		info.Fprintf(out, "declared role %q\n", role)
	}

	// gorilla allows one concurrent writer
	var writeMu sync.Mutex
	write := func(mt int, data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(mt, data)
	}

	// Goroutine to receive frames
	done := make(chan error, 1)
	go func() {
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				done <- err
				return
			}
			PrintFrame(out, mt, data)
		}
	}()

	// Goroutine to send stdin lines; conn.Close below unblocks ReadMessage
	// but not the scanner, which dies with the process.
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := write(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		_ = write(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		return nil
	case err := <-done:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil
		}
		return fmt.Errorf("connection lost: %w", err)
	}
}

func PrintFrame(out io.Writer, messageType int, data []byte) {
	switch messageType {
	case websocket.TextMessage:
		color.New(color.FgCyan).Fprintf(out, "[text] %s\n", data)
	case websocket.BinaryMessage:
		color.New(color.FgYellow).Fprintf(out, "[binary] %d bytes\n", len(data))
		fmt.Fprint(out, hex.Dump(data))
	}
}
