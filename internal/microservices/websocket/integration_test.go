package websocket

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RelayIntegrationTestSuite runs the hub behind a real HTTP server and
// talks to it with gorilla clients.
type RelayIntegrationTestSuite struct {
	suite.Suite
	hub    *Hub
	server *httptest.Server
	wsURL  string
}

func (s *RelayIntegrationTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.hub = newTestHub()

	router := gin.New()
	router.GET("/ws", WSHandler(s.hub, HandlerOptions{
		AllowedOrigins: []string{"http://dashboard.local"},
		Client:         Options{WriteWait: time.Second, PongWait: 5 * time.Second},
	}))

	s.server = httptest.NewServer(router)
	s.wsURL = "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
}

func (s *RelayIntegrationTestSuite) TearDownTest() {
	s.hub.Registry().CloseAll()
	s.server.Close()
}

func (s *RelayIntegrationTestSuite) dial() *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
	s.Require().NoError(err, "Should connect to relay")
	s.T().Cleanup(func() { conn.Close() })
	return conn
}

func (s *RelayIntegrationTestSuite) sessionsWithRole(role string) int {
	n := 0
	for sess := range s.hub.Registry().AllSessions() {
		if r, ok := s.hub.Registry().RoleOf(sess.ID()); ok && r == role {
			n++
		}
	}
	return n
}

func (s *RelayIntegrationTestSuite) declare(conn *websocket.Conn, role string) {
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"role":"`+role+`"}`)))
	s.Require().Eventually(func() bool { return s.sessionsWithRole(role) >= 1 },
		2*time.Second, 10*time.Millisecond, "role %s should be registered", role)
}

func expectNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame %q", data)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout())
}

func (s *RelayIntegrationTestSuite) TestBinaryFromPiReachesBrowserExactlyOnce() {
	t := s.T()
	client1 := s.dial()
	client2 := s.dial()

	s.declare(client1, "browser")
	s.declare(client2, "pi")

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, client2.WriteMessage(websocket.BinaryMessage, payload))

	_ = client1.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, data, err := client1.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, messageType)
	require.Equal(t, payload, data)

	expectNoFrame(t, client1)
	expectNoFrame(t, client2)
}

func (s *RelayIntegrationTestSuite) TestSignalingIsRelayedToOppositeRole() {
	t := s.T()
	browser := s.dial()
	pi := s.dial()
	s.declare(browser, "browser")
	s.declare(pi, "pi")

	offer := []byte(`{"type":"offer","sdp":"v=0"}`)
	require.NoError(t, browser.WriteMessage(websocket.TextMessage, offer))

	_ = pi.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, data, err := pi.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, messageType)
	require.Equal(t, offer, data)

	expectNoFrame(t, browser)
}

func (s *RelayIntegrationTestSuite) TestDisconnectUnregistersSession() {
	t := s.T()
	conn := s.dial()
	s.declare(conn, "pi")
	require.Equal(t, 1, s.hub.Registry().Count())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	conn.Close()

	require.Eventually(t, func() bool { return s.hub.Registry().Count() == 0 },
		2*time.Second, 10*time.Millisecond)
	require.Equal(t, 0, s.sessionsWithRole("pi"))
}

func (s *RelayIntegrationTestSuite) TestOriginPolicy() {
	t := s.T()

	header := http.Header{}
	header.Set("Origin", "http://evil.local")
	_, resp, err := websocket.DefaultDialer.Dial(s.wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://dashboard.local")
	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL, header)
	require.NoError(t, err)
	conn.Close()
}

func TestRelayIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RelayIntegrationTestSuite))
}
