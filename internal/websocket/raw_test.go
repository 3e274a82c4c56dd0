package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/connection"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// echoServer upgrades /ws and answers every frame with a "code-updated"
// event carrying the same data. It records the clientId query parameter.
type echoServer struct {
	*httptest.Server

	mu        sync.Mutex
	clientIDs []string
	conns     []*gws.Conn
}

func newEchoServer(t *testing.T) *echoServer {
	t.Helper()
	s := &echoServer{}
	upgrader := gws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.clientIDs = append(s.clientIDs, r.URL.Query().Get("clientId"))
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			reply, _ := json.Marshal(Envelope{Event: "code-updated", Data: env.Data})
			if err := conn.WriteMessage(gws.TextMessage, reply); err != nil {
				return
			}
		}
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *echoServer) dropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
}

type recorder struct {
	connected chan string
	dropped   chan string
	failed    chan error
	events    chan Envelope
}

func newRecorder() *recorder {
	return &recorder{
		connected: make(chan string, 1),
		dropped:   make(chan string, 1),
		failed:    make(chan error, 1),
		events:    make(chan Envelope, 8),
	}
}

func (r *recorder) listener() connection.Listener {
	return connection.Listener{
		OnConnect:      func(id string) { r.connected <- id },
		OnDisconnect:   func(reason string) { r.dropped <- reason },
		OnConnectError: func(err error) { r.failed <- err },
		OnEvent: func(event string, data json.RawMessage) {
			r.events <- Envelope{Event: event, Data: data}
		},
	}
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for %T", *new(T))
		var zero T
		return zero
	}
}

func TestRawClientRoundTrip(t *testing.T) {
	t.Parallel()

	srv := newEchoServer(t)
	rec := newRecorder()
	tr, err := NewRawDialer(RawOptions{ServerURL: srv.URL, ConnectTimeout: time.Second})(rec.listener())
	require.NoError(t, err)
	t.Cleanup(tr.Close)

	require.NoError(t, tr.Open())
	id := recv(t, rec.connected)
	require.NotEmpty(t, id)
	require.Equal(t, id, tr.ID())

	require.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return len(srv.clientIDs) == 1 && srv.clientIDs[0] == id
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, tr.Emit("code-change", map[string]string{"code": "print(1)"}))
	ev := recv(t, rec.events)
	require.Equal(t, "code-updated", ev.Event)
	require.JSONEq(t, `{"code":"print(1)"}`, string(ev.Data))
}

func TestRawClientReportsServerDrop(t *testing.T) {
	t.Parallel()

	srv := newEchoServer(t)
	rec := newRecorder()
	tr, err := NewRawDialer(RawOptions{ServerURL: srv.URL})(rec.listener())
	require.NoError(t, err)
	t.Cleanup(tr.Close)

	require.NoError(t, tr.Open())
	recv(t, rec.connected)

	srv.dropAll()
	require.NotEmpty(t, recv(t, rec.dropped))
}

func TestRawClientConnectError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	rec := newRecorder()
	tr, err := NewRawDialer(RawOptions{ServerURL: srv.URL})(rec.listener())
	require.NoError(t, err)

	require.NoError(t, tr.Open())
	require.Error(t, recv(t, rec.failed))
	require.ErrorIs(t, tr.Emit("x", nil), connection.ErrNotConnected)
}

func TestRawEndpoint(t *testing.T) {
	t.Parallel()

	c := &RawClient{opts: RawOptions{ServerURL: "https://collab.example.com/api/"}, id: "abc"}
	got, err := c.endpoint()
	require.NoError(t, err)
	require.Equal(t, "wss://collab.example.com/api/ws?clientId=abc", got)

	c.opts.ServerURL = "ftp://nope"
	_, err = c.endpoint()
	require.Error(t, err)
}

func TestDialersRejectEmptyURL(t *testing.T) {
	t.Parallel()

	_, err := NewDialer(Options{})(connection.Listener{})
	require.Error(t, err)
	_, err = NewRawDialer(RawOptions{})(connection.Listener{})
	require.Error(t, err)
}
