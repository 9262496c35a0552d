package ingest

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcollage/viewer/internal/dispatcher"
	"github.com/arcollage/viewer/pkg/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// trackerStub serves one websocket connection and sends each queued
// message in order.
func trackerStub(t *testing.T, messages ...string) *httptest.Server {
	t.Helper()
	upgrader := ws.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for _, msg := range messages {
			if err := conn.WriteMessage(ws.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Keep the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestClient_DispatchesParsedBatches(t *testing.T) {
	srv := trackerStub(t,
		`{"type":"tracking_update","markers":{"5":{"id":5,"position":{"x":0.1,"y":0.2,"z":0.3},"rotation":{"x":0,"y":0,"z":90}}}}`,
		`{"type":"tracking_update","markers":`, // unreadable, dropped
	)
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	disp, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)

	batches := make(chan []core.PoseSnapshot, 4)
	disp.Register(core.TypeTrackingUpdate, func(e dispatcher.Event) error {
		if snaps, ok := e.Payload.([]core.PoseSnapshot); ok {
			batches <- snaps
		}
		return nil
	})

	client := NewClient(wsURL(srv), NewParser(logger), disp, logger)
	require.NoError(t, client.Start())
	defer client.Close()

	select {
	case <-client.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready signal never fired")
	}

	select {
	case snaps := <-batches:
		require.Len(t, snaps, 1)
		assert.Equal(t, 5, snaps[0].MarkerID)
		assert.InDelta(t, 0.1, snaps[0].Pose.Position.X, 1e-9)
	case <-time.After(time.Second):
		t.Fatal("no batch dispatched")
	}

	// The malformed second message is dropped without killing the stream.
	select {
	case snaps := <-batches:
		t.Fatalf("unexpected batch: %v", snaps)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	msg := func(id string) string {
		return `{"type":"tracking_update","markers":{"` + id +
			`":{"id":` + id + `,"position":{"x":0,"y":0,"z":0},"rotation":{"x":0,"y":0,"z":0}}}}`
	}

	upgrader := ws.Upgrader{}
	conns := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns++
		if conns == 1 {
			// Drop the first connection right after one update.
			conn.WriteMessage(ws.TextMessage, []byte(msg("1")))
			conn.Close()
			return
		}
		conn.WriteMessage(ws.TextMessage, []byte(msg("2")))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	disp, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)

	ids := make(chan int, 4)
	disp.Register(core.TypeTrackingUpdate, func(e dispatcher.Event) error {
		for _, s := range e.Payload.([]core.PoseSnapshot) {
			ids <- s.MarkerID
		}
		return nil
	})

	client := NewClient(wsURL(srv), NewParser(logger), disp, logger)
	require.NoError(t, client.Start())
	defer client.Close()

	for _, want := range []int{1, 2} {
		select {
		case got := <-ids:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("marker %d never arrived", want)
		}
	}
}

func TestClient_StartFailsWhenUnreachable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	disp, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)

	client := NewClient("ws://127.0.0.1:1/nope", NewParser(logger), disp, logger)
	assert.Error(t, client.Start())
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	srv := trackerStub(t)
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	disp, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)

	client := NewClient(wsURL(srv), NewParser(logger), disp, logger)
	require.NoError(t, client.Start())
	require.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}
