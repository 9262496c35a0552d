package ingest

import (
	"log/slog"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/arcollage/viewer/internal/dispatcher"
	"github.com/arcollage/viewer/pkg/core"
)

const (
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
)

// Client maintains the WebSocket connection to the tracker and dispatches
// parsed pose batches. Only the data contract is load-bearing here; the
// reconnect policy is deliberately simple.
type Client struct {
	url    string
	parser *Parser
	disp   *dispatcher.Dispatcher
	logger *slog.Logger

	mu     sync.Mutex
	conn   *ws.Conn
	closed bool

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
}

// NewClient creates a tracker stream client. Events are dispatched under
// the tracking_update name.
func NewClient(url string, parser *Parser, disp *dispatcher.Dispatcher, logger *slog.Logger) *Client {
	return &Client{
		url:    url,
		parser: parser,
		disp:   disp,
		logger: logger,
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Ready returns a channel closed once the first connection is
// established. The bootstrap sequence waits on this before starting the
// render loop; the tick path itself never blocks on it.
func (c *Client) Ready() <-chan struct{} {
	return c.ready
}

// Start connects and launches the read loop. The returned error reflects
// only the initial dial; later failures reconnect in the background.
func (c *Client) Start() error {
	conn, _, err := ws.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.readyOnce.Do(func() { close(c.ready) })
	c.logger.Info("Connected to tracker", "url", c.url)

	go c.readLoop()
	return nil
}

// Close shuts down the connection and stops reconnecting.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) readLoop() {
	for {
		c.mu.Lock()
		conn := c.conn
		closed := c.closed
		c.mu.Unlock()
		if closed || conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.logger.Error("Tracker read failed, reconnecting", "error", err)
			if !c.reconnect() {
				return
			}
			continue
		}

		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	snapshots, err := c.parser.Parse(data)
	if err != nil {
		// Local recovery: a bad message never kills the stream.
		c.logger.Warn("Dropping unreadable tracker message", "error", err)
		return
	}
	if len(snapshots) == 0 {
		return
	}

	err = c.disp.Dispatch(dispatcher.Event{
		Name:      core.TypeTrackingUpdate,
		Payload:   snapshots,
		Timestamp: time.Now(),
	})
	if err != nil {
		c.logger.Warn("Tracking update not handled", "error", err)
	}
}

func (c *Client) reconnect() bool {
	// Release the broken socket before dialing a new one.
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	backoff := time.Second
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		select {
		case <-c.done:
			return false
		case <-time.After(backoff):
		}

		conn, _, err := ws.DefaultDialer.Dial(c.url, nil)
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
			c.logger.Info("Reconnected to tracker", "attempt", attempt)
			return true
		}

		c.logger.Error("Reconnect failed", "attempt", attempt, "error", err)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	c.logger.Error("Giving up on tracker connection", "attempts", maxReconnect)
	return false
}
