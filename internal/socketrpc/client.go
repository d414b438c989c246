package socketrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

const (
	// DefaultDialTimeout bounds connecting to the backend socket.
	DefaultDialTimeout = 5 * time.Second
	// DefaultCallTimeout bounds a call whose context carries no deadline.
	DefaultCallTimeout = 30 * time.Second

	deadlineGrace = time.Second
)

// ErrClosed is returned by calls on a closed client.
var ErrClosed = errors.New("socketrpc: client closed")

// ClientConfig holds tunable parameters for the client.
type ClientConfig struct {
	DialTimeout time.Duration
	CallTimeout time.Duration
}

// Client issues JSON-RPC 2.0 calls over a Unix domain socket. It connects
// on first use and reconnects after a transport failure. Calls are
// serialized on one connection.
type Client struct {
	socketPath  string
	dialTimeout time.Duration
	callTimeout time.Duration

	mu      sync.Mutex
	conn    net.Conn
	scanner *bufio.Scanner
	encoder *json.Encoder
	nextID  int
	closed  bool
}

// NewClient creates a client for socketPath without connecting.
func NewClient(socketPath string, conf ...ClientConfig) *Client {
	c := &Client{
		socketPath:  socketPath,
		dialTimeout: DefaultDialTimeout,
		callTimeout: DefaultCallTimeout,
	}
	if len(conf) > 0 {
		if conf[0].DialTimeout > 0 {
			c.dialTimeout = conf[0].DialTimeout
		}
		if conf[0].CallTimeout > 0 {
			c.callTimeout = conf[0].CallTimeout
		}
	}
	return c
}

// Dial creates a client and connects it immediately.
func Dial(ctx context.Context, socketPath string, conf ...ClientConfig) (*Client, error) {
	c := NewClient(socketPath, conf...)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// SocketPath returns the socket the client talks to.
func (c *Client) SocketPath() string { return c.socketPath }

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.disconnectLocked()
}

func (c *Client) connectLocked(ctx context.Context) error {
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	c.conn = conn
	c.scanner = scanner
	c.encoder = json.NewEncoder(conn)
	return nil
}

func (c *Client) disconnectLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.scanner, c.encoder = nil, nil, nil
	return err
}

// Call performs a JSON-RPC call and unmarshals the result into dest. A
// server-side error is returned as *RPCError; anything else is a transport
// failure, after which the connection is dropped.
func (c *Client) Call(ctx context.Context, method string, params interface{}, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			return err
		}
	}

	c.nextID++
	id := c.nextID

	paramsData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("socketrpc: marshal params: %w", err)
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	// With a context deadline the socket deadline trails it slightly, so
	// expiry surfaces as the context's error rather than an i/o timeout.
	deadline, ok := ctx.Deadline()
	if ok {
		deadline = deadline.Add(deadlineGrace)
	} else {
		deadline = time.Now().Add(c.callTimeout)
	}
	conn := c.conn
	_ = conn.SetDeadline(deadline)
	defer func() {
		if c.conn != nil {
			_ = c.conn.SetDeadline(time.Time{})
		}
	}()

	// Cancellation interrupts blocked I/O by expiring the deadline.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	fail := func(err error) error {
		_ = c.disconnectLocked()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", err, ctxErr)
		}
		return err
	}

	if err := c.encoder.Encode(req); err != nil {
		return fail(fmt.Errorf("socketrpc: send: %w", err))
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return fail(fmt.Errorf("socketrpc: read: %w", err))
		}
		return fail(fmt.Errorf("socketrpc: connection closed"))
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return fail(fmt.Errorf("socketrpc: unmarshal response: %w", err))
	}
	if resp.ID != id && resp.Error == nil {
		return fail(fmt.Errorf("socketrpc: response id %d does not match request id %d", resp.ID, id))
	}

	if resp.Error != nil {
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

// Detect calls the backend's Detect method and returns the raw result so
// the caller can validate it before decoding.
func (c *Client) Detect(ctx context.Context, params DetectParams) (json.RawMessage, error) {
	var result json.RawMessage
	err := c.Call(ctx, MethodDetect, params, &result)
	return result, err
}

// Train calls the backend's Train method.
func (c *Client) Train(ctx context.Context, params TrainParams) error {
	var ok bool
	if err := c.Call(ctx, MethodTrain, params, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("socketrpc: train not acknowledged")
	}
	return nil
}
