package peer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/flowsync/internal/ctxlog"
	"github.com/specialistvlad/flowsync/internal/protocol"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DialConfig controls how Dial connects to the relay.
type DialConfig struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Client is a Replica connected to a relay over socket.io.
type Client struct {
	io      *socket.Socket
	replica *Replica
	logger  *slog.Logger

	loaded     chan struct{}
	loadedOnce sync.Once
}

// Dial connects to the relay and starts mirroring the diagram. It returns
// once the connection is up; use WaitLoaded to wait for the first snapshot.
func Dial(ctx context.Context, cfg DialConfig) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL)
	logger.Info("Connecting to relay...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	c := &Client{
		io:      io,
		replica: NewReplica("", &socketEmitter{io: io}),
		logger:  logger,
		loaded:  make(chan struct{}),
	}
	// Relayed events are decoded with the logger of the dialing context.
	eventCtx := ctxlog.WithLogger(context.WithoutCancel(ctx), logger)
	io.OnAny(func(args ...any) {
		c.onEvent(eventCtx, args)
	})

	connectChan := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		// Fires again after every reconnect, with a new id.
		c.replica.SetConnectionID(io.Id())
		logger.Info("Successfully connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect error: %v", errs)
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("EVENT HANDLER: 'connect_error' event fired", "error", err)
		select {
		case connectChan <- err:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Warn("Disconnected from relay.", "reason", reason)
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(cfg.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", cfg.Timeout)
	}
}

// Replica returns the local copy of the diagram.
func (c *Client) Replica() *Replica {
	return c.replica
}

// ID returns the current connection id.
func (c *Client) ID() string {
	return c.io.Id()
}

// WaitLoaded blocks until the relay has sent the first snapshot.
func (c *Client) WaitLoaded(ctx context.Context) error {
	select {
	case <-c.loaded:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for the initial snapshot: %w", ctx.Err())
	}
}

// Close disconnects from the relay. The replica stays readable.
func (c *Client) Close() error {
	c.logger.Info("Closing relay connection", "sid", c.io.Id())
	c.io.Disconnect()
	return nil
}

func (c *Client) onEvent(ctx context.Context, args []any) {
	if len(args) == 0 {
		return
	}
	name, _ := args[0].(string)
	if !protocol.Name(name).Known() {
		return
	}

	ev, err := protocol.Decode(name, args[1:]...)
	if err != nil {
		c.logger.Warn("Ignoring malformed event from relay.", "event", name, "error", err)
		return
	}
	if err := c.replica.ApplyRemote(ctx, ev); err != nil {
		c.logger.Warn("Failed to apply relayed event.", "event", ev.String(), "error", err)
		return
	}
	if ev.Name == protocol.Load {
		c.loadedOnce.Do(func() { close(c.loaded) })
	}
}

// socketEmitter sends local events over the socket.io connection.
type socketEmitter struct {
	io *socket.Socket
}

func (e *socketEmitter) Emit(event string, args ...any) error {
	return e.io.Emit(event, args...)
}
