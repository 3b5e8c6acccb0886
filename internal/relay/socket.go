package relay

import (
	"context"
	"errors"
	"net/http"

	"github.com/specialistvlad/flowsync/internal/ctxlog"
	"github.com/specialistvlad/flowsync/internal/protocol"
	"github.com/zishang520/socket.io/v2/socket"
)

var errDisconnected = errors.New("socket disconnected")

// SocketServer connects socket.io clients to a Hub.
type SocketServer struct {
	hub *Hub
	io  *socket.Server
}

// NewSocketServer creates the socket.io server. ctx carries the logger used
// for every connection; it is not used for cancellation.
func NewSocketServer(ctx context.Context, hub *Hub, opts *socket.ServerOptions) *SocketServer {
	if opts == nil {
		opts = socket.DefaultServerOptions()
	}
	s := &SocketServer{
		hub: hub,
		io:  socket.NewServer(nil, opts),
	}
	s.io.On("connection", func(clients ...any) {
		conn, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		s.serve(ctx, conn)
	})
	return s
}

// Handler returns the engine.io handler to mount under the socket.io path.
func (s *SocketServer) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Close disconnects every client.
func (s *SocketServer) Close(ctx context.Context) error {
	done := make(chan error, 1)
	s.io.Close(func(err error) { done <- err })
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SocketServer) serve(ctx context.Context, conn *socket.Socket) {
	id := string(conn.Id())
	ctx = ctxlog.With(ctx, "participant", id)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Socket connected.", "remote_addr", conn.Handshake().Address)

	// OnAny listeners run in packet order, unlike per-event listeners.
	conn.OnAny(func(args ...any) {
		s.onEvent(ctx, id, args)
	})
	conn.On("disconnect", func(reason ...any) {
		logger.Debug("Socket disconnected.", "reason", reason)
		if err := s.hub.Leave(ctx, id); err != nil {
			logger.Warn("Failed to unregister participant.", "error", err)
		}
	})

	if err := s.hub.Join(ctx, &socketParticipant{conn: conn}); err != nil {
		logger.Error("Failed to register participant, closing connection.", "error", err)
		conn.Disconnect(true)
		return
	}
	if conn.Disconnected() {
		_ = s.hub.Leave(ctx, id)
	}
}

func (s *SocketServer) onEvent(ctx context.Context, from string, args []any) {
	if len(args) == 0 {
		return
	}
	logger := ctxlog.FromContext(ctx)
	name, _ := args[0].(string)

	ev, err := protocol.Decode(name, args[1:]...)
	if err != nil {
		reason := reasonMalformed
		if errors.Is(err, protocol.ErrUnknownEvent) {
			reason = reasonUnknownEvent
		}
		s.hub.metrics.eventsDropped.WithLabelValues(reason).Inc()
		logger.Warn("Dropping event.", "event", name, "reason", reason, "error", err)
		return
	}

	if err := s.hub.Submit(ctx, from, ev); err != nil {
		logger.Warn("Event not submitted.", "event", ev.String(), "error", err)
	}
}

type socketParticipant struct {
	conn *socket.Socket
}

func (p *socketParticipant) ID() string {
	return string(p.conn.Id())
}

func (p *socketParticipant) Send(event string, args ...any) error {
	if p.conn.Disconnected() {
		return errDisconnected
	}
	return p.conn.Emit(event, args...)
}
