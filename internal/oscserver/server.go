// Package oscserver shares parameters over OSC. Incoming messages set the
// parameter registered at their address; local changes are sent to every
// listener.
package oscserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/hypebeast/go-osc/osc"
	"github.com/rs/zerolog"

	"github.com/taigrr/objview/internal/param"
)

// Control addresses handled besides the parameters.
const (
	AddrRequest          = "/request"
	AddrRegisterListener = "/registerListener"
	AddrHandshake        = "/handshake"
)

// Listener is a peer that receives parameter updates.
type Listener struct {
	Host string
	Port int
}

func (l Listener) String() string { return net.JoinHostPort(l.Host, strconv.Itoa(l.Port)) }

// ParseListener parses "host:port".
func ParseListener(s string) (Listener, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return Listener{}, fmt.Errorf("parse listener %q: %w", s, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return Listener{}, fmt.Errorf("parse listener %q: bad port", s)
	}
	return Listener{Host: host, Port: p}, nil
}

// Server is a parameter server bound to one UDP socket.
type Server struct {
	ID uuid.UUID

	reg      *param.Registry
	log      zerolog.Logger
	conn     net.PacketConn
	handlers map[string]osc.HandlerFunc

	mu        sync.Mutex
	listeners []Listener
	clients   map[Listener]*osc.Client

	// send delivers msg to one listener.
	send func(l Listener, msg *osc.Message) error
}

// New binds addr and exposes every parameter already in reg.
func New(reg *param.Registry, addr string, log zerolog.Logger) (*Server, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	id := uuid.New()
	s := &Server{
		ID:       id,
		reg:      reg,
		log:      log.With().Str("component", "osc").Str("node", id.String()).Logger(),
		conn:     conn,
		handlers: make(map[string]osc.HandlerFunc),
		clients:  make(map[Listener]*osc.Client),
	}
	s.send = s.sendUDP

	s.bind()
	s.log.Info().Str("addr", conn.LocalAddr().String()).Int("params", reg.Len()).Msg("parameter server listening")
	return s, nil
}

func (s *Server) bind() {
	s.handlers[AddrRequest] = s.handleRequest
	s.handlers[AddrRegisterListener] = s.handleRegisterListener
	s.handlers[AddrHandshake] = s.handleHandshake

	for _, p := range s.reg.All() {
		s.handlers[p.Address()] = s.paramHandler(p)
		p.OnChange(func(src any) {
			// Changes we applied for a peer are not sent back out.
			if src == any(s) {
				return
			}
			s.broadcast(osc.NewMessage(p.Address(), p.Args()...))
		})
	}
}

// Dispatch routes a packet by exact address. Bundles are unpacked in order.
func (s *Server) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		h, ok := s.handlers[p.Address]
		if !ok {
			s.log.Debug().Str("addr", p.Address).Msg("no handler")
			return
		}
		h(p)
	case *osc.Bundle:
		for _, m := range p.Messages {
			s.Dispatch(m)
		}
		for _, b := range p.Bundles {
			s.Dispatch(b)
		}
	}
}

func (s *Server) paramHandler(p param.Parameter) osc.HandlerFunc {
	return func(msg *osc.Message) {
		if err := p.SetArgs(msg.Arguments, s); err != nil {
			s.log.Warn().Err(err).Msg("ignoring message")
			return
		}
		s.log.Debug().Str("param", p.Address()).Interface("args", msg.Arguments).Msg("set from network")
	}
}

func (s *Server) handleRequest(*osc.Message) {
	s.log.Debug().Msg("value request")
	s.SendAll()
}

func (s *Server) handleRegisterListener(msg *osc.Message) {
	l, err := listenerArgs(msg.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Msg("bad registerListener")
		return
	}
	s.AddListener(l)
}

// handleHandshake answers with this node's id. A host and port in the
// message register the sender first so it gets the reply.
func (s *Server) handleHandshake(msg *osc.Message) {
	if len(msg.Arguments) > 0 {
		l, err := listenerArgs(msg.Arguments)
		if err != nil {
			s.log.Warn().Err(err).Msg("bad handshake")
			return
		}
		s.AddListener(l)
	}
	s.broadcast(osc.NewMessage(AddrHandshake, s.ID.String()))
}

func listenerArgs(args []any) (Listener, error) {
	if len(args) != 2 {
		return Listener{}, fmt.Errorf("want host and port, got %d args", len(args))
	}
	host, ok := args[0].(string)
	if !ok {
		return Listener{}, fmt.Errorf("host is %T", args[0])
	}
	var port int
	switch v := args[1].(type) {
	case int32:
		port = int(v)
	case int64:
		port = int(v)
	case float32:
		port = int(v)
	default:
		return Listener{}, fmt.Errorf("port is %T", args[1])
	}
	if port <= 0 || port > 65535 {
		return Listener{}, fmt.Errorf("port %d out of range", port)
	}
	return Listener{Host: host, Port: port}, nil
}

// AddListener adds l to the peers receiving updates. Adding a peer twice
// has no effect.
func (s *Server) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[l]; ok {
		return
	}
	s.clients[l] = osc.NewClient(l.Host, l.Port)
	s.listeners = append(s.listeners, l)
	s.log.Info().Stringer("listener", l).Msg("listener registered")
}

// Subscribe adds l as a listener and asks it to do the same for this
// server and to send its current values. A replica uses it to catch up
// with the primary.
func (s *Server) Subscribe(l Listener) {
	s.AddListener(l)
	host, port := s.advertised()
	for _, msg := range []*osc.Message{
		osc.NewMessage(AddrRegisterListener, host, int32(port)),
		osc.NewMessage(AddrRequest),
	} {
		if err := s.send(l, msg); err != nil {
			s.log.Warn().Err(err).Stringer("listener", l).Msg("subscribe failed")
			return
		}
	}
}

// advertised is the host and port peers should send to.
func (s *Server) advertised() (string, int) {
	addr, ok := s.conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "127.0.0.1", 0
	}
	host := "127.0.0.1"
	if !addr.IP.IsUnspecified() {
		host = addr.IP.String()
	}
	return host, addr.Port
}

// Listeners returns the registered peers in order.
func (s *Server) Listeners() []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Listener(nil), s.listeners...)
}

// SendAll sends every parameter's current value to all listeners.
func (s *Server) SendAll() {
	for _, p := range s.reg.All() {
		s.broadcast(osc.NewMessage(p.Address(), p.Args()...))
	}
}

func (s *Server) broadcast(msg *osc.Message) {
	for _, l := range s.Listeners() {
		if err := s.send(l, msg); err != nil {
			s.log.Debug().Err(err).Stringer("listener", l).Str("addr", msg.Address).Msg("send failed")
		}
	}
}

func (s *Server) sendUDP(l Listener, msg *osc.Message) error {
	s.mu.Lock()
	c := s.clients[l]
	s.mu.Unlock()
	if c == nil {
		return fmt.Errorf("no client for %s", l)
	}
	return c.Send(msg)
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr { return s.conn.LocalAddr() }

// maxPacket is the largest UDP payload.
const maxPacket = 65535

// Serve handles messages until ctx is cancelled. Packets are dispatched
// one at a time in arrival order. A packet that does not parse is logged
// and dropped.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	buf := make([]byte, maxPacket)
	for {
		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("osc read: %w", err)
		}
		packet, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			s.log.Warn().Err(err).Stringer("from", from).Int("bytes", n).Msg("dropping malformed packet")
			continue
		}
		s.Dispatch(packet)
	}
}

// Close releases the socket.
func (s *Server) Close() error {
	err := s.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
