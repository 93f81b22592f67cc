package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Role identifies what a connected client is.
type Role string

// Client roles.
const (
	// RoleNarrative is the outer story page reporting scroll geometry.
	RoleNarrative Role = "narrative"
	// RoleEmbed is the embedded map applying directives.
	RoleEmbed Role = "embed"
)

// Hub owns all relay connections. Incoming messages are decoded and routed to
// the sink; outgoing directives fan out to embed clients.
type Hub struct {
	sink       EventSink
	upgrader   websocket.Upgrader
	sendBuffer int

	// ctx bounds every connection's lifetime; request contexts are useless
	// here because net/http cancels them as soon as ServeWS returns.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	clients map[*Client]bool
}

// Options tune hub behavior.
type Options struct {
	// AllowedOrigins restricts upgrade requests; empty allows any origin.
	AllowedOrigins []string
	// SendBuffer is the per-client outbound buffer (defaults to 32).
	SendBuffer int
}

// NewHub creates a hub routing events into sink.
func NewHub(sink EventSink, opts Options) *Hub {
	sendBuffer := opts.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = 32
	}

	h := &Hub{
		sink:       sink,
		sendBuffer: sendBuffer,
		clients:    make(map[*Client]bool),
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

// SetSink installs the event sink. The sink typically sends directives back
// through the same hub, so it is attached after construction; call this
// before ServeWS handles its first connection.
func (h *Hub) SetSink(sink EventSink) {
	h.sink = sink
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}

// ServeWS upgrades an HTTP request into a relay connection.
// The client's role comes from the "role" query parameter; the default is
// narrative.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	role := RoleNarrative
	if Role(r.URL.Query().Get("role")) == RoleEmbed {
		role = RoleEmbed
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Relay: upgrade failed", "error", err)
		return
	}

	c := newClient(h, conn, role)
	h.attach(c)

	// Events must carry a context that outlives this request: r.Context() is
	// canceled the moment ServeWS returns, long before the connection dies.
	ctx, cancel := context.WithCancel(h.ctx)
	c.cancel = cancel

	go c.writePump()
	go c.readPump(ctx)
}

// attach registers a client and, for embeds, performs the one-time
// embedded-mode handshake.
func (h *Hub) attach(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	slog.Info("Relay: client attached", "id", c.ID, "role", string(c.Role))

	if c.Role == RoleEmbed {
		c.markObserved(func() {
			embedded := true
			h.sendTo(c, Envelope{
				Source:  Source,
				Payload: Payload{IsEmbedded: &embedded},
			})
			h.sink.OnEmbed(context.Background(), true)
		})
	}
}

// detach removes a client and cancels its connection context.
func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	slog.Info("Relay: client detached", "id", c.ID, "role", string(c.Role))
}

// sendTo queues an envelope for one client, dropping it if the client's
// buffer is full.
func (h *Hub) sendTo(c *Client, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("Relay: marshal failed", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("Relay: client send buffer full, dropping message", "id", c.ID)
	}
}

// SendToEmbeds wraps a directive and fans it out to every embed client.
// Implements the bridge sender contract.
func (h *Hub) SendToEmbeds(v any) error {
	env := Envelope{
		Source:  Source,
		Payload: Payload{Type: TypeDirective, Directive: v},
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal directive: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.Role != RoleEmbed {
			continue
		}
		select {
		case c.send <- data:
		default:
			slog.Warn("Relay: embed send buffer full, dropping directive", "id", c.ID)
		}
	}
	return nil
}

// BroadcastProgress mirrors a progress update to narrative clients, matching
// the outer-page contract.
func (h *Hub) BroadcastProgress(slide int, progress float64) {
	env := Envelope{
		Source: Source,
		Payload: Payload{
			Type:     TypeProgress,
			Slide:    &slide,
			Progress: &progress,
		},
	}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.Role != RoleNarrative {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of attached clients per role.
func (h *Hub) ClientCount() (narrative, embed int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.Role == RoleEmbed {
			embed++
		} else {
			narrative++
		}
	}
	return narrative, embed
}

// route decodes one inbound message and forwards it to the sink.
// Malformed or foreign messages are dropped, never fatal.
func (h *Hub) route(ctx context.Context, c *Client, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("Relay: dropping malformed message", "id", c.ID, "error", err)
		return
	}
	if env.Source != Source {
		return
	}

	p := env.Payload
	switch {
	case p.IsEmbedded != nil && p.Type == "":
		h.sink.OnEmbed(ctx, *p.IsEmbedded)
	case p.Type == TypeProgress:
		if p.Slide == nil || p.Progress == nil {
			slog.Warn("Relay: progress message missing fields", "id", c.ID)
			return
		}
		h.sink.OnProgress(ctx, *p.Slide, *p.Progress)
	case p.Type == TypeSlide:
		if p.Slide != nil {
			h.sink.OnSlide(ctx, *p.Slide)
		}
	case p.Type == TypeScroll:
		if p.ScrollY != nil {
			h.sink.OnScroll(ctx, *p.ScrollY)
		}
	case p.Type == TypeDock:
		if p.Docked != nil {
			h.sink.OnDock(ctx, *p.Docked)
		}
	case p.Type == TypeLayout:
		h.sink.OnLayout(ctx, p.Panels)
	case p.Type == TypeHash:
		h.sink.OnHash(ctx, p.Hash)
	case p.Type == TypeSrc:
		h.sink.OnSlide(ctx, ParseSlideFragment(p.Src))
	default:
		// Unknown message types are ignored by contract.
	}
}

// Close detaches every client and cancels all connection contexts.
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
	h.mu.Unlock()
}
