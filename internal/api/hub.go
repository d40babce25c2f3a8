package api

import (
	"net/http"
	"sync"
	"time"

	"frontscan/internal/scanner"
	"frontscan/pkg/domain"
	"frontscan/pkg/logger"

	"github.com/go-faster/jx"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// clientBuffer is the number of events queued per websocket client before
	// the client is dropped as too slow.
	clientBuffer = 64
	writeWait    = 10 * time.Second
)

// status is the latest view of the scan served at /v1/status.
type status struct {
	session   string
	target    string
	state     string
	completed int
	total     int
	totals    domain.Totals
	elapsed   time.Duration
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is a scanner reporter that broadcasts progress to websocket clients and
// keeps the latest totals for status requests.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	status  status
	closed  bool
}

// NewHub returns a hub with no scan attached.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
		status:  status{state: "idle"},
	}
}

// Started implements scanner.Lifecycle.
func (h *Hub) Started(session scanner.Session, total int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.status = status{
		session: session.ID.String(),
		target:  session.Target,
		state:   "running",
		total:   total,
	}
	h.broadcast(encodeStatus("started", h.status))
}

// Report implements scanner.Reporter.
func (h *Hub) Report(p scanner.Progress) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.status.completed = p.Completed
	h.status.total = p.Total
	h.status.totals = p.Totals
	h.broadcast(encodeProgress(p))
}

// Finished implements scanner.Lifecycle.
func (h *Hub) Finished(result *domain.ScanResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.status.state = "finished"
	if result.Cancelled {
		h.status.state = "cancelled"
	}
	h.status.completed = len(result.Outcomes)
	h.status.totals = result.Totals
	h.status.elapsed = result.Elapsed
	h.broadcast(encodeStatus(h.status.state, h.status))
}

// broadcast queues msg for every client. Callers hold h.mu.
func (h *Hub) broadcast(msg []byte) {
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.drop(c)
		}
	}
}

// drop unregisters c and ends its writer. Callers hold h.mu.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// ServeWS upgrades the request and streams scan events until the client goes
// away or the hub is closed. The first message is the current status.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn(ctx, "Websocket upgrade failed", zap.Error(err))

		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		_ = conn.Close()

		return
	}
	h.clients[c] = struct{}{}
	c.send <- encodeStatus("status", h.status)
	h.mu.Unlock()

	go h.writePump(c)

	// the read loop only notices the client closing
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.drop(c)
	h.mu.Unlock()
	logger.Debug(ctx, "Websocket client left")
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// ServeStatus writes the latest status as JSON.
func (h *Hub) ServeStatus(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	body := encodeStatus("status", h.status)
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// Close disconnects every client. Hijacked connections outlive
// http.Server.Shutdown, so this has to run alongside it.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.drop(c)
	}
}

func encodeTotals(e *jx.Encoder, t domain.Totals) {
	e.ObjStart()
	for _, c := range domain.Categories() {
		e.FieldStart(string(c))
		e.Int(t.Count(c))
	}
	e.ObjEnd()
}

func encodeStatus(event string, s status) []byte {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("event")
	e.Str(event)
	e.FieldStart("state")
	e.Str(s.state)
	if s.session != "" {
		e.FieldStart("session")
		e.Str(s.session)
		e.FieldStart("target")
		e.Str(s.target)
	}
	e.FieldStart("completed")
	e.Int(s.completed)
	e.FieldStart("total")
	e.Int(s.total)
	e.FieldStart("totals")
	encodeTotals(e, s.totals)
	if s.elapsed > 0 {
		e.FieldStart("elapsed_ms")
		e.Int64(s.elapsed.Milliseconds())
	}
	e.ObjEnd()

	return e.Bytes()
}

func encodeProgress(p scanner.Progress) []byte {
	o := p.Outcome

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("event")
	e.Str("progress")
	e.FieldStart("completed")
	e.Int(p.Completed)
	e.FieldStart("total")
	e.Int(p.Total)
	e.FieldStart("outcome")
	e.ObjStart()
	e.FieldStart("candidate")
	e.Str(string(o.Candidate))
	e.FieldStart("category")
	e.Str(string(o.Category))
	if o.IP.IsValid() {
		e.FieldStart("ip")
		e.Str(o.IP.String())
	}
	if o.Provider != "" {
		e.FieldStart("provider")
		e.Str(o.Provider)
	}
	if o.StatusCode != 0 {
		e.FieldStart("status")
		e.Int(o.StatusCode)
		e.FieldStart("protocol")
		e.Str(o.Protocol)
	}
	if o.Colo != "" {
		e.FieldStart("colo")
		e.Str(o.Colo)
	}
	e.FieldStart("reason")
	e.Str(o.Reason)
	e.FieldStart("elapsed_ms")
	e.Int64(o.Elapsed.Milliseconds())
	e.ObjEnd()
	e.FieldStart("totals")
	encodeTotals(e, p.Totals)
	e.ObjEnd()

	return e.Bytes()
}
