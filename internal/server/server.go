// Package server hosts the table engine behind a websocket transport: it
// upgrades incoming connections, assigns each an opaque viewer id, dispatches
// the four inbound events to the table (SPEC_FULL.md §6), and after every
// state-mutating event broadcasts a freshly projected `state` message to
// every connected client via non-blocking per-client sends (§5).
package server

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/holdem-table/internal/table"
)

// newSeededRand builds the *rand.Rand the table shuffles with. Seed 0 means
// "no seed requested" (SPEC_FULL.md §10's `--seed` flag), so it falls back
// to a time-derived source instead of the fixed, reproducible stream that a
// literal zero seed would otherwise produce.
func newSeededRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Server is the table server hub: one websocket listener in front of one
// Table (SPEC_FULL.md §1 — a single table, up to six players).
type Server struct {
	table     *table.Table
	logger    *log.Logger
	upgrader  websocket.Upgrader
	mux       *http.ServeMux
	http      *http.Server
	staticDir string

	mu       sync.Mutex
	conns    map[string]*Connection
	nextConn atomic.Uint64

	routesOnce sync.Once
}

// NewServer builds a Server around a fresh lobby-phase Table.
func NewServer(cfg *ServerConfig, logger *log.Logger, rngSeed int64, clock quartz.Clock) *Server {
	rng := newSeededRand(rngSeed)
	t := table.New(cfg.Server.StartingStack, cfg.Server.SmallBlind, cfg.Server.BigBlind, rng, clock, logger)

	s := &Server{
		table:     t,
		logger:    logger,
		staticDir: cfg.Server.StaticDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux:   http.NewServeMux(),
		conns: make(map[string]*Connection),
	}

	t.SetNextHandCallback(s.broadcastState)
	return s
}

// Start begins serving HTTP + websocket traffic on addr. Blocks until the
// server stops.
func (s *Server) Start(addr string) error {
	s.ensureRoutes()
	s.http = &http.Server{Addr: addr, Handler: s.mux}
	s.logger.Info("table server listening", "addr", addr)
	return s.http.ListenAndServe()
}

// Stop gracefully shuts down the HTTP listener.
func (s *Server) Stop() error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(context.Background())
}

func (s *Server) ensureRoutes() {
	s.routesOnce.Do(func() {
		s.mux.HandleFunc("/ws", s.handleWebSocket)
		s.mux.HandleFunc("/health", s.handleHealth)
		if s.staticDir != "" {
			s.mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// handleWebSocket upgrades the request, assigns the new connection an opaque
// viewer id (the "stable id, assigned by the transport on connect" from
// SPEC_FULL.md §3), and starts its read/write pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	id := s.nextViewerID()
	c := NewConnection(id, conn, s.logger, s)

	s.mu.Lock()
	s.conns[id] = c
	s.mu.Unlock()

	c.Start()
	_ = c.SendMessage(s.stateMessage(id))
}

func (s *Server) nextViewerID() string {
	n := s.nextConn.Add(1)
	return fmt.Sprintf("v%d", n)
}

// unregister removes a closed connection from the broadcast set and tells
// the table it disconnected (SPEC_FULL.md §4.7).
func (s *Server) unregister(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()

	s.table.Disconnect(id)
	s.broadcastState()
}

// stateMessage builds the `state` outbound message for one viewer.
func (s *Server) stateMessage(viewerID string) *Message {
	v := s.table.View(viewerID)
	joined := false
	for _, p := range v.Players {
		if p.ID == viewerID {
			joined = true
			break
		}
	}
	msg, err := NewMessage(MessageTypeState, stateDataFromView(v, joined, viewerID))
	if err != nil {
		s.logger.Error("failed to build state message", "error", err)
		return nil
	}
	return msg
}

// broadcastState pushes a freshly projected state to every connected
// client, one per viewer, via each connection's non-blocking send
// (SPEC_FULL.md §5 and §4.7).
func (s *Server) broadcastState() {
	s.mu.Lock()
	targets := make([]*Connection, 0, len(s.conns))
	for _, c := range s.conns {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		msg := s.stateMessage(c.ID())
		if msg != nil {
			_ = c.SendMessage(msg)
		}
	}
}

// sendError reports a client-protocol error to a single offending socket,
// per SPEC_FULL.md §7. State is left unchanged; no broadcast follows.
func (s *Server) sendError(id string, err error) {
	s.mu.Lock()
	c, ok := s.conns[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	msg, buildErr := NewMessage(MessageTypeErrorMessage, ErrorMessageData{Message: err.Error()})
	if buildErr != nil {
		s.logger.Error("failed to build error message", "error", buildErr)
		return
	}
	_ = c.SendMessage(msg)
}

// The four inbound event handlers. Each applies its table mutation, then
// broadcasts on success; on failure it reports errorMessage only to the
// sender and leaves state untouched (SPEC_FULL.md §7).

func (s *Server) handleJoin(id string, data JoinData) {
	if err := s.table.Join(id, data.Name); err != nil {
		s.sendError(id, err)
		return
	}
	s.broadcastState()
}

func (s *Server) handleSetStartingStack(id string, data SetStartingStackData) {
	if err := s.table.SetStartingStack(id, data.Amount); err != nil {
		s.sendError(id, err)
		return
	}
	s.broadcastState()
}

func (s *Server) handleStartGame(id string) {
	if err := s.table.StartGame(id); err != nil {
		s.sendError(id, err)
		return
	}
	s.broadcastState()
}

func (s *Server) handleAction(id string, data ActionData) {
	action, ok := table.ParseActionType(data.Type)
	if !ok {
		s.sendError(id, fmt.Errorf("unknown action type %q", data.Type))
		return
	}
	if err := s.table.Action(id, action, data.Amount); err != nil {
		s.sendError(id, err)
		return
	}
	s.broadcastState()
}
