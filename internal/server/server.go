// Package server hosts an optional WebSocket transport for the engine's
// line-oriented command vocabulary, for callers that prefer a socket to a
// stdio subprocess.
package server

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/frontend"
)

// Server exposes a single "/ws" endpoint. Each connection gets its own
// Engine and Frontend so concurrent clients never share search state.
type Server struct {
	router   *mux.Router
	ttSizeMB int
	upgrader websocket.Upgrader
}

// New creates a Server whose per-connection engines use a transposition
// table of ttSizeMB megabytes.
func New(ttSizeMB int) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		ttSizeMB: ttSizeMB,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	s.router.Use(stdoutLogger)
	s.router.HandleFunc("/ws", s.wsHandler)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on addr (e.g. ":8080").
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func stdoutLogger(next http.Handler) http.Handler {
	return handlers.LoggingHandler(os.Stdout, next)
}

// wsHandler upgrades the connection and pipes each inbound text message, as
// one command line, through a fresh Frontend/Engine pair; outbound
// info/bestmove lines are written back as their own text messages.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer conn.Close()

	eng := engine.NewEngine(s.ttSizeMB)
	session := frontend.NewLineSession(eng, func(line string) error {
		return conn.WriteMessage(websocket.TextMessage, []byte(line))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			fmt.Fprintf(os.Stderr, "server: connection closed: %v\n", err)
			return
		}
		session.HandleLine(string(message))
	}
}
