package remote

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/g3n/engine/util/logger"
	"github.com/gorilla/websocket"

	"objview/internal/config"
	"objview/internal/event"
	"objview/internal/viewer"
)

// Controller is the narrow surface of the viewer the remote channel drives.
type Controller interface {
	Load(objURL, mtlURL string)
	Show()
	Hide()
	ClearModels()
	Stop()
}

// Command is a JSON message received from a websocket client.
type Command struct {
	Op  string `json:"op"`
	URL string `json:"url,omitempty"`
	Mtl string `json:"mtl,omitempty"`
	FPS int    `json:"fps,omitempty"`
}

// Event is a JSON message broadcast to websocket clients.
type Event struct {
	Event   string `json:"event"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

// Server exposes the viewer over HTTP: an embedded status/control page on /
// and a websocket command/event channel on /ws. Viewer events arriving on
// the bus are fanned out to every connected client.
type Server struct {
	ctrl Controller
	bus  *event.Bus
	log  *logger.Logger

	httpSrv  *http.Server
	listener net.Listener
	upgrader websocket.Upgrader

	clientsMutex sync.Mutex
	clients      map[*websocket.Conn]bool

	subs []event.SubscriberID
}

// New creates a server listening on addr once Start is called.
func New(addr string, ctrl Controller, bus *event.Bus, log *logger.Logger) *Server {
	s := &Server{
		ctrl: ctrl,
		bus:  bus,
		log:  log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local control channel, any origin
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveHome)
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start binds the listener, subscribes to viewer events and begins serving
// in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("remote listen: %w", err)
	}
	s.listener = ln

	s.subs = append(s.subs,
		s.bus.Subscribe(event.ModelLoaded, func(args ...interface{}) {
			s.broadcast(loadEvent(event.ModelLoaded, args))
		}),
		s.bus.Subscribe(event.ModelLoadFailed, func(args ...interface{}) {
			s.broadcast(loadEvent(event.ModelLoadFailed, args))
		}),
	)

	s.log.Info("remote channel on http://%s", ln.Addr())
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("remote serve: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpSrv.Addr
	}
	return s.listener.Addr().String()
}

// Close unsubscribes from the bus, disconnects clients and shuts the
// server down.
func (s *Server) Close() error {
	for _, id := range s.subs {
		s.bus.Unsubscribe(id)
	}
	s.subs = nil

	s.clientsMutex.Lock()
	for c := range s.clients {
		c.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMutex.Unlock()

	return s.httpSrv.Close()
}

func loadEvent(name string, args []interface{}) Event {
	ev := Event{Event: name}
	if len(args) == 0 {
		return ev
	}
	res, ok := args[0].(*viewer.LoadResult)
	if !ok {
		return ev
	}
	ev.URL = res.URL
	ev.Elapsed = res.Elapsed.String()
	if res.Err != nil {
		ev.Error = res.Err.Error()
	}
	return ev
}

// broadcast sends an event to all connected clients, pruning any whose
// write fails.
func (s *Server) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.Error("marshal event: %v", err)
		return
	}

	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	for client := range s.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.log.Debug("websocket write error: %v", err)
			client.Close()
			delete(s.clients, client)
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade: %v", err)
		return
	}

	s.clientsMutex.Lock()
	s.clients[conn] = true
	s.clientsMutex.Unlock()
	s.log.Debug("websocket client connected: %s", conn.RemoteAddr())

	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, conn)
		s.clientsMutex.Unlock()
		conn.Close()
		s.log.Debug("websocket client disconnected: %s", conn.RemoteAddr())
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.reply(conn, Event{Event: "error", Error: "malformed command"})
			continue
		}
		s.dispatch(conn, cmd)
	}
}

func (s *Server) dispatch(conn *websocket.Conn, cmd Command) {
	switch cmd.Op {
	case "load":
		if cmd.URL == "" {
			s.reply(conn, Event{Event: "error", Error: "load requires a url"})
			return
		}
		s.ctrl.Load(cmd.URL, cmd.Mtl)
	case "show":
		s.ctrl.Show()
	case "hide":
		s.ctrl.Hide()
	case "clear":
		s.ctrl.ClearModels()
	case "fps":
		if cmd.FPS <= 0 {
			s.reply(conn, Event{Event: "error", Error: "fps requires a positive value"})
			return
		}
		config.SetFPSLimit(cmd.FPS)
	case "stop":
		s.ctrl.Stop()
	default:
		s.reply(conn, Event{Event: "error", Error: "unknown op: " + cmd.Op})
	}
}

func (s *Server) reply(conn *websocket.Conn, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Debug("websocket write error: %v", err)
	}
}

// serveHome serves the embedded status/control page.
func (s *Server) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlContent))
}
