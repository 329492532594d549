// Package remote serves a PropertyRegistry and DebugPanel over HTTP and websockets, so a scene's debug properties can be
// inspected and edited from a browser or script while it runs. The server never touches scene state itself: edits go
// through the registry and panel changes through the render loop's queue.
package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solarlune/framekit"
)

// Sink accepts Events for the render loop; a *framekit.RenderLoop or *framekit.FrameQueue will do.
type Sink interface {
	Post(ev framekit.Event)
}

// Property is the JSON form of a bound property.
type Property struct {
	Path    string   `json:"path"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	Value   any      `json:"value"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Step    float64  `json:"step,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

// EditRequest is the body of a property edit, over HTTP or the websocket. Path is only read from websocket messages.
type EditRequest struct {
	Path  string `json:"path,omitempty"`
	Value any    `json:"value"`
}

// EditReply is the websocket server's answer to each EditRequest.
type EditReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PanelState is the JSON form of the panel's visibility.
type PanelState struct {
	Visible bool `json:"visible"`
}

// Server is an http.Handler exposing the registry and panel.
type Server struct {
	registry *framekit.PropertyRegistry
	panel    *framekit.DebugPanel
	sink     Sink
	logger   logrus.FieldLogger
	router   *mux.Router
	upgrader websocket.Upgrader
}

// NewServer creates a Server. panel and sink may be nil, in which case the /panel routes report 404.
func NewServer(registry *framekit.PropertyRegistry, panel *framekit.DebugPanel, sink Sink, logger logrus.FieldLogger) *Server {

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	server := &Server{
		registry: registry,
		panel:    panel,
		sink:     sink,
		logger:   logger.WithField("component", "remote"),
		router:   mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	server.router.HandleFunc("/properties", server.listProperties).Methods(http.MethodGet)
	server.router.HandleFunc("/properties/{path:.+}", server.getProperty).Methods(http.MethodGet)
	server.router.HandleFunc("/properties/{path:.+}", server.putProperty).Methods(http.MethodPut)
	server.router.HandleFunc("/panel", server.getPanel).Methods(http.MethodGet)
	server.router.HandleFunc("/panel", server.putPanel).Methods(http.MethodPut)
	server.router.HandleFunc("/ws", server.serveWebsocket)

	return server

}

// ServeHTTP routes a request.
func (server *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	server.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (server *Server) ListenAndServe(ctx context.Context, addr string) error {

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		server.logger.WithField("addr", addr).Info("remote panel listening")
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return errors.Wrap(err, "remote panel server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}

}

// jsonValue converts a property value into something that encodes as plain JSON; colours become [r, g, b, a], which Edit
// accepts back.
func jsonValue(value any) any {
	if c, ok := value.(framekit.Color); ok {
		return []float32{c.R, c.G, c.B, c.A}
	}
	return value
}

func (server *Server) describe(desc framekit.PropertyDescriptor, snapshot map[string]any) Property {
	p := Property{
		Path:    desc.Path,
		Label:   desc.Label,
		Kind:    desc.Kind.String(),
		Value:   jsonValue(snapshot[desc.Path]),
		Step:    desc.Step,
		Choices: desc.Choices,
	}
	if desc.HasRange {
		min, max := desc.Min, desc.Max
		p.Min, p.Max = &min, &max
	}
	return p
}

func (server *Server) listProperties(w http.ResponseWriter, r *http.Request) {
	snapshot := server.registry.Snapshot()
	out := []Property{}
	for _, desc := range server.registry.Descriptors() {
		out = append(out, server.describe(desc, snapshot))
	}
	writeJSON(w, http.StatusOK, out)
}

func (server *Server) getProperty(w http.ResponseWriter, r *http.Request) {
	desc, ok := server.registry.Descriptor(mux.Vars(r)["path"])
	if !ok {
		writeJSON(w, http.StatusNotFound, EditReply{Error: "unknown property"})
		return
	}
	writeJSON(w, http.StatusOK, server.describe(desc, server.registry.Snapshot()))
}

func (server *Server) putProperty(w http.ResponseWriter, r *http.Request) {

	path := mux.Vars(r)["path"]

	if _, ok := server.registry.Descriptor(path); !ok {
		writeJSON(w, http.StatusNotFound, EditReply{Error: "unknown property"})
		return
	}

	req := EditRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, EditReply{Error: err.Error()})
		return
	}

	if err := server.registry.Edit(path, req.Value); err != nil {
		writeJSON(w, http.StatusBadRequest, EditReply{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, EditReply{OK: true})

}

func (server *Server) getPanel(w http.ResponseWriter, r *http.Request) {
	if server.panel == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, PanelState{Visible: server.panel.Visible()})
}

func (server *Server) putPanel(w http.ResponseWriter, r *http.Request) {

	if server.panel == nil || server.sink == nil {
		http.NotFound(w, r)
		return
	}

	state := PanelState{}
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeJSON(w, http.StatusBadRequest, EditReply{Error: err.Error()})
		return
	}

	server.sink.Post(framekit.PanelVisibilityEvent{Visible: state.Visible})
	writeJSON(w, http.StatusAccepted, EditReply{OK: true})

}

func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {

	conn, err := server.upgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := server.logger.WithField("client", r.RemoteAddr)
	log.Debug("websocket client connected")

	for {

		req := EditRequest{}
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}

		reply := EditReply{OK: true}
		if err := server.registry.Edit(req.Path, req.Value); err != nil {
			reply = EditReply{Error: err.Error()}
		}

		if err := conn.WriteJSON(reply); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}

	}

}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
