// internal/api/server.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hpmon/mblwz/internal/command"
	"github.com/hpmon/mblwz/internal/store"
)

// commandRequest is the wire shape of a remote command invocation. Level
// accepts both a JSON string and a bare number.
type commandRequest struct {
	Level json.Number `json:"level"`
	Code  int         `json:"code"`
}

// Server is the HTTP surface: two command endpoints plus the snapshot read
// boundary.
type Server struct {
	gateway *command.Gateway
	store   *store.Store
	log     *logrus.Entry
}

// New wires the HTTP surface to the gateway and the shared store.
func New(gateway *command.Gateway, st *store.Store, log *logrus.Entry) *Server {
	return &Server{gateway: gateway, store: st, log: log}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/cmd/setAiringLevelDay", s.handleCommand(s.gateway.SetAiringLevelDay)).Methods(http.MethodPost)
	r.HandleFunc("/cmd/setAiringLevelNight", s.handleCommand(s.gateway.SetAiringLevelNight)).Methods(http.MethodPost)
	r.HandleFunc("/data/{device}", s.handleData).Methods(http.MethodGet)
	return r
}

func (s *Server) handleCommand(invoke func(level string, code int) command.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, command.Result{Success: false, Message: "malformed request body"})
			return
		}

		res := invoke(req.Level.String(), req.Code)
		status := http.StatusOK
		if !res.Success {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, res)
	}
}

// handleData returns the current snapshot as a flat field-to-value map.
// An unknown device yields an empty object, not an error.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	device := mux.Vars(r)["device"]

	snap, ok := s.store.Get(device)
	if !ok {
		snap = store.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone at this point; nothing left to do but log.
		logrus.WithError(err).Warn("api: response encode failed")
	}
}
