package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// RegisterRoutes attaches the MCP endpoint to the router. The endpoint
// accepts one JSON-RPC request per POST and answers CORS preflights so
// browser-hosted clients can connect.
func (s *Server) RegisterRoutes(router *mux.Router) {
	mcpRouter := router.PathPrefix("/mcp").Subrouter()
	mcpRouter.HandleFunc("", s.handleHTTPRequest).Methods("POST", "OPTIONS")
	mcpRouter.HandleFunc("/", s.handleHTTPRequest).Methods("POST", "OPTIONS")
}

// NewHTTPServer builds an http.Server exposing the MCP endpoint on addr.
func NewHTTPServer(s *Server, addr string) *http.Server {
	router := mux.NewRouter()
	s.RegisterRoutes(router)
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) handleHTTPRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	resp := s.Dispatch(r.Context(), body)
	if resp == nil {
		// Notification: acknowledged, nothing to send back.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("could not write HTTP response", "error", err)
	}
}
