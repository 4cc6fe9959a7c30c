package gateway

import (
	"net/http"
	"perch/internal/agent"
	"perch/internal/channels"
	"perch/internal/history"
)

type Server struct {
	runner agent.Runner
	store  *history.Store
	token  string
	mux    *http.ServeMux
}

func NewServer(runner agent.Runner, store *history.Store, token string, chs ...channels.Channel) *Server {
	s := &Server{
		runner: runner,
		store:  store,
		token:  token,
		mux:    http.NewServeMux(),
	}
	s.routes()
	for _, ch := range chs {
		ch.RegisterRoutes(s.mux)
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /v1/chat", s.auth(s.handleChat))
	s.mux.HandleFunc("GET /v1/sessions", s.auth(s.handleListSessions))
	s.mux.HandleFunc("GET /v1/sessions/{id}", s.auth(s.handleGetSession))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

// auth enforces the bearer token when one is configured.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
