package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/docpane/docpane/pkg/config"
	"github.com/docpane/docpane/pkg/docsearch"
	"github.com/docpane/docpane/pkg/log"
)

// Server exposes the search backend over HTTP: a stateless one-shot search
// endpoint, the versions listing, and a websocket endpoint that runs a full
// interactive session per connection.
type Server struct {
	backend docsearch.Backend
	logger  *log.Logger

	mu  sync.RWMutex
	cfg *config.Config
}

func NewServer(backend docsearch.Backend, cfg *config.Config) *Server {
	return &Server{
		backend: backend,
		cfg:     cfg,
		logger:  log.ForService("api"),
	}
}

// Reload swaps the configuration. In-flight requests and connected live
// sessions keep the configuration they started with; new ones pick up the
// reloaded values.
func (s *Server) Reload(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *Server) config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
