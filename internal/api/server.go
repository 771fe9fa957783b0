package api

import (
	"encoding/json"
	"net/http"

	"github.com/bboykorg/filecloude/internal/config"
	"github.com/bboykorg/filecloude/internal/database"
	"github.com/bboykorg/filecloude/internal/quota"
	"github.com/bboykorg/filecloude/internal/storage"
	"github.com/bboykorg/filecloude/internal/websocket"
)

type Server struct {
	config     *config.Config
	store      *database.Store
	storage    *storage.LocalStorage
	wsHub      *websocket.Hub
	accountant *quota.Accountant
}

func NewServer(cfg *config.Config, store *database.Store, storage *storage.LocalStorage, wsHub *websocket.Hub) *Server {
	return &Server{
		config:     cfg,
		store:      store,
		storage:    storage,
		wsHub:      wsHub,
		accountant: quota.NewAccountant(store, storage),
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.GetPool().Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
