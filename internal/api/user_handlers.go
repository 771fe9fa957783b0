package api

import (
	"net/http"

	"github.com/bboykorg/filecloude/internal/quota"
)

func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, claims)
}

type StorageUsageResponse struct {
	UsedBytes    int64  `json:"used_bytes"`
	UsedReadable string `json:"used_readable"`
	MaxBytes     int64  `json:"max_bytes"`
	MaxReadable  string `json:"max_readable"`
}

func (s *Server) GetStorageUsageHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	used, err := s.accountant.UsedBytes(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to compute storage usage", http.StatusInternalServerError)
		return
	}

	maxBytes := s.config.Storage.QuotaBytes
	respondJSON(w, http.StatusOK, StorageUsageResponse{
		UsedBytes:    used,
		UsedReadable: quota.FormatBytes(used),
		MaxBytes:     maxBytes,
		MaxReadable:  quota.FormatBytes(maxBytes),
	})
}
