package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/bboykorg/filecloude/internal/database"
	"github.com/bboykorg/filecloude/internal/models"
	"github.com/bboykorg/filecloude/internal/quota"
	"github.com/go-chi/chi/v5"
)

// multipartOverheadBytes is headroom on top of the storage ceiling for
// multipart boundaries and part headers, so the body reader never
// refuses a batch the planner would accept.
const multipartOverheadBytes = 32 << 20

type FileListResponse struct {
	Files        []models.File `json:"files"`
	UsedBytes    int64         `json:"used_bytes"`
	UsedReadable string        `json:"used_readable"`
	MaxBytes     int64         `json:"max_bytes"`
	MaxReadable  string        `json:"max_readable"`
}

type UploadResponse struct {
	Saved        []string `json:"saved"`
	UsedBytes    int64    `json:"used_bytes"`
	UsedReadable string   `json:"used_readable"`
	MaxBytes     int64    `json:"max_bytes"`
	MaxReadable  string   `json:"max_readable"`
}

type QuotaExceededResponse struct {
	Error     string `json:"error"`
	UsedBytes int64  `json:"used_bytes"`
	MaxBytes  int64  `json:"max_bytes"`
}

func (s *Server) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	files, err := s.store.ListFilesForUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to list files", http.StatusInternalServerError)
		return
	}

	used, err := s.accountant.UsedBytes(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to compute storage usage", http.StatusInternalServerError)
		return
	}

	maxBytes := s.config.Storage.QuotaBytes
	respondJSON(w, http.StatusOK, FileListResponse{
		Files:        files,
		UsedBytes:    used,
		UsedReadable: quota.FormatBytes(used),
		MaxBytes:     maxBytes,
		MaxReadable:  quota.FormatBytes(maxBytes),
	})
}

// UploadFilesHandler accepts a multipart batch under the "files" field.
// The whole batch is sized against the ceiling before any blob is
// written, blobs are stored under collision-resolved names, and the
// metadata rows commit in a single transaction at the end.
func (s *Server) UploadFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Storage.QuotaBytes+multipartOverheadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "error parsing multipart form")
		return
	}

	var headers = r.MultipartForm.File["files"]
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, "no files in request")
		return
	}

	used, err := s.accountant.UsedBytes(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute storage usage")
		return
	}

	candidates := make([]quota.Candidate, 0, len(headers))
	for _, fh := range headers {
		candidates = append(candidates, quota.Candidate{
			RequestedName: fh.Filename,
			DeclaredSize:  fh.Size,
		})
	}

	maxBytes := s.config.Storage.QuotaBytes
	assignments, err := quota.Plan(used, maxBytes, candidates, s.storage)
	if err != nil {
		var qerr *quota.QuotaExceededError
		if errors.As(err, &qerr) {
			respondJSON(w, http.StatusRequestEntityTooLarge, QuotaExceededResponse{
				Error:     "quota exceeded",
				UsedBytes: qerr.UsedBytes,
				MaxBytes:  qerr.MaxBytes,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to plan upload")
		return
	}

	saved := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		fh := headers[assignment.SourceIndex]

		src, err := fh.Open()
		if err != nil {
			s.discardBlobs(saved)
			respondError(w, http.StatusInternalServerError, "failed to read uploaded file")
			return
		}
		err = s.storage.Save(assignment.ResolvedName, src)
		src.Close()
		if err != nil {
			s.discardBlobs(saved)
			respondError(w, http.StatusInternalServerError, "failed to store file")
			return
		}
		saved = append(saved, assignment.ResolvedName)
	}

	// One commit per batch: a mid-batch insert failure rolls the whole
	// batch back and the just-written blobs are removed best-effort.
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		for _, filename := range saved {
			if _, err := q.CreateFile(r.Context(), claims.UserID, filename); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		log.Printf("ERROR: Failed to record upload batch for user %d: %v", claims.UserID, txErr)
		s.discardBlobs(saved)
		respondError(w, http.StatusInternalServerError, "failed to record uploaded files")
		return
	}

	if len(saved) > 0 {
		if err := s.store.LogEvent(r.Context(), claims.UserID, "files_uploaded", map[string]interface{}{"filenames": saved}); err != nil {
			log.Printf("WARN: Failed to log upload event for user %d: %v", claims.UserID, err)
		}
	}

	newUsed, err := s.accountant.UsedBytes(r.Context(), claims.UserID)
	if err != nil {
		newUsed = used
	}

	respondJSON(w, http.StatusCreated, UploadResponse{
		Saved:        saved,
		UsedBytes:    newUsed,
		UsedReadable: quota.FormatBytes(newUsed),
		MaxBytes:     maxBytes,
		MaxReadable:  quota.FormatBytes(maxBytes),
	})
}

func (s *Server) discardBlobs(filenames []string) {
	for _, filename := range filenames {
		if err := s.storage.Delete(filename); err != nil {
			log.Printf("WARN: Failed to remove blob %q during batch rollback: %v", filename, err)
		}
	}
}

func (s *Server) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, true)
}

// RawFileHandler streams a blob inline. The upstream design served this
// path without any ownership check; here it requires the same (user,
// filename) row as a download.
func (s *Server) RawFileHandler(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, false)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, asAttachment bool) {
	claims := GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filename := chi.URLParam(r, "filename")
	if filename == "" {
		http.Error(w, "Filename is required", http.StatusBadRequest)
		return
	}

	exists, err := s.store.FileExists(r.Context(), claims.UserID, filename)
	if err != nil {
		http.Error(w, "Failed to look up file", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	fileStream, err := s.storage.Open(filename)
	if err != nil {
		http.Error(w, "File not found on disk", http.StatusNotFound)
		return
	}
	defer fileStream.Close()

	if asAttachment {
		w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if size, err := s.storage.Size(filename); err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}

	io.Copy(w, fileStream)
}

// DeleteFileHandler removes the metadata row (idempotently) and then
// removes the blob best-effort. The response is success as soon as the
// row step completes; a failed blob removal is only logged.
func (s *Server) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filename := chi.URLParam(r, "filename")
	if filename == "" {
		http.Error(w, "Filename is required", http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteFile(r.Context(), claims.UserID, filename); err != nil {
		http.Error(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}

	if err := s.storage.Delete(filename); err != nil {
		log.Printf("WARN: Failed to remove blob %q for user %d: %v", filename, claims.UserID, err)
	}

	if err := s.store.LogEvent(r.Context(), claims.UserID, "file_deleted", map[string]interface{}{"filename": filename}); err != nil {
		log.Printf("WARN: Failed to log delete event for user %d: %v", claims.UserID, err)
	}

	w.WriteHeader(http.StatusNoContent)
}
