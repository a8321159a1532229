package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/engine"
	"github.com/sells-group/invoice-cli/internal/export"
	"github.com/sells-group/invoice-cli/internal/model"
	"github.com/sells-group/invoice-cli/internal/store"
)

// fileRef is how clients reference a previously uploaded file.
type fileRef struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

func (f fileRef) toModel() model.File {
	name := f.Filename
	if name == "" {
		name = filepath.Base(f.Path)
	}
	return model.File{Filename: name, Path: f.Path}
}

// processRequest is the body of /api/process and /api/process-combined.
type processRequest struct {
	Files         []fileRef `json:"files"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	Format        string    `json:"format,omitempty"`
	BySKU         bool      `json:"by_sku,omitempty"`
}

// processResponse wraps the engine result with the download name.
type processResponse struct {
	*model.ProcessResult
	DownloadName string `json:"download_name,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "invoice-cli",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB<<20)
	if err := r.ParseMultipartForm(s.maxUploadMB << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files supplied")
		return
	}

	var saved []store.StoredFile
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable upload "+hdr.Filename)
			return
		}
		sf, err := s.engine.Workspace().SaveUpload(hdr.Filename, f)
		f.Close()
		if err != nil {
			zap.L().Error("save upload failed", zap.String("filename", hdr.Filename), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to store "+hdr.Filename)
			return
		}
		saved = append(saved, *sf)
	}

	writeJSON(w, http.StatusOK, map[string]any{"files": saved})
}

func (s *Server) handleProcess(combined bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req processRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		format, err := export.ParseFormat(req.Format)
		if err != nil {
			writeError(w, http.StatusBadRequest, "format must be csv or xlsx")
			return
		}

		files := make([]model.File, 0, len(req.Files))
		for _, f := range req.Files {
			files = append(files, f.toModel())
		}

		res, err := s.engine.Process(r.Context(), files, engine.Options{
			InvoiceNumber: req.InvoiceNumber,
			Combined:      combined,
			Format:        format,
			BySKU:         req.BySKU,
		})
		if err != nil {
			if eris.Is(err, engine.ErrNoInput) {
				writeError(w, http.StatusBadRequest, "no processable input files")
				return
			}
			zap.L().Error("process failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "processing failed")
			return
		}

		writeJSON(w, http.StatusOK, processResponse{
			ProcessResult: res,
			DownloadName:  filepath.Base(res.CSVPath),
		})
	}
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Files []fileRef `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	files := make([]model.File, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, f.toModel())
	}
	writeJSON(w, http.StatusOK, s.engine.ResolvePairs(files))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		File fileRef `json:"file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.engine.Preview(r.Context(), req.File.toModel())
	if err != nil {
		writeError(w, http.StatusBadRequest, "preview failed: unreadable file")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := s.engine.Workspace().OpenOutput(name)
	if err != nil {
		if errors.Is(eris.Cause(err), os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "artifact not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid artifact name")
		return
	}
	defer f.Close()

	ct := "text/csv; charset=utf-8"
	if strings.HasSuffix(name, ".xlsx") {
		ct = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	io.Copy(w, f)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxAgeHours int `json:"max_age_hours,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	maxAge := s.defaultSweep
	if req.MaxAgeHours > 0 {
		maxAge = time.Duration(req.MaxAgeHours) * time.Hour
	}

	removed, err := s.engine.Workspace().Sweep(maxAge)
	if err != nil {
		zap.L().Error("cleanup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
