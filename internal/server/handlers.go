package server

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aditus-hr/pdffield/internal/config"
	"github.com/aditus-hr/pdffield/internal/pdf"
	"github.com/aditus-hr/pdffield/internal/storage"
)

// StatusResponse reports service liveness
type StatusResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ProcessResponse reports the outcome of a stamping request
type ProcessResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ProcessedFiles int    `json:"processed_files"`
	Successful     int    `json:"successful"`
	Failed         int    `json:"failed"`
	DownloadURL    string `json:"download_url,omitempty"`
	FileID         string `json:"file_id,omitempty"`
}

// CleanupResponse reports how many artifacts a cleanup removed
type CleanupResponse struct {
	Cleaned int    `json:"cleaned"`
	FileID  string `json:"file_id"`
	Message string `json:"message"`
}

// ErrorResponse carries a request failure
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:    "active",
		Message:   fmt.Sprintf("%s v%s is running", s.config.ServerName, s.config.Version),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:    "healthy",
		Message:   "service operational",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// handleProcessSingle stamps one uploaded PDF. The uploaded input artifact
// is always removed afterwards; the stamped output stays retrievable under
// the returned identifier until cleaned up.
func (s *Server) handleProcessSingle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.config.MaxFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid multipart request"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing 'file' upload"})
		return
	}
	defer file.Close()

	if !isPDFName(header.Filename) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "the file must be a PDF"})
		return
	}

	fieldCfg, kind := s.fieldParams(r)

	id := s.store.NewID()
	inputPath, err := s.store.SaveInput(id, file)
	if err != nil {
		log.Printf("failed to store upload %s: %v", header.Filename, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to store upload"})
		return
	}
	defer s.store.Remove(inputPath)

	result, err := s.service.StampFile(pdf.StampFileRequest{
		InputPath:  inputPath,
		OutputPath: s.store.OutputPath(id),
		Field:      fieldCfg,
		Kind:       kind,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if !result.Success {
		log.Printf("failed to stamp %s (id %s): %s", header.Filename, id, result.Message)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: result.Message})
		return
	}

	writeJSON(w, http.StatusOK, ProcessResponse{
		Success:        true,
		Message:        "PDF processed successfully",
		ProcessedFiles: 1,
		Successful:     1,
		DownloadURL:    "/download/" + id,
		FileID:         id,
	})
}

// handleProcessMultiple stamps a batch of uploads sequentially and bundles
// the successful outputs into a ZIP. A failure on one file does not stop
// the rest; the response carries per-batch counts.
func (s *Server) handleProcessMultiple(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.config.MaxFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid multipart request"})
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "no files provided"})
		return
	}
	for _, fh := range files {
		if !isPDFName(fh.Filename) {
			writeJSON(w, http.StatusBadRequest,
				ErrorResponse{Error: fmt.Sprintf("all files must be PDFs: %s", fh.Filename)})
			return
		}
	}

	fieldCfg, kind := s.fieldParams(r)

	batchID := s.store.NewID()
	batchDir, err := s.store.CreateBatchDir(batchID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to create batch workspace"})
		return
	}

	successful, failed := 0, 0
	for _, fh := range files {
		if err := s.stampUpload(fh, batchDir, fieldCfg, kind); err != nil {
			log.Printf("failed to stamp %s (batch %s): %v", fh.Filename, batchID, err)
			failed++
			continue
		}
		successful++
	}

	if successful == 0 {
		s.store.Cleanup(batchID)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "no file could be processed"})
		return
	}

	if err := s.bundleBatch(batchID, batchDir); err != nil {
		log.Printf("failed to bundle batch %s: %v", batchID, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to package results"})
		return
	}

	writeJSON(w, http.StatusOK, ProcessResponse{
		Success:        true,
		Message:        fmt.Sprintf("processed %d of %d files", successful, len(files)),
		ProcessedFiles: len(files),
		Successful:     successful,
		Failed:         failed,
		DownloadURL:    "/download-zip/" + batchID,
		FileID:         batchID,
	})
}

// stampUpload stores one batch upload in the batch workspace, stamps it
// and removes the stored input again.
func (s *Server) stampUpload(fh *multipart.FileHeader, batchDir string, fieldCfg pdf.FieldConfig, kind pdf.FieldKind) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	name := filepath.Base(fh.Filename)
	inputPath := filepath.Join(batchDir, "input_"+name)
	outputPath := filepath.Join(batchDir, "processed_"+name)

	dst, err := os.Create(inputPath)
	if err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}
	if _, err := io.Copy(dst, f); err != nil {
		dst.Close()
		return fmt.Errorf("failed to store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}
	defer s.store.Remove(inputPath)

	result, err := s.service.StampFile(pdf.StampFileRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Field:      fieldCfg,
		Kind:       kind,
	})
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}
	return nil
}

// bundleBatch zips the stamped outputs of a batch under their original names
func (s *Server) bundleBatch(batchID, batchDir string) error {
	processed, err := filepath.Glob(filepath.Join(batchDir, "processed_*"))
	if err != nil {
		return err
	}

	zipFile, err := os.Create(s.store.ZipPath(batchID))
	if err != nil {
		return fmt.Errorf("failed to create zip: %w", err)
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)
	for _, path := range processed {
		entryName := strings.TrimPrefix(filepath.Base(path), "processed_")
		entry, err := zw.Create(entryName)
		if err != nil {
			return fmt.Errorf("failed to create zip entry: %w", err)
		}
		src, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open stamped file: %w", err)
		}
		if _, err := io.Copy(entry, src); err != nil {
			src.Close()
			return fmt.Errorf("failed to write zip entry: %w", err)
		}
		src.Close()
	}
	return zw.Close()
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !storage.ValidID(id) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid file identifier"})
		return
	}
	path := s.store.OutputPath(id)
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "file not found"})
		return
	}

	// The artifact's kind is chosen per request, so the filename stays
	// kind-neutral.
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "stamped_"+id+".pdf"))
	http.ServeFile(w, r, path)
}

func (s *Server) handleDownloadZip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !storage.ValidID(id) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid file identifier"})
		return
	}
	path := s.store.ZipPath(id)
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "zip file not found"})
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "processed_pdfs_"+id+".zip"))
	http.ServeFile(w, r, path)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !storage.ValidID(id) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid file identifier"})
		return
	}
	cleaned := s.store.Cleanup(id)
	writeJSON(w, http.StatusOK, CleanupResponse{
		Cleaned: cleaned,
		FileID:  id,
		Message: fmt.Sprintf("cleaned %d items", cleaned),
	})
}

func (s *Server) handleDefaultConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"field_name": config.DefaultFieldName,
		"x_pos":      config.DefaultFieldX,
		"y_pos":      config.DefaultFieldY,
		"width":      config.DefaultFieldWidth,
		"height":     config.DefaultFieldHeight,
		"kind":       s.config.FieldKind,
		"description": map[string]string{
			"field_name": "name of the form field",
			"x_pos":      "x position in points (-27 = 27 points from the right edge)",
			"y_pos":      "y position in points from the bottom edge",
			"width":      "field width in points",
			"height":     "field height in points",
			"kind":       "field kind: 'image' (pushbutton) or 'signature' (text field)",
		},
	})
}

// fieldParams reads the optional placement parameters from a request,
// falling back to the server's configured defaults.
func (s *Server) fieldParams(r *http.Request) (pdf.FieldConfig, pdf.FieldKind) {
	cfg := pdf.FieldConfig{
		Name:    s.config.FieldName,
		XOffset: s.config.FieldX,
		YOffset: s.config.FieldY,
		Width:   s.config.FieldWidth,
		Height:  s.config.FieldHeight,
	}

	if v := r.FormValue("field_name"); v != "" {
		cfg.Name = v
	}
	cfg.XOffset = intFormValue(r, "x_pos", cfg.XOffset)
	cfg.YOffset = intFormValue(r, "y_pos", cfg.YOffset)
	cfg.Width = intFormValue(r, "width", cfg.Width)
	cfg.Height = intFormValue(r, "height", cfg.Height)

	kind := pdf.FieldKind(s.config.FieldKind)
	if v := r.FormValue("kind"); v != "" {
		if k := pdf.FieldKind(v); k.Valid() {
			kind = k
		}
	}

	return cfg, kind
}

func intFormValue(r *http.Request, key string, fallback int) int {
	v := r.FormValue(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func isPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
