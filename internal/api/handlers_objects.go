package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/dgallion1/pdfdesk/internal/blobstore"
	"github.com/dgallion1/pdfdesk/internal/pdfcheck"
)

const pdfContentType = "application/pdf"

type validationResult struct {
	Valid    bool   `json:"valid"`
	NumPages int    `json:"num_pages,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleUpload stores the raw request body. Content that does not read as a
// PDF is still stored; the validation result tells the caller.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	failed := true
	defer func() { s.stats.Observe("upload", start, failed) }()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		jsonError(w, "request body is empty", http.StatusBadRequest)
		return
	}

	res := pdfcheck.Inspect(data)
	key := uuid.NewString() + ".pdf"
	log := s.log.With("op", "upload", "key", key)

	if err := s.store.Put(r.Context(), key, pdfContentType, data); err != nil {
		log.Error("store upload", "error", err)
		jsonError(w, "failed to store file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	log.Info("stored upload", "bytes", len(data), "valid", res.Valid, "pages", res.NumPages)

	failed = false
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "File uploaded successfully",
		"file_key": key,
		"file_url": s.objectURL(r, key),
		"validation_result": validationResult{
			Valid:    res.Valid,
			NumPages: res.NumPages,
			Error:    res.Error,
		},
	})
}

// handleConvert checks a multipart "file" for a PDF/A-3 marker and converts
// it when the marker is missing.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	failed := true
	defer func() { s.stats.Observe("convert", start, failed) }()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	res := pdfcheck.Inspect(data)
	if !res.IsPDF {
		jsonError(w, "file is not a PDF", http.StatusBadRequest)
		return
	}
	if !res.Valid {
		jsonError(w, "unreadable PDF: "+res.Error, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	key := objectKey(header.Filename)
	log := s.log.With("op", "convert", "key", key)

	if err := s.store.Put(ctx, key, pdfContentType, data); err != nil {
		log.Error("store original", "error", err)
		jsonError(w, "failed to store file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if res.PDFA3 {
		log.Info("already compliant")
		failed = false
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "VALID",
			"message": "Already compliant",
		})
		return
	}

	select {
	case s.convertSem <- struct{}{}:
		defer func() { <-s.convertSem }()
	case <-ctx.Done():
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	converted, err := s.converter.Convert(ctx, data)
	if err != nil {
		log.Error("convert", "error", err)
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	convertedKey := "converted-" + key
	if err := s.store.Put(ctx, convertedKey, pdfContentType, converted); err != nil {
		log.Error("store converted", "error", err)
		jsonError(w, "failed to store converted file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	log.Info("converted", "bytes_in", len(data), "bytes_out", len(converted))

	failed = false
	writeJSON(w, http.StatusOK, map[string]string{
		"status":             "CONVERTED",
		"message":            "PDF converted to PDF/A-3",
		"converted_file_key": convertedKey,
	})
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list objects: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"objects": infos})
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	obj, err := s.store.Get(r.Context(), key)
	if errors.Is(err, blobstore.ErrNotFound) {
		jsonError(w, "object not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read object: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", key))
	w.Write(obj.Data)
}

func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	err := s.store.Delete(r.Context(), key)
	if errors.Is(err, blobstore.ErrNotFound) {
		jsonError(w, "object not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete object: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": key})
}

// objectURL is where a stored object can be fetched.
func (s *Server) objectURL(r *http.Request, key string) string {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/objects/" + key
}

// objectKey names an uploaded original: a UUID plus a slug of the client's
// filename, which keeps keys URL-safe.
func objectKey(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	id := uuid.NewString()
	if s := slug.Make(name); s != "" {
		return id + "-" + s + ".pdf"
	}
	return id + ".pdf"
}
