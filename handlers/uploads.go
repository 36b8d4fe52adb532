// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/cliparse"
	"github.com/benny2744/ARS-BZ/middleware"
	"github.com/benny2744/ARS-BZ/models"
)

// MaxUploadSize is the largest accepted photo
const MaxUploadSize = 10 << 20

// allowedImageTypes maps accepted MIME types to the extension files of that
// type are stored under
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type UploadHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUploadHandler(db *sql.DB, cfg cliparse.Config) *UploadHandler {
	return &UploadHandler{db: db, cfg: cfg}
}

// Upload handles POST /upload (multipart form, field "file")
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around a maximum-size file
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusBadRequest, tooLargeMessage())
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > MaxUploadSize {
		middleware.ErrorResponse(w, http.StatusBadRequest, tooLargeMessage())
		return
	}

	mimeType := strings.ToLower(header.Header.Get("Content-Type"))
	ext, ok := allowedImageTypes[mimeType]
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid file type. Only images are allowed.")
		return
	}

	upload := models.Upload{
		ID:           auth.NewID(),
		Filename:     storedFilename(ext, time.Now()),
		OriginalName: header.Filename,
		MimeType:     mimeType,
		UploadedAt:   time.Now().UTC(),
	}
	upload.FileURL = "/files/" + upload.Filename

	upload.FileSize, err = h.store(upload.Filename, file)
	if err != nil {
		writeError(w, err, "failed to store upload", "filename", upload.Filename)
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO upload (id, filename, original_name, mime_type, file_size, file_url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, upload.ID, upload.Filename, upload.OriginalName, upload.MimeType, upload.FileSize, upload.FileURL, upload.UploadedAt)
	if err != nil {
		h.remove(upload.Filename)
		writeError(w, err, "failed to record upload", "filename", upload.Filename)
		return
	}

	slog.Info("file uploaded",
		"upload_id", upload.ID,
		"filename", upload.Filename,
		"mime_type", upload.MimeType,
		"size", humanize.IBytes(uint64(upload.FileSize)),
	)

	middleware.JSONResponse(w, http.StatusCreated, upload)
}

// store writes src under the upload root without following paths out of it
func (h *UploadHandler) store(name string, src io.Reader) (int64, error) {
	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	root, err := os.OpenRoot(h.cfg.UploadDir)
	if err != nil {
		return 0, fmt.Errorf("failed to open upload directory: %w", err)
	}
	defer root.Close()

	dst, err := root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		root.Remove(name)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return n, nil
}

func (h *UploadHandler) remove(name string) {
	root, err := os.OpenRoot(h.cfg.UploadDir)
	if err != nil {
		return
	}
	defer root.Close()
	if err := root.Remove(name); err != nil {
		slog.Warn("failed to remove orphaned upload", "filename", name, "error", err)
	}
}

// ServeFile handles GET /files/{path...}
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.PathValue("path"))[1:]
	if name == "" {
		writeError(w, ErrFileNotFound, "")
		return
	}

	root, err := os.OpenRoot(h.cfg.UploadDir)
	if err != nil {
		writeError(w, ErrFileNotFound, "")
		return
	}
	defer root.Close()

	f, err := root.Open(filepath.FromSlash(name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to open file", "path", name, "error", err)
		}
		writeError(w, ErrFileNotFound, "")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, ErrFileNotFound, "")
		return
	}

	// Stored names are never reused, so clients may cache forever
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// storedFilename builds "{unixMillis}_{random}.{ext}". ext comes from the
// validated MIME type, never from the client's filename: ServeFile derives
// Content-Type from it.
func storedFilename(ext string, now time.Time) string {
	random := strings.ReplaceAll(auth.NewID(), "-", "")[:12]
	return fmt.Sprintf("%d_%s.%s", now.UnixMilli(), random, ext)
}

func tooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %s.", humanize.IBytes(MaxUploadSize))
}
