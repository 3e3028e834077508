package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/gateway"
	"github.com/ashureev/apsfd-portal/internal/identity"
	"github.com/ashureev/apsfd-portal/internal/upload"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temporary files.
const multipartMemory = 32 << 20

type addedFile struct {
	Name     string   `json:"name"`
	MimeType string   `json:"mime_type"`
	Warnings []string `json:"warnings,omitempty"`
}

type addFilesResponse struct {
	upload.Snapshot
	Added []addedFile `json:"added"`
}

type dragRequest struct {
	Event upload.DragEvent `json:"event"`
}

// GetUpload returns the pending queue and drop-zone state.
func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, identity.SessionFromContext(r.Context()).Queue().Snapshot())
}

// AddFiles appends every file of the multipart "files" field to the queue.
// Per-file size and extension limits are reported, not enforced. A batch
// that would overflow the session's queue cap is refused.
func (h *Handler) AddFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Upload.MaxRequestBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "upload request too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Debug("Failed to remove multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File[gateway.UploadField]
	if len(headers) == 0 {
		Error(w, http.StatusBadRequest, "no files provided")
		return
	}

	files := make([]domain.PendingFile, 0, len(headers))
	added := make([]addedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readPart(fh)
		if err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		files = append(files, f)
		added = append(added, addedFile{Name: f.Name, MimeType: f.MimeType, Warnings: f.Warnings()})
	}

	queue := identity.SessionFromContext(r.Context()).Queue()
	if err := queue.Add(files...); err != nil {
		Error(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	JSON(w, http.StatusOK, addFilesResponse{Snapshot: queue.Snapshot(), Added: added})
}

func readPart(fh *multipart.FileHeader) (domain.PendingFile, error) {
	src, err := fh.Open()
	if err != nil {
		return domain.PendingFile{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			slog.Debug("Failed to close multipart file", "file", fh.Filename, "error", closeErr)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return domain.PendingFile{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return upload.NewFile(fh.Filename, fh.Header.Get("Content-Type"), data), nil
}

// RemoveFile drops one pending file by position.
func (h *Handler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid file index")
		return
	}

	queue := identity.SessionFromContext(r.Context()).Queue()
	if err := queue.Remove(index); err != nil {
		Error(w, http.StatusNotFound, err.Error())
		return
	}
	JSON(w, http.StatusOK, queue.Snapshot())
}

// Drag forwards a drag-and-drop event to the drop zone.
func (h *Handler) Drag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	queue := identity.SessionFromContext(r.Context()).Queue()
	if err := queue.Drag(req.Event); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, queue.Snapshot())
}

// SubmitUpload sends the whole queue to the upload webhook. The call
// completes even if the client disconnects.
func (h *Handler) SubmitUpload(w http.ResponseWriter, r *http.Request) {
	sess := identity.SessionFromContext(r.Context())
	queue := sess.Queue()

	_, err := queue.Submit(context.WithoutCancel(r.Context()), h.uploader)
	switch {
	case errors.Is(err, upload.ErrUploadInFlight):
		Error(w, http.StatusConflict, err.Error())
	case err != nil:
		slog.Warn("Upload batch rejected", "session_id", sess.ID, "error", err)
		JSON(w, http.StatusBadGateway, queue.Snapshot())
	default:
		JSON(w, http.StatusOK, queue.Snapshot())
	}
}
