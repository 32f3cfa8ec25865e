package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/seller-directory/internal/domain"
	"github.com/ignite/seller-directory/internal/importer"
	"github.com/ignite/seller-directory/internal/pkg/httputil"
)

// ImportHandlers provides HTTP handlers for the bulk import pipeline:
// preview (decode + validate + score), confirm (match + execute), and
// progress polling.
type ImportHandlers struct {
	service     *importer.Service
	maxFileSize int64
}

func NewImportHandlers(service *importer.Service, maxFileSize int64) *ImportHandlers {
	if maxFileSize <= 0 {
		maxFileSize = importer.DefaultMaxFileSize
	}
	return &ImportHandlers{service: service, maxFileSize: maxFileSize}
}

// RegisterRoutes registers the import routes.
func (h *ImportHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/directory/imports", func(r chi.Router) {
		r.Post("/preview", h.HandlePreview)
		r.Post("/", h.HandleImport)
		r.Get("/{uploadId}/progress", h.HandleProgress)
	})
}

// HandlePreview accepts one uploaded file and returns the normalized
// preview artifact.
// POST /api/directory/imports/preview
// Content-Type: multipart/form-data, "file" field
func (h *ImportHandlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	// +1 so an over-cap upload reaches the decoder and fails with the
	// proper error instead of a truncated parse
	if err := r.ParseMultipartForm(h.maxFileSize + 1); err != nil {
		httputil.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if declared := r.FormValue("mimeType"); declared != "" {
		mimeType = declared
	}

	result, err := h.service.Preview(r.Context(), data, mimeType, header.Filename)
	if err != nil {
		writeDecodeError(w, err)
		return
	}
	httputil.OK(w, result)
}

// ImportRequest is the confirm-call body: the record sets previously
// returned by preview (possibly caller-edited), or just the uploadId
// to import the stored session as-is.
type ImportRequest struct {
	UploadID  string                     `json:"uploadId"`
	Companies []domain.NormalizedCompany `json:"companies"`
	Contacts  []domain.NormalizedContact `json:"contacts"`
}

// HandleImport runs the confirmed import.
// POST /api/directory/imports
func (h *ImportHandlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.UploadID == "" && len(req.Companies) == 0 && len(req.Contacts) == 0 {
		httputil.BadRequest(w, "nothing to import")
		return
	}

	result, err := h.service.Import(r.Context(), req.UploadID, req.Companies, req.Contacts)
	if errors.Is(err, importer.ErrSessionNotFound) {
		httputil.NotFound(w, "upload session not found or expired")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, result)
}

// HandleProgress returns the latest progress event for a run.
// GET /api/directory/imports/{uploadId}/progress
func (h *ImportHandlers) HandleProgress(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadId")
	event, err := h.service.Progress(r.Context(), uploadID)
	if errors.Is(err, importer.ErrSessionNotFound) {
		httputil.NotFound(w, "no progress recorded for this upload")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, event)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, importer.ErrFileTooLarge):
		httputil.PayloadTooLarge(w, "file exceeds the 50 MB limit")
	case errors.Is(err, importer.ErrUnsupportedFormat):
		httputil.UnsupportedMediaType(w, "unsupported file format; use CSV, XLSX, or JSON")
	case errors.Is(err, importer.ErrMalformedFile), errors.Is(err, importer.ErrEmptyFile):
		httputil.UnprocessableEntity(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
