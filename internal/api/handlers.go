package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"skyeserver/internal/blob"
	"skyeserver/internal/storage"
)

const Version = "0.2.0"

type ContentStore interface {
	ListContent(ctx context.Context) ([]storage.ContentItem, error)
	GetContent(ctx context.Context, id string) (*storage.ContentItem, error)
	CreateContent(ctx context.Context, n storage.NewContent) (*storage.ContentItem, error)
	DeleteContent(ctx context.Context, id string) error
	Stats(ctx context.Context) (total int, sized int, bytes int64, err error)
}

type UploadBroker interface {
	RequestUploadTarget(ctx context.Context) (*blob.UploadTarget, error)
}

type Handler struct {
	store      ContentStore
	broker     UploadBroker
	logger     zerolog.Logger
	publicBase string
}

// NewHandler serves the content, upload and analytics endpoints. Video URLs
// are built as publicBaseURL/bucketName/fileName.
func NewHandler(store ContentStore, broker UploadBroker, logger zerolog.Logger, publicBaseURL, bucketName string) *Handler {
	return &Handler{
		store:      store,
		broker:     broker,
		logger:     logger,
		publicBase: strings.TrimRight(publicBaseURL, "/") + "/" + url.PathEscape(bucketName),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListContent(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list content")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list content")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.store.GetContent(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "CONTENT_NOT_FOUND", "Content not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("failed to get content")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get content")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}

	if missing := missingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Missing required fields: "+strings.Join(missing, ", ")+".")
		return
	}
	if req.FileSize < 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "fileSize must not be negative.")
		return
	}

	thumbnail := req.Thumbnail
	if thumbnail == "" && req.ThumbnailFileName != "" {
		thumbnail = h.PublicURL(req.ThumbnailFileName)
	}
	source := req.Source
	if source == "" {
		source = storage.SourceFile
	}

	item, err := h.store.CreateContent(r.Context(), storage.NewContent{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Featured:    req.Featured,
		Thumbnail:   thumbnail,
		Source:      source,
		VideoURL:    h.PublicURL(req.FileName),
		FileSize:    req.FileSize,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("title", req.Title).Msg("failed to create content")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create content")
		return
	}

	h.logger.Info().
		Str("id", item.ID).
		Str("title", item.Title).
		Str("category", item.Category).
		Msg("content created")

	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Content ID is required.")
		return
	}

	err := h.store.DeleteContent(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "CONTENT_NOT_FOUND", "Content not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("failed to delete content")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete content")
		return
	}

	h.logger.Info().Str("id", id).Msg("content deleted")
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Content deleted successfully."})
}

func (h *Handler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	target, err := h.broker.RequestUploadTarget(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get upload url")
		writeError(w, http.StatusBadGateway, "UPLOAD_TARGET_FAILED", "Failed to get upload URL from storage provider.")
		return
	}

	writeJSON(w, http.StatusOK, UploadTargetResponse{
		UploadURL:          target.UploadURL,
		AuthorizationToken: target.AuthorizationToken,
	})
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	total, sized, size, err := h.store.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count content")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load analytics")
		return
	}

	used := "N/A"
	if sized > 0 {
		used = humanize.Bytes(uint64(size))
	}

	writeJSON(w, http.StatusOK, AnalyticsResponse{
		TotalVideos: total,
		StorageUsed: used,
	})
}

// PublicURL is where a stored object can be fetched from.
func (h *Handler) PublicURL(fileName string) string {
	return h.publicBase + "/" + url.PathEscape(fileName)
}

func missingFields(req CreateContentRequest) []string {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(req.FileName) == "" {
		missing = append(missing, "fileName")
	}
	return missing
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
