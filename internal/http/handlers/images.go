package handlers

import (
	"context"
	"net/http"
	"strconv"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/http/respond"
	"imagemarket/internal/models"
)

// ImageProvider is the external photo source. Implementations return an
// empty result alongside any error.
type ImageProvider interface {
	Search(ctx context.Context, query string, page, perPage int) (models.SearchResult, error)
	Random(ctx context.Context, count int) ([]models.ProviderImage, error)
}

type ImageHandler struct {
	provider ImageProvider
}

func NewImageHandler(p ImageProvider) *ImageHandler {
	return &ImageHandler{provider: p}
}

func (h *ImageHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	if query == "" {
		respond.Error(w, apperrors.Validation("Query parameter is required"), "Failed to search images")
		return
	}
	page, err := positiveInt(q.Get("page"), 1)
	if err != nil {
		respond.Error(w, err, "Failed to search images")
		return
	}
	perPage, err := positiveInt(q.Get("per_page"), 24)
	if err != nil {
		respond.Error(w, err, "Failed to search images")
		return
	}

	result, err := h.provider.Search(r.Context(), query, page, perPage)
	respond.JSON(w, http.StatusOK, map[string]any{
		"results":     result.Results,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"degraded":    err != nil,
	})
}

func (h *ImageHandler) Random(w http.ResponseWriter, r *http.Request) {
	count, err := positiveInt(r.URL.Query().Get("count"), 24)
	if err != nil {
		respond.Error(w, err, "Failed to fetch images")
		return
	}
	images, err := h.provider.Random(r.Context(), count)
	respond.JSON(w, http.StatusOK, map[string]any{
		"results":  images,
		"degraded": err != nil,
	})
}

func positiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.Validation("Invalid number: " + raw)
	}
	return n, nil
}
