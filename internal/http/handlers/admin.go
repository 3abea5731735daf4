package handlers

import (
	"log"
	"net/http"

	"imagemarket/internal/http/respond"
	"imagemarket/internal/models"
	"imagemarket/internal/store"
)

type AdminHandler struct {
	store store.Store
}

func NewAdminHandler(s store.Store) *AdminHandler {
	return &AdminHandler{store: s}
}

// Health reports whether the upload store answers.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.store.ListUploads(r.Context(), models.UploadFilter{})
	if err != nil {
		log.Printf("health: %v", err)
		respond.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"uploadCount": len(uploads),
	})
}

// Stats counts uploads per category.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.store.ListUploads(r.Context(), models.UploadFilter{})
	if err != nil {
		respond.Error(w, err, "Failed to fetch stats")
		return
	}
	categories := map[string]int{}
	for _, u := range uploads {
		categories[u.Category]++
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"uploads":    len(uploads),
		"categories": categories,
	})
}
