package handlers

import (
	"net/http"
	"strings"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/http/respond"
	"imagemarket/internal/models"
	"imagemarket/internal/store"
)

type EntitlementHandler struct {
	store store.Store
}

func NewEntitlementHandler(s store.Store) *EntitlementHandler {
	return &EntitlementHandler{store: s}
}

type entitlementRequest struct {
	ImageID string             `json:"imageId"`
	Source  models.ImageSource `json:"source"`
	Title   string             `json:"title"`
}

// decodeEntitlement reads the body and fills in the source from the id
// prefix when the client leaves it out.
func decodeEntitlement(r *http.Request) (entitlementRequest, error) {
	var req entitlementRequest
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	req.ImageID = strings.TrimSpace(req.ImageID)
	if req.ImageID == "" {
		return req, apperrors.Validation("imageId is required")
	}
	if req.Source == "" {
		req.Source = models.SourceProvider
		if strings.HasPrefix(req.ImageID, store.UploadIDPrefix) {
			req.Source = models.SourceUpload
		}
	}
	if !req.Source.Valid() {
		return req, apperrors.Validation("Invalid source")
	}
	return req, nil
}

func (h *EntitlementHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEntitlement(r)
	if err != nil {
		respond.Error(w, err, "Failed to record purchase")
		return
	}

	e := models.Entitlement{
		UserID:  identity(r).UserID,
		ImageID: req.ImageID,
		Kind:    models.KindPurchase,
		Source:  req.Source,
		Title:   req.Title,
	}
	if req.Source == models.SourceUpload {
		upload, err := h.store.GetUpload(r.Context(), req.ImageID)
		if err != nil {
			respond.Error(w, err, "Failed to record purchase")
			return
		}
		e.Title, e.Price = upload.Title, upload.Price
	}

	recorded, err := h.store.RecordEntitlement(r.Context(), e)
	if err != nil {
		respond.Error(w, err, "Failed to record purchase")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"purchase": recorded,
	})
}

// Download records a download. Uploads need a prior purchase unless the
// caller owns them.
func (h *EntitlementHandler) Download(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEntitlement(r)
	if err != nil {
		respond.Error(w, err, "Failed to record download")
		return
	}

	caller := identity(r)
	e := models.Entitlement{
		UserID:  caller.UserID,
		ImageID: req.ImageID,
		Kind:    models.KindDownload,
		Source:  req.Source,
		Title:   req.Title,
	}
	if req.Source == models.SourceUpload {
		upload, err := h.store.GetUpload(r.Context(), req.ImageID)
		if err != nil {
			respond.Error(w, err, "Failed to record download")
			return
		}
		if upload.UserID != caller.UserID {
			bought, err := h.store.HasEntitlement(r.Context(), caller.UserID, upload.ID, models.KindPurchase)
			if err != nil {
				respond.Error(w, err, "Failed to record download")
				return
			}
			if !bought {
				respond.Error(w, apperrors.Forbidden("Purchase required before download"), "Failed to record download")
				return
			}
		}
		e.Title, e.Price = upload.Title, upload.Price
	}

	recorded, err := h.store.RecordEntitlement(r.Context(), e)
	if err != nil {
		respond.Error(w, err, "Failed to record download")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"download": recorded,
	})
}

func (h *EntitlementHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.KindPurchase, "purchases")
}

func (h *EntitlementHandler) ListDownloads(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.KindDownload, "downloads")
}

func (h *EntitlementHandler) list(w http.ResponseWriter, r *http.Request, kind models.EntitlementKind, key string) {
	es, err := h.store.ListEntitlements(r.Context(), identity(r).UserID, kind)
	if err != nil {
		respond.Error(w, err, "Failed to fetch "+key)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{key: es})
}
