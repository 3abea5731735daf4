package handlers

import (
	stderrors "errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/http/respond"
	"imagemarket/internal/media"
	"imagemarket/internal/models"
	"imagemarket/internal/store"
)

const (
	defaultTitle    = "Untitled"
	defaultPrice    = "10.00"
	defaultCategory = "other"
)

type UploadHandler struct {
	store store.Store
	media *media.Store
}

func NewUploadHandler(s store.Store, m *media.Store) *UploadHandler {
	return &UploadHandler{store: s, media: m}
}

func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uploads, err := h.store.ListUploads(r.Context(), models.UploadFilter{
		UserID:   q.Get("user_id"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
	})
	if err != nil {
		respond.Error(w, err, "Failed to fetch images")
		return
	}
	respond.JSON(w, http.StatusOK, uploads)
}

// Create stores a multipart upload. The file part is optional; without it the
// listing points at the placeholder image.
func (h *UploadHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.media.MaxBytes()+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			respond.Error(w, apperrors.Validation("File too large"), "Failed to upload image")
			return
		}
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "Invalid form data", err), "Failed to upload image")
		return
	}
	defer r.MultipartForm.RemoveAll()

	price, err := models.ParsePrice(formValue(r, "price", defaultPrice))
	if err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "Invalid price", err), "Failed to upload image")
		return
	}

	saved := media.Placeholder()
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		saved, err = h.media.Save(header.Filename, file)
		if err != nil {
			respond.Error(w, err, "Failed to upload image")
			return
		}
	case stderrors.Is(err, http.ErrMissingFile):
	default:
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "Invalid file", err), "Failed to upload image")
		return
	}

	upload, err := h.store.CreateUpload(r.Context(), models.Upload{
		Title:        formValue(r, "title", defaultTitle),
		Description:  r.FormValue("description"),
		URL:          saved.URL,
		Thumbnail:    saved.ThumbnailURL,
		IsUserUpload: true,
		UserID:       identity(r).UserID,
		Price:        price,
		Category:     formValue(r, "category", defaultCategory),
		Filename:     saved.Filename,
	})
	if err != nil {
		h.media.Remove(saved.URL, saved.ThumbnailURL)
		respond.Error(w, err, "Failed to upload image")
		return
	}

	log.Printf("upload %s created by %s", upload.ID, upload.UserID)
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Image uploaded successfully",
		"image":   upload,
	})
}

func formValue(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

// Mine lists the caller's uploads.
func (h *UploadHandler) Mine(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.store.ListUploads(r.Context(), models.UploadFilter{UserID: identity(r).UserID})
	if err != nil {
		respond.Error(w, err, "Failed to fetch user uploads")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"uploads": uploads,
	})
}

func (h *UploadHandler) Get(w http.ResponseWriter, r *http.Request) {
	upload, err := h.store.GetUpload(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.Error(w, err, "Failed to fetch image metadata")
		return
	}
	respond.JSON(w, http.StatusOK, upload)
}

// File serves the stored image, or redirects when it lives elsewhere.
func (h *UploadHandler) File(w http.ResponseWriter, r *http.Request) {
	upload, err := h.store.GetUpload(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.Error(w, err, "Failed to access image")
		return
	}
	if path, ok := h.media.FilePath(upload.URL); ok {
		http.ServeFile(w, r, path)
		return
	}
	http.Redirect(w, r, upload.URL, http.StatusFound)
}

func (h *UploadHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	upload, err := h.store.GetUpload(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.Error(w, err, "Failed to access image thumbnail")
		return
	}
	target := upload.Thumbnail
	if target == "" {
		target = media.PlaceholderThumbnail
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Update merges the JSON body over the stored upload. Identity and media
// fields cannot be changed.
func (h *UploadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.owned(r, id); err != nil {
		respond.Error(w, err, "Failed to update image")
		return
	}

	var patch models.UploadPatch
	if err := decodeJSON(r, &patch); err != nil {
		respond.Error(w, err, "Failed to update image")
		return
	}
	upload, err := h.store.UpdateUpload(r.Context(), id, patch)
	if err != nil {
		respond.Error(w, err, "Failed to update image")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Image updated successfully",
		"image":   upload,
	})
}

func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	upload, err := h.owned(r, id)
	if err != nil {
		respond.Error(w, err, "Failed to delete image")
		return
	}
	if err := h.store.DeleteUpload(r.Context(), id); err != nil {
		respond.Error(w, err, "Failed to delete image")
		return
	}
	h.media.Remove(upload.URL, upload.Thumbnail)

	log.Printf("upload %s deleted", id)
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Image deleted successfully",
	})
}

// owned loads the upload and checks that a verified caller owns it.
// Unverified callers are not checked.
func (h *UploadHandler) owned(r *http.Request, id string) (models.Upload, error) {
	upload, err := h.store.GetUpload(r.Context(), id)
	if err != nil {
		return models.Upload{}, err
	}
	caller := identity(r)
	if caller.Verified && upload.UserID != caller.UserID {
		return models.Upload{}, apperrors.Forbidden("Forbidden")
	}
	return upload, nil
}
