package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/http/respond"
	"imagemarket/internal/models"
	"imagemarket/internal/security"
	"imagemarket/internal/store"
)

type AuthHandler struct {
	store    store.Store
	tokens   *security.TokenIssuer
	sessions *security.SessionStore
}

func NewAuthHandler(s store.Store, tokens *security.TokenIssuer, sessions *security.SessionStore) *AuthHandler {
	return &AuthHandler{
		store:    s,
		tokens:   tokens,
		sessions: sessions,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, err, "Registration failed")
		return
	}

	if err := security.ValidateRegistration(req.Username, req.Email, req.Password); err != nil {
		respond.Error(w, err, "Registration failed")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User registered successfully",
	})
}

// Login accepts any non-empty credentials and hands out a fresh token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, err, "Authentication failed")
		return
	}

	if err := security.ValidateLogin(req.Email, req.Password); err != nil {
		respond.Error(w, err, "Authentication failed")
		return
	}

	user := models.User{
		ID:       security.NewUserID(),
		Email:    req.Email,
		Username: models.UsernameFromEmail(req.Email),
	}
	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		respond.Error(w, apperrors.Internal("issue token", err), "Authentication failed")
		return
	}
	if err := h.sessions.Save(w, r, user.ID, user.Email); err != nil {
		log.Printf("login: %v", err)
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		log.Printf("logout: %v", err)
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logout successful",
	})
}

// Profile reports who the caller is and which images they own, bought or
// downloaded.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	userID, email := models.DemoUserID, models.DemoEmail

	if sid, semail, ok := h.sessions.Load(r); ok {
		userID = sid
		if semail != "" {
			email = semail
		}
	}
	q := r.URL.Query()
	if v := q.Get("email"); v != "" {
		email = v
	}
	if v := q.Get("userId"); v != "" {
		userID = v
	}
	if id.Verified {
		userID, email = id.UserID, id.Email
	}

	metadata := map[string]any{}
	if raw := q.Get("imageMetadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil || metadata == nil {
			log.Printf("profile: ignoring imageMetadata: %v", err)
			metadata = map[string]any{}
		}
	}

	ctx := r.Context()
	purchases, err := h.store.ListEntitlements(ctx, userID, models.KindPurchase)
	if err != nil {
		respond.Error(w, err, "Failed to fetch profile")
		return
	}
	downloads, err := h.store.ListEntitlements(ctx, userID, models.KindDownload)
	if err != nil {
		respond.Error(w, err, "Failed to fetch profile")
		return
	}
	uploads, err := h.store.ListUploads(ctx, models.UploadFilter{UserID: userID})
	if err != nil {
		respond.Error(w, err, "Failed to fetch profile")
		return
	}
	uploaded := make([]string, 0, len(uploads))
	for _, u := range uploads {
		uploaded = append(uploaded, u.ID)
	}

	respond.JSON(w, http.StatusOK, models.Profile{
		ID:                userID,
		Username:          models.UsernameFromEmail(email),
		Email:             email,
		PurchasedImages:   models.ImageIDs(purchases),
		DownloadedImages:  models.ImageIDs(downloads),
		UploadedImages:    uploaded,
		PurchasedMetadata: metadata,
	})
}

// UpdateProfile echoes the submitted fields back. Nothing is stored.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	fields := map[string]any{}
	if err := decodeJSON(r, &fields); err != nil || fields == nil {
		respond.Error(w, apperrors.Validation("Invalid request"), "Failed to update profile")
		return
	}
	if id, _ := fields["id"].(string); id == "" {
		fields["id"] = identity(r).UserID
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"user":    fields,
	})
}
