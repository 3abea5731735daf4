package models

import "strings"

// DemoUserID owns every upload created while tokens are not verified.
const DemoUserID = "user_123"

// DemoEmail is reported by profile lookups that carry no identity.
const DemoEmail = "demo@example.com"

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Session is the client-held login state returned by login.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type Profile struct {
	ID                string         `json:"id"`
	Username          string         `json:"username"`
	Email             string         `json:"email"`
	PurchasedImages   []string       `json:"purchasedImages"`
	DownloadedImages  []string       `json:"downloadedImages"`
	UploadedImages    []string       `json:"uploadedImages"`
	PurchasedMetadata map[string]any `json:"purchasedMetadata"`
}

// UsernameFromEmail returns the local part of an email address.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
