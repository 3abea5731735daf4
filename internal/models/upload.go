package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// Upload is an image listing submitted by a user.
type Upload struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	URL          string    `json:"url"`
	Thumbnail    string    `json:"thumbnail"`
	IsUserUpload bool      `json:"isUserUpload"`
	UserID       string    `json:"userId"`
	Price        Price     `json:"price"`
	Category     string    `json:"category"`
	Filename     string    `json:"filename"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UploadFilter selects uploads. Empty fields do not constrain the result.
type UploadFilter struct {
	UserID   string
	Category string
	Query    string
}

// Matches reports whether u satisfies every supplied filter. Category is
// compared exactly; Query is a case-folded substring match over title,
// description and filename.
func (f UploadFilter) Matches(u Upload) bool {
	if f.UserID != "" && u.UserID != f.UserID {
		return false
	}
	if f.Category != "" && f.Category != CategoryAll && u.Category != f.Category {
		return false
	}
	if f.Query == "" {
		return true
	}
	fold := cases.Fold()
	q := fold.String(f.Query)
	for _, field := range []string{u.Title, u.Description, u.Filename} {
		if field != "" && strings.Contains(fold.String(field), q) {
			return true
		}
	}
	return false
}

// UploadPatch is a shallow update; nil fields are left untouched. The media
// fields (url, thumbnail, filename) are fixed when the upload is created.
type UploadPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *Price  `json:"price,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// Apply returns u with the patch merged over it.
func (p UploadPatch) Apply(u Upload) Upload {
	if p.Title != nil {
		u.Title = *p.Title
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
	if p.Price != nil {
		u.Price = *p.Price
	}
	if p.Category != nil {
		u.Category = *p.Category
	}
	return u
}

// Empty reports whether the patch changes nothing.
func (p UploadPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.Category == nil
}
