package models

import "time"

// EntitlementKind distinguishes purchases from downloads.
type EntitlementKind string

const (
	KindPurchase EntitlementKind = "purchase"
	KindDownload EntitlementKind = "download"
)

// ImageSource tells where an entitled image lives.
type ImageSource string

const (
	SourceUpload   ImageSource = "upload"
	SourceProvider ImageSource = "provider"
)

// Valid reports whether s is a known source.
func (s ImageSource) Valid() bool {
	return s == SourceUpload || s == SourceProvider
}

// Entitlement records that a user purchased or downloaded an image.
// (UserID, ImageID, Kind) is unique.
type Entitlement struct {
	UserID    string          `json:"userId"`
	ImageID   string          `json:"imageId"`
	Kind      EntitlementKind `json:"kind"`
	Source    ImageSource     `json:"source"`
	Title     string          `json:"title,omitempty"`
	Price     Price           `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ImageIDs returns the image ids of es in order.
func ImageIDs(es []Entitlement) []string {
	ids := make([]string, 0, len(es))
	for _, e := range es {
		ids = append(ids, e.ImageID)
	}
	return ids
}
