// Package store defines the repositories behind the upload catalogue and
// the purchase/download ledger, plus an in-memory implementation.
package store

import (
	"context"

	"imagemarket/internal/models"
)

// UploadRepository stores upload listings.
type UploadRepository interface {
	ListUploads(ctx context.Context, filter models.UploadFilter) ([]models.Upload, error)
	// GetUpload returns a NotFound error for unknown ids.
	GetUpload(ctx context.Context, id string) (models.Upload, error)
	// CreateUpload assigns ID and CreatedAt when they are empty.
	CreateUpload(ctx context.Context, upload models.Upload) (models.Upload, error)
	UpdateUpload(ctx context.Context, id string, patch models.UploadPatch) (models.Upload, error)
	DeleteUpload(ctx context.Context, id string) error
}

// EntitlementRepository stores purchases and downloads per user.
type EntitlementRepository interface {
	// RecordEntitlement is idempotent per (user, image, kind); the first
	// record wins and is returned on later calls.
	RecordEntitlement(ctx context.Context, e models.Entitlement) (models.Entitlement, error)
	ListEntitlements(ctx context.Context, userID string, kind models.EntitlementKind) ([]models.Entitlement, error)
	HasEntitlement(ctx context.Context, userID, imageID string, kind models.EntitlementKind) (bool, error)
}

// Store is the full persistence surface used by the HTTP layer.
type Store interface {
	UploadRepository
	EntitlementRepository
	Close() error
}
