package store

import (
	"context"
	"sync"
	"time"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/models"
)

// Memory keeps uploads and entitlements for the lifetime of the process.
type Memory struct {
	mu           sync.RWMutex
	uploads      []models.Upload
	entitlements []models.Entitlement
	ids          *IDGenerator
	now          func() time.Time
}

// NewMemory returns an empty store, optionally holding the demo uploads.
func NewMemory(seed bool) *Memory {
	m := &Memory{
		ids: NewIDGenerator(),
		now: time.Now,
	}
	if seed {
		for _, u := range DemoUploads() {
			m.uploads = append(m.uploads, u)
			m.ids.Observe(u.ID)
		}
	}
	return m
}

func (m *Memory) ListUploads(_ context.Context, filter models.UploadFilter) ([]models.Upload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Upload, 0, len(m.uploads))
	for _, u := range m.uploads {
		if filter.Matches(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *Memory) GetUpload(_ context.Context, id string) (models.Upload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return models.Upload{}, apperrors.NotFound("Image not found")
	}
	return m.uploads[idx], nil
}

func (m *Memory) CreateUpload(_ context.Context, upload models.Upload) (models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if upload.ID == "" {
		upload.ID = m.ids.Next()
	} else if m.indexOf(upload.ID) >= 0 {
		return models.Upload{}, apperrors.Validation("upload id already exists")
	}
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = m.now().UTC()
	}
	m.uploads = append(m.uploads, upload)
	return upload, nil
}

func (m *Memory) UpdateUpload(_ context.Context, id string, patch models.UploadPatch) (models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return models.Upload{}, apperrors.NotFound("Image not found")
	}
	m.uploads[idx] = patch.Apply(m.uploads[idx])
	return m.uploads[idx], nil
}

func (m *Memory) DeleteUpload(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return apperrors.NotFound("Image not found")
	}
	m.uploads = append(m.uploads[:idx], m.uploads[idx+1:]...)
	return nil
}

func (m *Memory) indexOf(id string) int {
	for i, u := range m.uploads {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) RecordEntitlement(_ context.Context, e models.Entitlement) (models.Entitlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.entitlements {
		if existing.UserID == e.UserID && existing.ImageID == e.ImageID && existing.Kind == e.Kind {
			return existing, nil
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.now().UTC()
	}
	m.entitlements = append(m.entitlements, e)
	return e, nil
}

func (m *Memory) ListEntitlements(_ context.Context, userID string, kind models.EntitlementKind) ([]models.Entitlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Entitlement{}
	for _, e := range m.entitlements {
		if e.UserID == userID && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) HasEntitlement(_ context.Context, userID, imageID string, kind models.EntitlementKind) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entitlements {
		if e.UserID == userID && e.ImageID == imageID && e.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
