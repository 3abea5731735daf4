package store

import (
	"time"

	"imagemarket/internal/models"
)

// DemoUploads returns the two listings a fresh demo catalogue starts with.
func DemoUploads() []models.Upload {
	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []models.Upload{
		{
			ID:           "upload_1",
			Title:        "Beach Sunset",
			Description:  "A beautiful sunset at the beach",
			URL:          "/images/sunset.jpg",
			Thumbnail:    "/images/sunset_thumb.jpg",
			IsUserUpload: true,
			UserID:       models.DemoUserID,
			Price:        1500,
			Category:     "nature",
			Filename:     "sunset.jpg",
			CreatedAt:    created,
		},
		{
			ID:           "upload_2",
			Title:        "Mountain View",
			Description:  "Scenic mountain landscape",
			URL:          "/images/mountain.jpg",
			Thumbnail:    "/images/mountain_thumb.jpg",
			IsUserUpload: true,
			UserID:       models.DemoUserID,
			Price:        2000,
			Category:     "landscape",
			Filename:     "mountain.jpg",
			CreatedAt:    created.Add(time.Second),
		},
	}
}
