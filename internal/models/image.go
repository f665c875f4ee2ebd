package models

import "time"

type ImageAsset struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	LogicalName      string    `json:"logical_name"`
	OriginalFilename string    `json:"original_filename"`
	Data             []byte    `json:"-"`
	MimeType         string    `json:"mime_type"`
	SizeBytes        int64     `json:"size_bytes"`
	CreatedAt        time.Time `json:"created_at"`
}

var allowedImageMimes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

func IsAllowedImageMime(mime string) bool {
	return allowedImageMimes[mime]
}
