package entities

import "time"

type Image struct {
	ID               string    `db:"id"`
	OwnerID          string    `db:"owner_id"`
	LogicalName      string    `db:"logical_name"`
	OriginalFilename string    `db:"original_filename"`
	Data             []byte    `db:"data"`
	MimeType         string    `db:"mime_type"`
	SizeBytes        int64     `db:"size_bytes"`
	CreatedAt        time.Time `db:"created_at"`
}
