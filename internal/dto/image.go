package dto

import "time"

type ImageResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	OriginalFilename string    `json:"original_filename"`
	Mime             string    `json:"mime"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `json:"created"`
}
