package models

type Template struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	PreviewImagePath string `json:"preview_image_path"`
	Kind             Kind   `json:"type"`
}
