package dto

type TemplateResponse struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	PreviewImagePath string `json:"preview_image_path"`
	Type             string `json:"type"`
}
