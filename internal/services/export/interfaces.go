package exportservice

import (
	"context"

	"mdexport/internal/imaging"
	"mdexport/internal/models"
)

type Scratch interface {
	NewPath(format models.Format, userID string, prefix string, ext string) (string, error)
	WriteFile(path string, data []byte) error
	Mkdir(path string) error
	Remove(paths ...string) error
}

type SlideRenderer interface {
	RenderPage(ctx context.Context, src string, out string) error
	RenderFrames(ctx context.Context, src string, dir string) ([]string, error)
}

type VideoEncoder interface {
	Encode(ctx context.Context, listPath string, out string) error
}

type DocumentRenderer interface {
	Render(ctx context.Context, htmlPath string, out string) error
}

type MarkupRenderer interface {
	ToHTML(source []byte) ([]byte, error)
	Wrap(title string, body []byte) ([]byte, error)
}

type ImageResolver interface {
	Get(ctx context.Context, logicalName string, ownerID string) (*models.ImageAsset, error)
}

type ImageScaler interface {
	Fit(data []byte, mimeType string) (imaging.Image, error)
}
