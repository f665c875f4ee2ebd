package images

import (
	"context"

	"mdexport/internal/models"
)

const pkg = "imagesHandler/"

type ImageUploader interface {
	Put(ctx context.Context, ownerID string, logicalName string, originalFilename string, data []byte, declaredMime string) (string, error)
}

type ImageProvider interface {
	Get(ctx context.Context, logicalName string, ownerID string) (*models.ImageAsset, error)
}

type ImageLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.ImageAsset, error)
}

type ImageDeleter interface {
	Delete(ctx context.Context, id string, ownerID string) (bool, error)
}
