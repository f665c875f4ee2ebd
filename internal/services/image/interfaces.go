package imageservice

import (
	"context"

	"mdexport/internal/models"
)

type ImageRepository interface {
	CreateImage(ctx context.Context, img *models.ImageAsset) error
	ImageByName(ctx context.Context, ownerID string, logicalName string) (*models.ImageAsset, error)
	DeleteOwned(ctx context.Context, id string, ownerID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.ImageAsset, error)
}
