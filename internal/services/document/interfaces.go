package documentservice

import (
	"context"
	"time"

	"mdexport/internal/models"
)

type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	DocumentByID(ctx context.Context, id string) (*models.Document, error)
	UpdateOwned(ctx context.Context, doc *models.Document) (time.Time, error)
	UpdatePublicContent(ctx context.Context, id string, content string, now time.Time) (time.Time, error)
	DeleteOwned(ctx context.Context, id string, ownerID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.DocumentSummary, error)
}

// Cache fills are guarded by a generation read before the storage read, so
// a fill that raced with Invalidate is dropped.
type Cache interface {
	Document(ctx context.Context, id string) (*models.Document, error)
	DocumentGeneration(ctx context.Context, id string) (string, error)
	SetDocument(ctx context.Context, doc *models.Document, generation string) error
	Listing(ctx context.Context, ownerID string) ([]models.DocumentSummary, bool, error)
	ListingGeneration(ctx context.Context, ownerID string) (string, error)
	SetListing(ctx context.Context, ownerID string, generation string, list []models.DocumentSummary) error
	Invalidate(ctx context.Context, docID string, ownerID string) error
}
