package savedfiles

import (
	"context"
	"net/http"

	"mdexport/internal/models"
)

const pkg = "savedFilesHandler/"

type DocumentLister interface {
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.DocumentSummary, error)
}

type DocumentSaver interface {
	Save(ctx context.Context, requesterID string, req models.SaveRequest) (string, error)
}

type DocumentProvider interface {
	Get(ctx context.Context, id string, requesterID string) (*models.Document, error)
}

type DocumentInfoProvider interface {
	Info(ctx context.Context, id string, requesterID string) (*models.DocumentInfo, error)
}

type DocumentDeleter interface {
	Delete(ctx context.Context, id string, requesterID string) (bool, error)
}

func requesterFrom(r *http.Request) (*models.User, bool) {
	requester, ok := r.Context().Value(models.UserContextKey).(*models.User)
	return requester, ok && requester != nil
}
