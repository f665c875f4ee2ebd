package server

import (
	"context"
	"io"

	"mdexport/internal/models"
)

type AuthService interface {
	Register(ctx context.Context, login string, password string, token string) (string, error)
	Login(ctx context.Context, login string, password string) (string, models.Session, error)
	Authenticate(ctx context.Context, token string) (*models.User, models.Session, error)
	Logout(ctx context.Context, token string) error
}

type DocumentService interface {
	Get(ctx context.Context, id string, requesterID string) (*models.Document, error)
	Info(ctx context.Context, id string, requesterID string) (*models.DocumentInfo, error)
	Save(ctx context.Context, requesterID string, req models.SaveRequest) (string, error)
	Delete(ctx context.Context, id string, requesterID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.DocumentSummary, error)
}

type ImageService interface {
	Put(ctx context.Context, ownerID string, logicalName string, originalFilename string, data []byte, declaredMime string) (string, error)
	Get(ctx context.Context, logicalName string, ownerID string) (*models.ImageAsset, error)
	Delete(ctx context.Context, id string, ownerID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.ImageAsset, error)
}

type ExportService interface {
	Export(ctx context.Context, markup string, format models.Format, userID string) (*models.Artifact, error)
}

type TicketGuard interface {
	Issue(session models.Session, artifact *models.Artifact) models.Ticket
	Peek(session models.Session, fileName string) (models.Ticket, error)
	Redeem(session models.Session, fileName string) (io.ReadCloser, models.Ticket, error)
}

type TemplateService interface {
	ListActive(ctx context.Context, kind models.Kind) ([]models.Template, error)
	Content(ctx context.Context, id int64) (string, error)
}

// Services is everything the routes dispatch to.
type Services struct {
	Auth      AuthService
	Documents DocumentService
	Images    ImageService
	Exports   ExportService
	Tickets   TicketGuard
	Templates TemplateService
}
