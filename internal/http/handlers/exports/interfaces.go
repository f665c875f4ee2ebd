package exports

import (
	"context"

	"mdexport/internal/models"
)

const pkg = "exportsHandler/"

type Exporter interface {
	Export(ctx context.Context, markup string, format models.Format, userID string) (*models.Artifact, error)
}

type TicketIssuer interface {
	Issue(session models.Session, artifact *models.Artifact) models.Ticket
}
