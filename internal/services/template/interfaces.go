package templateservice

import (
	"context"

	"mdexport/internal/models"
)

type TemplateRepository interface {
	ListActive(ctx context.Context, kind string) ([]models.Template, error)
	Content(ctx context.Context, id int64) (string, error)
}
