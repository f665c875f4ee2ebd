package templates

import (
	"context"

	"mdexport/internal/models"
)

const pkg = "templatesHandler/"

type TemplateProvider interface {
	ListActive(ctx context.Context, kind models.Kind) ([]models.Template, error)
	Content(ctx context.Context, id int64) (string, error)
}
