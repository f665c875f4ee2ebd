package templaterepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mdexport/internal/entities"
	"mdexport/internal/models"

	"github.com/jmoiron/sqlx"
)

const pkg = "templateRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

// ListActive returns active templates ordered by title. An empty kind
// matches every template type.
func (r *repository) ListActive(ctx context.Context, kind string) ([]models.Template, error) {
	op := pkg + "ListActive"

	query := `SELECT
			t.id_template AS id,
			t.title AS title,
			t.description AS description,
			t.preview_image_path AS preview_image_path,
			t.template_type AS template_type
		FROM templates t
		WHERE t.is_active = TRUE`

	args := make([]any, 0, 1)

	if kind != "" {
		query += ` AND t.template_type = $1`
		args = append(args, kind)
	}

	query += ` ORDER BY t.title`

	rawTemplates := make([]entities.Template, 0)

	if err := r.db.SelectContext(ctx, &rawTemplates, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	templates := make([]models.Template, 0, len(rawTemplates))

	for _, rt := range rawTemplates {
		templates = append(templates, models.Template{
			ID:               rt.ID,
			Title:            rt.Title,
			Description:      rt.Description.String,
			PreviewImagePath: rt.PreviewImagePath.String,
			Kind:             models.Kind(rt.Kind),
		})
	}

	return templates, nil
}

func (r *repository) Content(ctx context.Context, id int64) (string, error) {
	op := pkg + "Content"

	var content string

	err := r.db.GetContext(ctx, &content,
		`SELECT markdown_content FROM templates WHERE id_template = $1 AND is_active = TRUE`,
		id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, models.ErrTemplateNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return content, nil
}
