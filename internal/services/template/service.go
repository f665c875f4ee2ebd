package templateservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mdexport/internal/models"
)

const pkg = "templateService/"

type TemplateService struct {
	log  *slog.Logger
	repo TemplateRepository
}

func New(log *slog.Logger, repo TemplateRepository) *TemplateService {
	return &TemplateService{
		log:  log,
		repo: repo,
	}
}

// ListActive lists starter templates, optionally narrowed to one kind.
func (s *TemplateService) ListActive(ctx context.Context, kind models.Kind) ([]models.Template, error) {
	op := pkg + "ListActive"

	log := s.log.With(slog.String("op", op))

	if kind != "" && !kind.IsValid() {
		log.Warn("unknown template kind", slog.String("kind", string(kind)))
		return nil, models.ErrInvalidKind
	}

	templates, err := s.repo.ListActive(ctx, string(kind))
	if err != nil {
		log.Error("failed to list templates", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return templates, nil
}

func (s *TemplateService) Content(ctx context.Context, id int64) (string, error) {
	op := pkg + "Content"

	log := s.log.With(slog.String("op", op))

	content, err := s.repo.Content(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrTemplateNotFound) {
			log.Debug("template not found", slog.Int64("template_id", id))
			return "", models.ErrTemplateNotFound
		}
		log.Error("failed to load template", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return content, nil
}
