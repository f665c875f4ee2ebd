package imagerepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mdexport/internal/dbs/postgres"
	"mdexport/internal/entities"
	"mdexport/internal/models"

	"github.com/jmoiron/sqlx"
)

const pkg = "imageRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

// CreateImage relies on the UNIQUE (owner_id, logical_name) constraint, so of
// two concurrent inserts for the same name exactly one succeeds.
func (r *repository) CreateImage(ctx context.Context, img *models.ImageAsset) error {
	op := pkg + "CreateImage"

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO images (id, owner_id, logical_name, original_filename, data, mime_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		img.ID, img.OwnerID, img.LogicalName, img.OriginalFilename, img.Data, img.MimeType, img.SizeBytes, img.CreatedAt)
	if err != nil {
		if constraint, ok := postgres.UniqueViolation(err); ok {
			return &models.UniqueConstraintError{
				Constraint: constraint,
				Err:        models.ErrUNIQUEConstraintFailed,
			}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) ImageByName(ctx context.Context, ownerID string, logicalName string) (*models.ImageAsset, error) {
	op := pkg + "ImageByName"

	rawImage := entities.Image{}

	err := r.db.GetContext(ctx, &rawImage,
		`SELECT
			i.id AS id,
			i.owner_id AS owner_id,
			i.logical_name AS logical_name,
			i.original_filename AS original_filename,
			i.data AS data,
			i.mime_type AS mime_type,
			i.size_bytes AS size_bytes,
			i.created_at AS created_at
		FROM images i
		WHERE i.owner_id = $1 AND i.logical_name = $2`,
		ownerID, logicalName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrImageNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	img := toModel(rawImage)

	return &img, nil
}

func (r *repository) DeleteOwned(ctx context.Context, id string, ownerID string) (bool, error) {
	op := pkg + "DeleteOwned"

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM images WHERE id = $1 AND owner_id = $2`,
		id, ownerID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected > 0, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]models.ImageAsset, error) {
	op := pkg + "ListByOwner"

	rawImages := make([]entities.Image, 0)

	err := r.db.SelectContext(ctx, &rawImages,
		`SELECT
			i.id AS id,
			i.owner_id AS owner_id,
			i.logical_name AS logical_name,
			i.original_filename AS original_filename,
			i.mime_type AS mime_type,
			i.size_bytes AS size_bytes,
			i.created_at AS created_at
		FROM images i
		WHERE i.owner_id = $1
		ORDER BY i.created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images := make([]models.ImageAsset, 0, len(rawImages))

	for _, rawImage := range rawImages {
		images = append(images, toModel(rawImage))
	}

	return images, nil
}

func toModel(e entities.Image) models.ImageAsset {
	return models.ImageAsset{
		ID:               e.ID,
		OwnerID:          e.OwnerID,
		LogicalName:      e.LogicalName,
		OriginalFilename: e.OriginalFilename,
		Data:             e.Data,
		MimeType:         e.MimeType,
		SizeBytes:        e.SizeBytes,
		CreatedAt:        e.CreatedAt,
	}
}
