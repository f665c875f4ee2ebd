package documentrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mdexport/internal/entities"
	"mdexport/internal/models"

	"github.com/jmoiron/sqlx"
)

const pkg = "documentRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) CreateDocument(ctx context.Context, doc *models.Document) error {
	op := pkg + "CreateDocument"

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO saved_files (id, owner_id, title, content, kind, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID, doc.OwnerID, doc.Title, doc.Content, string(doc.Kind), doc.IsPublic, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) DocumentByID(ctx context.Context, id string) (*models.Document, error) {
	op := pkg + "DocumentByID"

	rawDoc := entities.Document{}

	err := r.db.GetContext(ctx, &rawDoc,
		`SELECT
			d.id AS id,
			d.owner_id AS owner_id,
			d.title AS title,
			d.content AS content,
			d.kind AS kind,
			d.is_public AS is_public,
			d.created_at AS created_at,
			d.updated_at AS updated_at
			FROM saved_files d
			WHERE d.id = $1`,
		id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Document{
		ID:        rawDoc.ID,
		OwnerID:   rawDoc.OwnerID,
		Title:     rawDoc.Title,
		Content:   rawDoc.Content,
		Kind:      models.Kind(rawDoc.Kind),
		IsPublic:  rawDoc.IsPublic,
		CreatedAt: rawDoc.CreatedAt,
		UpdatedAt: rawDoc.UpdatedAt,
	}, nil
}

// UpdateOwned rewrites every mutable field of a document owned by doc.OwnerID
// in a single statement and returns the stored updated_at.
func (r *repository) UpdateOwned(ctx context.Context, doc *models.Document) (time.Time, error) {
	op := pkg + "UpdateOwned"

	var updatedAt time.Time

	err := r.db.QueryRowxContext(ctx,
		`UPDATE saved_files
		SET title = $1, content = $2, is_public = $3, updated_at = GREATEST($4, updated_at)
		WHERE id = $5 AND owner_id = $6
		RETURNING updated_at`,
		doc.Title, doc.Content, doc.IsPublic, doc.UpdatedAt, doc.ID, doc.OwnerID).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("%s: %w", op, models.ErrNoRows)
		}
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return updatedAt, nil
}

// UpdatePublicContent changes only content and updated_at, and only while the
// document is still public.
func (r *repository) UpdatePublicContent(ctx context.Context, id string, content string, now time.Time) (time.Time, error) {
	op := pkg + "UpdatePublicContent"

	var updatedAt time.Time

	err := r.db.QueryRowxContext(ctx,
		`UPDATE saved_files
		SET content = $1, updated_at = GREATEST($2, updated_at)
		WHERE id = $3 AND is_public = TRUE
		RETURNING updated_at`,
		content, now, id).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("%s: %w", op, models.ErrNoRows)
		}
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return updatedAt, nil
}

func (r *repository) DeleteOwned(ctx context.Context, id string, ownerID string) (bool, error) {
	op := pkg + "DeleteOwned"

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_files WHERE id = $1 AND owner_id = $2`,
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

func (r *repository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.DocumentSummary, error) {
	op := pkg + "ListByOwner"

	rawDocs := make([]entities.DocumentSummary, 0)

	query := `SELECT
			d.id AS id,
			d.title AS title,
			d.kind AS kind,
			d.is_public AS is_public,
			d.updated_at AS updated_at
		FROM saved_files d
		WHERE d.owner_id = $1
		ORDER BY d.updated_at DESC`

	args := []any{ownerID}

	if limit > 0 {
		args = append(args, limit)

		query += ` LIMIT $2`
	}

	err := r.db.SelectContext(ctx, &rawDocs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	docs := make([]models.DocumentSummary, 0, len(rawDocs))

	for _, rawDoc := range rawDocs {
		docs = append(docs, models.DocumentSummary{
			ID:        rawDoc.ID,
			Title:     rawDoc.Title,
			Kind:      models.Kind(rawDoc.Kind),
			IsPublic:  rawDoc.IsPublic,
			UpdatedAt: rawDoc.UpdatedAt,
		})
	}

	return docs, nil
}
