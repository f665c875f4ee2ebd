package cachedocsrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mdexport/internal/models"
	cacherepo "mdexport/internal/repositories/cache"
)

const pkg = "cacheDocsRepo/"

type repository struct {
	cache       cacherepo.Cache
	documentTTL time.Duration
}

func New(cache cacherepo.Cache, documentTTL time.Duration) *repository {
	return &repository{
		cache:       cache,
		documentTTL: documentTTL,
	}
}

func documentKey(id string) string {
	return "doc:" + id
}

func listingKey(ownerID string) string {
	return "docs:" + ownerID
}

// Generation keys are bumped on every invalidation and never expire, so a
// fill that read storage before an invalidation can be told apart from one
// that read after it.
func documentGenKey(id string) string {
	return "docgen:" + id
}

func listingGenKey(ownerID string) string {
	return "docsgen:" + ownerID
}

func (r *repository) generation(ctx context.Context, op string, key string) (string, error) {
	gen, err := r.cache.Get(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return gen, nil
}

// DocumentGeneration must be read before the storage read whose result is
// passed to SetDocument.
func (r *repository) DocumentGeneration(ctx context.Context, id string) (string, error) {
	return r.generation(ctx, pkg+"DocumentGeneration", documentGenKey(id))
}

func (r *repository) ListingGeneration(ctx context.Context, ownerID string) (string, error) {
	return r.generation(ctx, pkg+"ListingGeneration", listingGenKey(ownerID))
}

// Document returns nil on a cache miss.
func (r *repository) Document(ctx context.Context, id string) (*models.Document, error) {
	op := pkg + "Document"

	docJSON, err := r.cache.Get(ctx, documentKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if docJSON == "" {
		return nil, nil
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &doc, nil
}

// SetDocument caches doc unless the document was invalidated since
// generation was read. A skipped write is not an error.
func (r *repository) SetDocument(ctx context.Context, doc *models.Document, generation string) error {
	op := pkg + "SetDocument"

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.cache.SetIfUnchanged(ctx, documentGenKey(doc.ID), generation, documentKey(doc.ID), string(docJSON), r.documentTTL).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Listing returns the owner's full summary list; ok is false on a miss.
func (r *repository) Listing(ctx context.Context, ownerID string) ([]models.DocumentSummary, bool, error) {
	op := pkg + "Listing"

	listJSON, err := r.cache.Get(ctx, listingKey(ownerID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if listJSON == "" {
		return nil, false, nil
	}

	var list []models.DocumentSummary
	if err := json.Unmarshal([]byte(listJSON), &list); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return list, true, nil
}

func (r *repository) SetListing(ctx context.Context, ownerID string, generation string, list []models.DocumentSummary) error {
	op := pkg + "SetListing"

	listJSON, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.cache.SetIfUnchanged(ctx, listingGenKey(ownerID), generation, listingKey(ownerID), string(listJSON), r.documentTTL).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Invalidate bumps both generations, then drops the cached document and its
// owner's listing. A fill racing with it either loses the generation check
// or is removed by the delete.
func (r *repository) Invalidate(ctx context.Context, docID string, ownerID string) error {
	op := pkg + "Invalidate"

	var errs []error

	for _, key := range []string{documentGenKey(docID), listingGenKey(ownerID)} {
		if err := r.cache.Incr(ctx, key).Err(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := r.cache.Del(ctx, documentKey(docID), listingKey(ownerID)).Err(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
