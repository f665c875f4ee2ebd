package documentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mdexport/internal/models"

	uuid "github.com/satori/go.uuid"
)

const pkg = "documentService/"

type DocumentService struct {
	log     *slog.Logger
	docRepo DocumentRepository
	cache   Cache
	now     func() time.Time
}

func New(
	log *slog.Logger,
	docRepo DocumentRepository,
	cache Cache,
) *DocumentService {
	return &DocumentService{
		log:     log,
		docRepo: docRepo,
		cache:   cache,
		now:     time.Now,
	}
}

// Get returns the document when it is public or owned by the requester.
// Invisible documents are reported exactly like unknown ones.
func (ds *DocumentService) Get(ctx context.Context, id string, requesterID string) (*models.Document, error) {
	op := pkg + "Get"

	log := ds.log.With(slog.String("op", op))

	log.Debug("attempting to get document", slog.String("doc_id", id), slog.String("user_id", requesterID))

	doc, err := ds.documentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !doc.IsPublic && doc.OwnerID != requesterID {
		log.Warn("document is not visible to requester", slog.String("doc_id", id), slog.String("user_id", requesterID))
		return nil, models.ErrDocumentNotFound
	}

	return doc, nil
}

func (ds *DocumentService) Info(ctx context.Context, id string, requesterID string) (*models.DocumentInfo, error) {
	doc, err := ds.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	return &models.DocumentInfo{
		ID:        doc.ID,
		Title:     doc.Title,
		Kind:      doc.Kind,
		IsPublic:  doc.IsPublic,
		IsOwner:   doc.OwnerID == requesterID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Save creates a document when req.ID is empty and updates it otherwise.
// The owner may change title, content and visibility; anyone else may only
// change the content of a public document.
func (ds *DocumentService) Save(ctx context.Context, requesterID string, req models.SaveRequest) (string, error) {
	op := pkg + "Save"

	log := ds.log.With(slog.String("op", op))

	if strings.TrimSpace(req.Content) == "" {
		log.Warn("empty content")
		return "", models.ErrEmptyContent
	}

	if req.ID == "" {
		return ds.create(ctx, log, requesterID, req)
	}

	doc, err := ds.Get(ctx, req.ID, requesterID)
	if err != nil {
		return "", err
	}

	access := models.AccessFor(doc, requesterID)

	log.Debug("attempting to save document",
		slog.String("doc_id", doc.ID),
		slog.String("user_id", requesterID),
		slog.String("access", access.String()))

	switch access {
	case models.OwnerFullAccess:
		err = ds.saveAsOwner(ctx, log, doc, req)
	case models.PublicContentOnlyAccess:
		err = ds.saveContentOnly(ctx, log, doc, req.Content)
	default:
		log.Warn("requester has no write access", slog.String("doc_id", doc.ID))
		err = models.ErrForbidden
	}
	if err != nil {
		return "", err
	}

	ds.invalidate(ctx, log, doc.ID, doc.OwnerID)

	log.Debug("document saved", slog.String("doc_id", doc.ID))

	return doc.ID, nil
}

func (ds *DocumentService) create(ctx context.Context, log *slog.Logger, requesterID string, req models.SaveRequest) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || title == models.KeepExistingTitle {
		log.Warn("empty title on create")
		return "", models.ErrEmptyTitle
	}

	kind := req.Kind
	if kind == "" {
		kind = models.KindMarkdown
	}
	if !kind.IsValid() {
		log.Warn("unknown document kind", slog.String("kind", string(kind)))
		return "", models.ErrInvalidKind
	}

	now := ds.now().UTC()

	doc := &models.Document{
		ID:        uuid.NewV4().String(),
		OwnerID:   requesterID,
		Title:     title,
		Content:   req.Content,
		Kind:      kind,
		IsPublic:  req.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ds.docRepo.CreateDocument(ctx, doc); err != nil {
		log.Error("failed to create document", slog.String("error", err.Error()))
		return "", models.ErrInternal
	}

	ds.invalidate(ctx, log, doc.ID, doc.OwnerID)

	log.Debug("document created", slog.String("doc_id", doc.ID), slog.String("owner_id", doc.OwnerID))

	return doc.ID, nil
}

func (ds *DocumentService) saveAsOwner(ctx context.Context, log *slog.Logger, doc *models.Document, req models.SaveRequest) error {
	if req.Kind != "" && req.Kind != doc.Kind {
		log.Warn("attempt to change document kind", slog.String("from", string(doc.Kind)), slog.String("to", string(req.Kind)))
		return models.ErrKindMismatch
	}

	title := strings.TrimSpace(req.Title)
	if title == models.KeepExistingTitle {
		title = doc.Title
	}
	if title == "" {
		log.Warn("empty title on update")
		return models.ErrEmptyTitle
	}

	updated := *doc
	updated.Title = title
	updated.Content = req.Content
	updated.IsPublic = req.IsPublic
	updated.UpdatedAt = ds.now().UTC()

	if _, err := ds.docRepo.UpdateOwned(ctx, &updated); err != nil {
		if errors.Is(err, models.ErrNoRows) {
			log.Warn("document disappeared before update", slog.String("doc_id", doc.ID))
			return models.ErrDocumentNotFound
		}
		log.Error("failed to update document", slog.String("error", err.Error()))
		return models.ErrInternal
	}

	return nil
}

func (ds *DocumentService) saveContentOnly(ctx context.Context, log *slog.Logger, doc *models.Document, content string) error {
	if _, err := ds.docRepo.UpdatePublicContent(ctx, doc.ID, content, ds.now().UTC()); err != nil {
		if errors.Is(err, models.ErrNoRows) {
			log.Warn("document is no longer public", slog.String("doc_id", doc.ID))
			return models.ErrForbidden
		}
		log.Error("failed to update document content", slog.String("error", err.Error()))
		return models.ErrInternal
	}

	return nil
}

// Delete removes a document owned by the requester. It reports false when
// nothing matched.
func (ds *DocumentService) Delete(ctx context.Context, id string, requesterID string) (bool, error) {
	op := pkg + "Delete"

	log := ds.log.With(slog.String("op", op))

	log.Debug("attempting to delete document", slog.String("doc_id", id), slog.String("user_id", requesterID))

	deleted, err := ds.docRepo.DeleteOwned(ctx, id, requesterID)
	if err != nil {
		log.Error("failed to delete document", slog.String("error", err.Error()))
		return false, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	if deleted {
		ds.invalidate(ctx, log, id, requesterID)
	}

	return deleted, nil
}

// ListByOwner lists the owner's documents, most recently updated first.
// A non-positive limit returns all of them.
func (ds *DocumentService) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.DocumentSummary, error) {
	op := pkg + "ListByOwner"

	log := ds.log.With(slog.String("op", op))

	list, ok, err := ds.cache.Listing(ctx, ownerID)
	if err != nil {
		log.Warn("failed to read listing from cache", slog.String("error", err.Error()))
	}

	if !ok {
		gen, genErr := ds.cache.ListingGeneration(ctx, ownerID)

		list, err = ds.docRepo.ListByOwner(ctx, ownerID, 0)
		if err != nil {
			log.Error("failed to list documents", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
		}

		if genErr != nil {
			log.Warn("listing not cached, generation unknown", slog.String("error", genErr.Error()))
		} else if err := ds.cache.SetListing(ctx, ownerID, gen, list); err != nil {
			log.Warn("failed to cache listing", slog.String("error", err.Error()))
		}
	}

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	log.Debug("documents listed", slog.Int("count", len(list)), slog.String("owner_id", ownerID))

	return list, nil
}

func (ds *DocumentService) documentByID(ctx context.Context, id string) (*models.Document, error) {
	op := pkg + "documentByID"

	log := ds.log.With(slog.String("op", op))

	doc, err := ds.cache.Document(ctx, id)
	if err != nil {
		log.Warn("failed to read document from cache", slog.String("error", err.Error()))
	}
	if doc != nil {
		return doc, nil
	}

	gen, genErr := ds.cache.DocumentGeneration(ctx, id)

	doc, err = ds.docRepo.DocumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			log.Debug("document not found", slog.String("doc_id", id))
			return nil, models.ErrDocumentNotFound
		}
		log.Error("failed to get document by id", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	if genErr != nil {
		log.Warn("document not cached, generation unknown", slog.String("error", genErr.Error()))
	} else if err := ds.cache.SetDocument(ctx, doc, gen); err != nil {
		log.Warn("failed to cache document", slog.String("error", err.Error()))
	}

	return doc, nil
}

func (ds *DocumentService) invalidate(ctx context.Context, log *slog.Logger, docID string, ownerID string) {
	if err := ds.cache.Invalidate(ctx, docID, ownerID); err != nil {
		log.Error("failed to invalidate document cache", slog.String("error", err.Error()))
	}
}
