package imageservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"time"

	"mdexport/internal/models"

	uuid "github.com/satori/go.uuid"
)

const pkg = "imageService/"

const DefaultMaxSizeBytes = 5 << 20

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type ImageService struct {
	log          *slog.Logger
	repo         ImageRepository
	maxSizeBytes int64
}

func New(log *slog.Logger, repo ImageRepository, maxSizeBytes int64) *ImageService {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxSizeBytes
	}
	return &ImageService{
		log:          log,
		repo:         repo,
		maxSizeBytes: maxSizeBytes,
	}
}

// SanitizeName drops every character outside [a-zA-Z0-9_-].
func SanitizeName(name string) string {
	return invalidNameChars.ReplaceAllString(name, "")
}

// Put stores a new image under the owner's logical name. Existing names are
// never overwritten; of two concurrent puts for one name only one succeeds.
func (s *ImageService) Put(ctx context.Context, ownerID string, logicalName string, originalFilename string, data []byte, declaredMime string) (string, error) {
	op := pkg + "Put"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to store image", slog.String("owner_id", ownerID), slog.String("name", logicalName))

	name := SanitizeName(logicalName)
	if name == "" {
		log.Warn("image name has no valid characters", slog.String("name", logicalName))
		return "", models.ErrInvalidImageName
	}

	mimeType := normalizeMime(declaredMime, data)
	if !models.IsAllowedImageMime(mimeType) {
		log.Warn("image type not allowed", slog.String("mime", mimeType))
		return "", models.ErrInvalidImageType
	}

	if len(data) == 0 {
		log.Warn("empty image upload")
		return "", models.ErrInvalidParams
	}

	if int64(len(data)) > s.maxSizeBytes {
		log.Warn("image too large", slog.Int("size", len(data)), slog.Int64("max", s.maxSizeBytes))
		return "", models.ErrImageTooLarge
	}

	img := &models.ImageAsset{
		ID:               uuid.NewV4().String(),
		OwnerID:          ownerID,
		LogicalName:      name,
		OriginalFilename: originalFilename,
		Data:             data,
		MimeType:         mimeType,
		SizeBytes:        int64(len(data)),
		CreatedAt:        time.Now(),
	}

	if err := s.repo.CreateImage(ctx, img); err != nil {
		var uce *models.UniqueConstraintError
		if errors.As(err, &uce) {
			log.Warn("image name already taken", slog.String("name", name))
			return "", models.ErrImageNameTaken
		}
		log.Error("failed to store image", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("image stored", slog.String("image_id", img.ID))

	return img.ID, nil
}

// Get resolves a logical name within the owner's images only. Names are
// matched exactly; a name that sanitising would change cannot be stored, so
// it is reported as not found.
func (s *ImageService) Get(ctx context.Context, logicalName string, ownerID string) (*models.ImageAsset, error) {
	op := pkg + "Get"

	log := s.log.With(slog.String("op", op))

	name := SanitizeName(logicalName)
	if name == "" || name != logicalName || ownerID == "" {
		log.Debug("image name not resolvable", slog.String("name", logicalName))
		return nil, models.ErrImageNotFound
	}

	img, err := s.repo.ImageByName(ctx, ownerID, name)
	if err != nil {
		if errors.Is(err, models.ErrImageNotFound) {
			log.Debug("image not found", slog.String("name", name))
			return nil, models.ErrImageNotFound
		}
		log.Error("failed to get image", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return img, nil
}

func (s *ImageService) Delete(ctx context.Context, id string, ownerID string) (bool, error) {
	op := pkg + "Delete"

	log := s.log.With(slog.String("op", op))

	deleted, err := s.repo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		log.Error("failed to delete image", slog.String("error", err.Error()))
		return false, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	if !deleted {
		log.Debug("nothing to delete", slog.String("image_id", id))
	}

	return deleted, nil
}

func (s *ImageService) ListByOwner(ctx context.Context, ownerID string) ([]models.ImageAsset, error) {
	op := pkg + "ListByOwner"

	log := s.log.With(slog.String("op", op))

	images, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Error("failed to list images", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return images, nil
}

// normalizeMime strips parameters from the declared type and falls back to
// content sniffing when nothing was declared.
func normalizeMime(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		declared = http.DetectContentType(data)
	}

	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(declared)
	}

	return mediaType
}
