package images

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mdexport/internal/dto"
	"mdexport/internal/models"
	errutils "mdexport/internal/utils/http_errors"
)

func List(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, il ImageLister) {
	op := pkg + "List"

	log = log.With(slog.String("op", op))

	requester, ok := r.Context().Value(models.UserContextKey).(*models.User)
	if !ok {
		log.Error("failed to get user from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	assets, err := il.ListByOwner(ctx, requester.ID)
	if err != nil {
		log.Error("failed to list images", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	images := make([]dto.ImageResponse, 0, len(assets))

	for _, a := range assets {
		images = append(images, dto.ImageResponse{
			ID:               a.ID,
			Name:             a.LogicalName,
			OriginalFilename: a.OriginalFilename,
			Mime:             a.MimeType,
			Size:             a.SizeBytes,
			CreatedAt:        a.CreatedAt,
		})
	}

	response := map[string]any{
		"data": map[string]any{
			"images": images,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// GetByName streams the stored bytes of the requester's own image.
func GetByName(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, name string, ip ImageProvider) {
	op := pkg + "GetByName"

	log = log.With(slog.String("op", op))

	requester, ok := r.Context().Value(models.UserContextKey).(*models.User)
	if !ok {
		log.Error("failed to get user from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	asset, err := ip.Get(ctx, name, requester.ID)
	if err != nil {
		if errors.Is(err, models.ErrImageNotFound) {
			log.Debug("image not found", slog.String("name", name))
			errutils.WriteJSONError(w, http.StatusNotFound, models.ErrNotFound.Error())
			return
		}
		log.Error("failed to get image", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	w.Header().Set("Content-Type", asset.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(asset.Data); err != nil {
		log.Error("failed to write image", slog.String("error", err.Error()))
	}
}
