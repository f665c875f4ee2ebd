package templates

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

func List(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, tp TemplateProvider) {
	op := pkg + "List"

	log = log.With(slog.String("op", op))

	kind := models.Kind(r.URL.Query().Get("type"))

	list, err := tp.ListActive(ctx, kind)
	if err != nil {
		if errors.Is(err, models.ErrInvalidKind) {
			log.Warn("unknown template type", slog.String("type", string(kind)))
			errutils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidKind.Error())
			return
		}
		log.Error("failed to list templates", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	templates := make([]dto.TemplateResponse, 0, len(list))

	for _, t := range list {
		templates = append(templates, dto.TemplateResponse{
			ID:               t.ID,
			Title:            t.Title,
			Description:      t.Description,
			PreviewImagePath: t.PreviewImagePath,
			Type:             string(t.Kind),
		})
	}

	response := map[string]any{
		"data": map[string]any{
			"templates": templates,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Content(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, rawID string, tp TemplateProvider) {
	op := pkg + "Content"

	log = log.With(slog.String("op", op))

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid template id", slog.String("id", rawID))
		errutils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidParams.Error())
		return
	}

	content, err := tp.Content(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrTemplateNotFound) {
			log.Warn("template not found", slog.Int64("id", id))
			errutils.WriteJSONError(w, http.StatusNotFound, models.ErrNotFound.Error())
			return
		}
		log.Error("failed to get template", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	response := map[string]any{
		"data": map[string]any{
			"id":      id,
			"content": content,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
