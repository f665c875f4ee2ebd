package savedfiles

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mdexport/internal/dto"
	"mdexport/internal/models"
	errutils "mdexport/internal/utils/http_errors"
)

const maxDocumentBody = 10 << 20

func Save(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, ds DocumentSaver) {
	op := pkg + "Save"

	log = log.With(slog.String("op", op))

	requester, ok := requesterFrom(r)
	if !ok {
		log.Error("failed to get user from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	var req dto.SaveDocumentRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBody)).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := ds.Save(ctx, requester.ID, models.SaveRequest{
		ID:       req.ID,
		Title:    req.Title,
		Content:  req.Content,
		Kind:     models.Kind(req.Type),
		IsPublic: req.IsPublic,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyContent),
			errors.Is(err, models.ErrEmptyTitle),
			errors.Is(err, models.ErrInvalidKind),
			errors.Is(err, models.ErrKindMismatch):
			log.Warn("rejected save", slog.String("error", err.Error()))
			errutils.WriteJSONError(w, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, models.ErrDocumentNotFound):
			log.Warn("document not visible", slog.String("id", req.ID))
			errutils.WriteJSONError(w, http.StatusNotFound, models.ErrNotFound.Error())
		case errors.Is(err, models.ErrForbidden):
			log.Warn("save not permitted", slog.String("id", req.ID))
			errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		default:
			log.Error("failed to save document", slog.String("error", err.Error()))
			errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		}
		return
	}

	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}

	response := map[string]any{
		"data": map[string]any{
			"id": id,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func validationMessage(err error) string {
	for _, known := range []error{models.ErrEmptyContent, models.ErrEmptyTitle, models.ErrInvalidKind, models.ErrKindMismatch} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return models.ErrInvalidParams.Error()
}
