package images

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"mdexport/internal/models"
	errutils "mdexport/internal/utils/http_errors"
)

func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, imageID string, deleter ImageDeleter) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op))

	requester, ok := r.Context().Value(models.UserContextKey).(*models.User)
	if !ok {
		log.Error("failed to get user from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	deleted, err := deleter.Delete(ctx, imageID, requester.ID)
	if err != nil {
		log.Error("failed to delete image", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	if !deleted {
		log.Warn("nothing deleted", slog.String("id", imageID))
		errutils.WriteJSONError(w, http.StatusNotFound, models.ErrNotFound.Error())
		return
	}

	response := map[string]any{
		"data": map[string]any{
			imageID: true,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
