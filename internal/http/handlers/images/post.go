package images

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"mdexport/internal/models"
	errutils "mdexport/internal/utils/http_errors"
)

// Upload stores a multipart image_file under the logical name image_name.
func Upload(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, maxBytes int64, iu ImageUploader) {
	op := pkg + "Upload"

	log = log.With(slog.String("op", op))

	requester, ok := r.Context().Value(models.UserContextKey).(*models.User)
	if !ok {
		log.Error("failed to get user from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("upload exceeds request limit", slog.Int64("limit", tooLarge.Limit))
			errutils.WriteJSONError(w, http.StatusBadRequest, models.ErrImageTooLarge.Error())
			return
		}
		log.Warn("failed to parse multipart form", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("image_file")
	if err != nil {
		log.Warn("image_file is missing", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidParams.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read upload", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	name := r.FormValue("image_name")

	id, err := iu.Put(ctx, requester.ID, name, header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidImageName),
			errors.Is(err, models.ErrInvalidImageType),
			errors.Is(err, models.ErrImageTooLarge),
			errors.Is(err, models.ErrInvalidParams):
			log.Warn("rejected upload", slog.String("error", err.Error()))
			errutils.WriteJSONError(w, http.StatusBadRequest, rejectionMessage(err))
		case errors.Is(err, models.ErrImageNameTaken):
			log.Warn("image name taken", slog.String("name", name))
			errutils.WriteJSONError(w, http.StatusConflict, models.ErrImageNameTaken.Error())
		default:
			log.Error("failed to store image", slog.String("error", err.Error()))
			errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		}
		return
	}

	response := map[string]any{
		"data": map[string]any{
			"id":   id,
			"name": name,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func rejectionMessage(err error) string {
	for _, known := range []error{models.ErrInvalidImageName, models.ErrInvalidImageType, models.ErrImageTooLarge} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return models.ErrInvalidParams.Error()
}
