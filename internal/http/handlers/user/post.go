package user

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mdexport/internal/dto"
	"mdexport/internal/models"
	utils "mdexport/internal/utils/http_errors"
)

const maxBody = 1 << 20

var registerErrors = []struct {
	err    error
	status int
}{
	{err: models.ErrUserExists, status: http.StatusConflict},
	{err: models.ErrInvalidParams, status: http.StatusBadRequest},
	{err: models.ErrForbidden, status: http.StatusForbidden},
}

func Add(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, ua UserAdder) {
	op := pkg + "Add"

	log = log.With(slog.String("op", op))

	var userRequest dto.UserRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&userRequest); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidParams.Error())
		return
	}

	login, err := ua.Register(ctx, userRequest.Login, userRequest.Password, userRequest.AdminToken)
	if err != nil {
		for _, known := range registerErrors {
			if errors.Is(err, known.err) {
				log.Warn("failed to register user", slog.String("error", known.err.Error()))
				utils.WriteJSONError(w, known.status, known.err.Error())
				return
			}
		}
		log.Error("failed to register user", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	response := map[string]any{
		"response": map[string]any{
			"login": login,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
