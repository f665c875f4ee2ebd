package exports

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"mdexport/internal/dto"
	"mdexport/internal/models"
	errutils "mdexport/internal/utils/http_errors"
)

const maxMarkupBody = 10 << 20

// Create runs an export for the requester and parks the artifact behind a
// download ticket bound to the requester's session.
func Create(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, rawFormat string, ex Exporter, ti TicketIssuer) {
	op := pkg + "Create"

	log = log.With(slog.String("op", op), slog.String("format", rawFormat))

	requester, ok := r.Context().Value(models.UserContextKey).(*models.User)
	if !ok {
		log.Error("failed to get user from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	session, ok := r.Context().Value(models.SessionContextKey).(models.Session)
	if !ok {
		log.Error("failed to get session from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	format, err := models.ParseFormat(rawFormat)
	if err != nil {
		log.Warn("unknown format")
		errutils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidFormat.Error())
		return
	}

	var req dto.ExportRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMarkupBody)).Decode(&req); err != nil {
		log.Warn("failed to decode body", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	artifact, err := ex.Export(ctx, req.Markdown, format, requester.ID)
	if err != nil {
		if errors.Is(err, models.ErrEmptyInput) {
			log.Warn("empty markup")
			errutils.WriteJSONError(w, http.StatusBadRequest, models.ErrEmptyInput.Error())
			return
		}
		log.Error("export failed", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrGenerationFailed.Error())
		return
	}

	ticket := ti.Issue(session, artifact)

	response := map[string]any{
		"data": dto.ExportResponse{
			DownloadPageURL: "/api/downloads/" + url.PathEscape(ticket.FileName),
			FileName:        ticket.FileName,
			Format:          string(ticket.Format),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
