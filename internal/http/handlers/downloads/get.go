package downloads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"mdexport/internal/dto"
	"mdexport/internal/models"
	errutils "mdexport/internal/utils/http_errors"
)

// Info describes a pending download without consuming it.
func Info(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, fileName string, tp TicketPeeker) {
	op := pkg + "Info"

	log = log.With(slog.String("op", op))

	session, ok := r.Context().Value(models.SessionContextKey).(models.Session)
	if !ok {
		log.Error("failed to get session from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	ticket, err := tp.Peek(session, fileName)
	if err != nil {
		log.Warn("no pending download", slog.String("file", fileName))
		errutils.WriteJSONError(w, http.StatusNotFound, models.ErrTicketNotFound.Error())
		return
	}

	response := map[string]any{
		"data": dto.DownloadInfoResponse{
			FileName:    ticket.FileName,
			Format:      string(ticket.Format),
			Mime:        ticket.MimeType,
			DownloadURL: "/api/downloads/" + url.PathEscape(ticket.FileName) + "/content",
			IssuedAt:    ticket.IssuedAt,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// Content redeems the ticket and streams the artifact once.
func Content(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, fileName string, tr TicketRedeemer) {
	op := pkg + "Content"

	log = log.With(slog.String("op", op))

	session, ok := r.Context().Value(models.SessionContextKey).(models.Session)
	if !ok {
		log.Error("failed to get session from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	file, ticket, err := tr.Redeem(session, fileName)
	if err != nil {
		log.Warn("failed to redeem download", slog.String("file", fileName), slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusNotFound, models.ErrTicketNotFound.Error())
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Warn("failed to release artifact", slog.String("error", err.Error()))
		}
	}()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", ticket.FileName))
	w.Header().Set("Content-Type", ticket.MimeType)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := io.Copy(w, file); err != nil {
		log.Error("failed to write file response", slog.String("error", err.Error()))
	}
}
