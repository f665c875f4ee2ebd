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
	parseutil "mdexport/internal/utils/parseLimit"
)

func List(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, dl DocumentLister) {
	op := pkg + "List"

	log = log.With(slog.String("op", op))

	requester, ok := requesterFrom(r)
	if !ok {
		log.Error("failed to get user from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	limit := parseutil.ParseLimit(r.URL.Query().Get("limit"))

	summaries, err := dl.ListByOwner(ctx, requester.ID, limit)
	if err != nil {
		log.Error("failed to list documents", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	files := make([]dto.DocumentSummaryResponse, 0, len(summaries))

	for _, s := range summaries {
		files = append(files, dto.DocumentSummaryResponse{
			ID:        s.ID,
			Title:     s.Title,
			Type:      string(s.Kind),
			IsPublic:  s.IsPublic,
			UpdatedAt: s.UpdatedAt,
		})
	}

	response := map[string]any{
		"data": map[string]any{
			"files": files,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, dp DocumentProvider) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op))

	requester, ok := requesterFrom(r)
	if !ok {
		log.Error("failed to get user from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	doc, err := dp.Get(ctx, docID, requester.ID)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			log.Warn("document not visible", slog.String("id", docID))
			errutils.WriteJSONError(w, http.StatusNotFound, models.ErrNotFound.Error())
			return
		}
		log.Error("failed to get document", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	response := map[string]any{
		"data": dto.DocumentResponse{
			ID:        doc.ID,
			Title:     doc.Title,
			Content:   doc.Content,
			Type:      string(doc.Kind),
			IsPublic:  doc.IsPublic,
			IsOwner:   doc.OwnerID == requester.ID,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Info(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, docID string, ip DocumentInfoProvider) {
	op := pkg + "Info"

	log = log.With(slog.String("op", op))

	requester, ok := requesterFrom(r)
	if !ok {
		log.Error("failed to get user from context")
		errutils.WriteJSONError(w, http.StatusForbidden, models.ErrForbidden.Error())
		return
	}

	info, err := ip.Info(ctx, docID, requester.ID)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			log.Warn("document not visible", slog.String("id", docID))
			errutils.WriteJSONError(w, http.StatusNotFound, models.ErrNotFound.Error())
			return
		}
		log.Error("failed to get document info", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	response := map[string]any{
		"data": dto.DocumentInfoResponse{
			ID:        info.ID,
			Title:     info.Title,
			Type:      string(info.Kind),
			IsPublic:  info.IsPublic,
			IsOwner:   info.IsOwner,
			CreatedAt: info.CreatedAt,
			UpdatedAt: info.UpdatedAt,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
