package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mdexport/internal/config"
	"mdexport/internal/http/handlers/downloads"
	"mdexport/internal/http/handlers/exports"
	"mdexport/internal/http/handlers/images"
	"mdexport/internal/http/handlers/savedfiles"
	"mdexport/internal/http/handlers/session"
	"mdexport/internal/http/handlers/templates"
	"mdexport/internal/http/handlers/user"
	"mdexport/internal/http/middleware"
	"mdexport/internal/models"
	utils "mdexport/internal/utils/http_errors"

	"github.com/gorilla/mux"
)

func StartServer(ctx context.Context, cfg *config.HTTPServer, log *slog.Logger, svc Services) error {
	srv := &http.Server{
		Addr:         cfg.Address,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: max(cfg.Timeout, cfg.ExportTimeout),
		IdleTimeout:  cfg.IdleTimeout,
		Handler:      NewRouter(cfg, log, svc),
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("server closed gracefully")
			} else {
				log.Error("could not start server:", "error", err)
				errChan <- err
			}
		}
	}()
	select {
	case <-ctx.Done():
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down server", "error", err)
			return err
		}
		log.Info("server exited gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

func NewRouter(cfg *config.HTTPServer, log *slog.Logger, svc Services) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logger(log))

	setupRoutes(r, cfg, log, svc)

	return r
}

func setupRoutes(r *mux.Router, cfg *config.HTTPServer, log *slog.Logger, svc Services) {
	// POST user
	r.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user.Add(ctx, log, w, r, svc.Auth)
	}).Methods(http.MethodPost)

	// POST session
	r.HandleFunc("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session.Add(ctx, log, w, r, svc.Auth)
	}).Methods(http.MethodPost)

	// DELETE session
	r.HandleFunc("/api/auth/{token}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		token := vars["token"]
		session.Delete(ctx, log, w, r, token, svc.Auth)
	}).Methods(http.MethodDelete)

	protected := r.PathPrefix("/api").Subrouter()

	protected.Use(middleware.Auth(log, svc.Auth))

	// GET saved files
	protected.HandleFunc("/saved-files", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		savedfiles.List(ctx, log, w, r, svc.Documents)
	}).Methods(http.MethodGet)

	// POST saved file
	protected.HandleFunc("/saved-files", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		savedfiles.Save(ctx, log, w, r, svc.Documents)
	}).Methods(http.MethodPost)

	// GET saved file by id
	protected.HandleFunc("/saved-files/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		savedfiles.Get(ctx, log, w, r, vars["id"], svc.Documents)
	}).Methods(http.MethodGet)

	// GET saved file info
	protected.HandleFunc("/saved-files/{id}/info", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		savedfiles.Info(ctx, log, w, r, vars["id"], svc.Documents)
	}).Methods(http.MethodGet)

	// DELETE saved file
	protected.HandleFunc("/saved-files/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		savedfiles.Delete(ctx, log, w, r, vars["id"], svc.Documents)
	}).Methods(http.MethodDelete)

	// GET images
	protected.HandleFunc("/images", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		images.List(ctx, log, w, r, svc.Images)
	}).Methods(http.MethodGet)

	// POST image
	protected.HandleFunc("/images", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		images.Upload(ctx, log, w, r, cfg.MaxUploadBytes, svc.Images)
	}).Methods(http.MethodPost)

	// GET image by name
	protected.HandleFunc("/images/{name}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		images.GetByName(ctx, log, w, r, vars["name"], svc.Images)
	}).Methods(http.MethodGet)

	// DELETE image by id
	protected.HandleFunc("/images/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		images.Delete(ctx, log, w, r, vars["id"], svc.Images)
	}).Methods(http.MethodDelete)

	// POST export
	protected.HandleFunc("/exports/{format}", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), cfg.ExportTimeout)
		defer cancel()
		vars := mux.Vars(r)
		exports.Create(ctx, log, w, r, vars["format"], svc.Exports, svc.Tickets)
	}).Methods(http.MethodPost)

	// GET download info
	protected.HandleFunc("/downloads/{file}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		downloads.Info(ctx, log, w, r, vars["file"], svc.Tickets)
	}).Methods(http.MethodGet)

	// GET download content
	protected.HandleFunc("/downloads/{file}/content", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		downloads.Content(ctx, log, w, r, vars["file"], svc.Tickets)
	}).Methods(http.MethodGet)

	// GET templates
	protected.HandleFunc("/templates", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		templates.List(ctx, log, w, r, svc.Templates)
	}).Methods(http.MethodGet)

	// GET template content
	protected.HandleFunc("/templates/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		templates.Content(ctx, log, w, r, vars["id"], svc.Templates)
	}).Methods(http.MethodGet)

	// Not allowed
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusMethodNotAllowed, models.ErrMethodNotAllowed.Error())
	})
}
