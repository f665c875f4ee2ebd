package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"mdexport/internal/cache/redis"
	"mdexport/internal/config"
	"mdexport/internal/converter"
	"mdexport/internal/dbs/postgres"
	"mdexport/internal/http/server"
	"mdexport/internal/imaging"
	"mdexport/internal/markup"
	cachedocsrepo "mdexport/internal/repositories/cache/docs"
	cachesessionrepo "mdexport/internal/repositories/cache/session"
	documentrepo "mdexport/internal/repositories/db/document"
	imagerepo "mdexport/internal/repositories/db/image"
	templaterepo "mdexport/internal/repositories/db/template"
	userrepo "mdexport/internal/repositories/db/user"
	"mdexport/internal/repositories/storage/scratch"
	"mdexport/internal/runner"
	authservice "mdexport/internal/services/auth"
	documentservice "mdexport/internal/services/document"
	exportservice "mdexport/internal/services/export"
	imageservice "mdexport/internal/services/image"
	templateservice "mdexport/internal/services/template"
	ticketservice "mdexport/internal/services/ticket"
	userservice "mdexport/internal/services/user"

	"golang.org/x/sync/errgroup"
)

type App struct {
	Services server.Services
	Janitor  Janitor

	closers []io.Closer
}

func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := postgres.New(ctx, postgres.Config{
		Addr:     cfg.DB.Addr,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.DB,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Error("failed connect to db", "err", err)
		return nil, fmt.Errorf("failed connect to db: %w", err)
	}

	cache, err := redis.New(ctx, redis.Config{Addr: cfg.Cache.Addr, Password: cfg.Cache.Password, DB: cfg.Cache.DB})
	if err != nil {
		log.Error("failed connect to cache", "err", err)
		_ = db.Close()
		return nil, fmt.Errorf("failed connect to cache: %w", err)
	}

	app := &App{closers: []io.Closer{db, cache}}

	storage, err := scratch.New(cfg.Scratch.Path)
	if err != nil {
		log.Error("failed to prepare scratch storage", "err", err)
		_ = app.Close()
		return nil, fmt.Errorf("failed to prepare scratch storage: %w", err)
	}

	stylesheet, err := loadStylesheet(cfg.Export.Stylesheet)
	if err != nil {
		log.Error("failed to read stylesheet", "err", err)
		_ = app.Close()
		return nil, err
	}

	userRepo := userrepo.NewRepository(db)

	sessionCacheRepo := cachesessionrepo.New(cache, cfg.Cache.SessionTTL)

	documentCacheRepo := cachedocsrepo.New(cache, cfg.Cache.DocumentsTTL)

	guard := ticketservice.New(log, storage, cfg.Export.ArtifactTTL)

	userService := userservice.New(log, userRepo, userRepo)

	authService := authservice.New(log, userService, userService, sessionCacheRepo, guard, cfg.AdminToken)

	documentService := documentservice.New(log, documentrepo.NewRepository(db), documentCacheRepo)

	imageService := imageservice.New(log, imagerepo.NewRepository(db), cfg.Images.MaxSizeBytes)

	templateService := templateservice.New(log, templaterepo.NewRepository(db))

	procRunner := runner.New(log, cfg.Export.ConverterTimeout)

	exportService := exportservice.New(log, exportservice.Deps{
		Scratch:       storage,
		Markup:        markup.New(stylesheet),
		Slides:        converter.NewMarp(cfg.Converters.Marp, procRunner),
		Encoder:       converter.NewFFmpeg(cfg.Converters.FFmpeg, procRunner),
		Document:      converter.NewWkhtmltopdf(cfg.Converters.Wkhtmltopdf, cfg.Export.PageSize, procRunner),
		Images:        imageService,
		Scaler:        imaging.NewScaler(cfg.Export.MaxImageWidth, cfg.Export.JPEGQuality),
		FrameDuration: cfg.Export.FrameDuration,
	})

	app.Services = server.Services{
		Auth:      authService,
		Documents: documentService,
		Images:    imageService,
		Exports:   exportService,
		Tickets:   guard,
		Templates: templateService,
	}
	app.Janitor = guard

	return app, nil
}

// Serve runs the HTTP server and the janitor until ctx is cancelled or one of
// them fails. The app's connections are released before it returns.
func (a *App) Serve(ctx context.Context, log *slog.Logger, cfg *config.Config) error {
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close app", slog.String("error", err.Error()))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.StartServer(gctx, &cfg.HTTPServer, log, a.Services)
	})

	g.Go(func() error {
		return a.Janitor.Run(gctx, cfg.Export.SweepInterval)
	})

	return g.Wait()
}

func (a *App) Close() error {
	var errs []error

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func loadStylesheet(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read stylesheet %s: %w", path, err)
	}

	return string(data), nil
}
