package exportservice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"mdexport/internal/converter"
	"mdexport/internal/models"
)

const pkg = "exportService/"

const (
	DefaultFrameDuration = 5 * time.Second
	defaultTitle         = "Document"
)

type ExportService struct {
	log           *slog.Logger
	scratch       Scratch
	markup        MarkupRenderer
	slides        SlideRenderer
	encoder       VideoEncoder
	document      DocumentRenderer
	images        ImageResolver
	scaler        ImageScaler
	frameDuration time.Duration
	now           func() time.Time
}

type Deps struct {
	Scratch       Scratch
	Markup        MarkupRenderer
	Slides        SlideRenderer
	Encoder       VideoEncoder
	Document      DocumentRenderer
	Images        ImageResolver
	Scaler        ImageScaler
	FrameDuration time.Duration
}

func New(log *slog.Logger, deps Deps) *ExportService {
	frameDuration := deps.FrameDuration
	if frameDuration <= 0 {
		frameDuration = DefaultFrameDuration
	}

	return &ExportService{
		log:           log,
		scratch:       deps.Scratch,
		markup:        deps.Markup,
		slides:        deps.Slides,
		encoder:       deps.Encoder,
		document:      deps.Document,
		images:        deps.Images,
		scaler:        deps.Scaler,
		frameDuration: frameDuration,
		now:           time.Now,
	}
}

// Export turns markup into a single artifact of the requested format. On any
// failure every file the run created is removed; on success only the
// artifact remains.
func (s *ExportService) Export(ctx context.Context, markup string, format models.Format, userID string) (*models.Artifact, error) {
	op := pkg + "Export"

	log := s.log.With(slog.String("op", op))

	if strings.TrimSpace(markup) == "" {
		log.Warn("empty markup")
		return nil, models.ErrEmptyInput
	}

	if _, err := models.ParseFormat(string(format)); err != nil {
		log.Warn("unknown export format", slog.String("format", string(format)))
		return nil, models.ErrInvalidFormat
	}

	j := newJob(log, s.scratch, format, userID)

	out, err := s.run(ctx, j, markup)
	if err != nil {
		j.fail(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	j.finish(out)

	return &models.Artifact{
		Format:    format,
		DiskPath:  out,
		FileName:  filepath.Base(out),
		MimeType:  format.MimeType(),
		CreatedAt: s.now(),
	}, nil
}

func (s *ExportService) run(ctx context.Context, j *job, markup string) (string, error) {
	src, err := j.newPath(string(j.format), ".md")
	if err != nil {
		return "", ioFailure(err)
	}

	if err := s.scratch.WriteFile(src, []byte(markup)); err != nil {
		return "", ioFailure(err)
	}

	j.advance(StageMaterialized)

	switch j.format {
	case models.FormatDocument:
		return s.exportDocument(ctx, j, markup)
	case models.FormatPage:
		return s.exportPage(ctx, j, src)
	case models.FormatImageSet:
		return s.exportImageSet(ctx, j, src)
	case models.FormatVideo:
		return s.exportVideo(ctx, j, src)
	}

	return "", models.ErrInvalidFormat
}

func (s *ExportService) exportDocument(ctx context.Context, j *job, markup string) (string, error) {
	body, err := s.markup.ToHTML([]byte(markup))
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrConverterFailed, err)
	}

	j.advance(StageConverted)

	body = s.embedImages(ctx, j.log, body, j.userID)

	j.advance(StageEmbedded)

	page, err := s.markup.Wrap(titleOf(markup), body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrConverterFailed, err)
	}

	htmlPath, err := j.newPath("document", ".html")
	if err != nil {
		return "", ioFailure(err)
	}

	if err := s.scratch.WriteFile(htmlPath, page); err != nil {
		return "", ioFailure(err)
	}

	out, err := j.newPath("document", models.FormatDocument.Extension())
	if err != nil {
		return "", ioFailure(err)
	}

	if err := s.document.Render(ctx, htmlPath, out); err != nil {
		return "", err
	}

	return out, nil
}

func (s *ExportService) exportPage(ctx context.Context, j *job, src string) (string, error) {
	out, err := j.newPath("page", models.FormatPage.Extension())
	if err != nil {
		return "", ioFailure(err)
	}

	if err := s.slides.RenderPage(ctx, src, out); err != nil {
		return "", err
	}

	j.advance(StageConverted)

	return out, nil
}

func (s *ExportService) exportImageSet(ctx context.Context, j *job, src string) (string, error) {
	frames, err := s.renderFrames(ctx, j, src)
	if err != nil {
		return "", err
	}

	out, err := j.newPath("images", models.FormatImageSet.Extension())
	if err != nil {
		return "", ioFailure(err)
	}

	if err := packFrames(frames, out); err != nil {
		return "", err
	}

	return out, nil
}

func (s *ExportService) exportVideo(ctx context.Context, j *job, src string) (string, error) {
	frames, err := s.renderFrames(ctx, j, src)
	if err != nil {
		return "", err
	}

	manifest := converter.NewManifest(frames, s.frameDuration)

	listPath := filepath.Join(filepath.Dir(frames[0]), "frames.txt")

	if err := s.scratch.WriteFile(listPath, manifest.Encode()); err != nil {
		return "", ioFailure(err)
	}

	out, err := j.newPath("video", models.FormatVideo.Extension())
	if err != nil {
		return "", ioFailure(err)
	}

	if err := s.encoder.Encode(ctx, listPath, out); err != nil {
		return "", err
	}

	return out, nil
}

func (s *ExportService) renderFrames(ctx context.Context, j *job, src string) ([]string, error) {
	dir, err := j.newPath("frames", "")
	if err != nil {
		return nil, ioFailure(err)
	}

	if err := s.scratch.Mkdir(dir); err != nil {
		return nil, ioFailure(err)
	}

	frames, err := s.slides.RenderFrames(ctx, src, dir)
	if err != nil {
		return nil, err
	}

	if len(frames) == 0 {
		return nil, models.ErrNoFramesProduced
	}

	j.advance(StageConverted)

	return frames, nil
}

// titleOf returns the first ATX heading of the markup.
func titleOf(markup string) string {
	for _, line := range strings.Split(markup, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		title := strings.TrimSpace(strings.TrimLeft(line, "#"))
		if title != "" {
			return title
		}
	}
	return defaultTitle
}

func ioFailure(err error) error {
	return fmt.Errorf("%w: %w", models.ErrIOFailure, err)
}
