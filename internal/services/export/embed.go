package exportservice

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"

	"mdexport/internal/imaging"
)

var imageRefRe = regexp.MustCompile(`<img[^>]*?src="img:([^"]+)"`)

// embedImages inlines every stored image reference as a data URI. References
// that cannot be resolved are left as they are.
func (s *ExportService) embedImages(ctx context.Context, log *slog.Logger, html []byte, userID string) []byte {
	return imageRefRe.ReplaceAllFunc(html, func(tag []byte) []byte {
		match := imageRefRe.FindSubmatch(tag)
		if match == nil {
			return tag
		}

		name := string(match[1])

		uri, ok := s.imageDataURI(ctx, log, name, userID)
		if !ok {
			return tag
		}

		return bytes.Replace(tag, []byte(`src="img:`+name+`"`), []byte(`src="`+uri+`"`), 1)
	})
}

func (s *ExportService) imageDataURI(ctx context.Context, log *slog.Logger, name string, userID string) (string, bool) {
	img, err := s.images.Get(ctx, name, userID)
	if err != nil {
		log.Warn("image reference not resolved", slog.String("name", name), slog.String("error", err.Error()))
		return "", false
	}

	fitted, err := s.scaler.Fit(img.Data, img.MimeType)
	if err != nil {
		if !errors.Is(err, imaging.ErrUndecodable) {
			log.Warn("failed to scale image", slog.String("name", name), slog.String("error", err.Error()))
		}
		return imaging.DataURI(img.MimeType, img.Data), true
	}

	return imaging.DataURI(fitted.MimeType, fitted.Data), true
}
