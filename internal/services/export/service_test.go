package exportservice

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"mdexport/internal/imaging"
	"mdexport/internal/markup"
	"mdexport/internal/models"
	"mdexport/internal/repositories/storage/scratch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlides struct {
	frames  int
	failErr error
}

func (f *fakeSlides) RenderPage(_ context.Context, _ string, out string) error {
	if f.failErr != nil {
		return f.failErr
	}
	return os.WriteFile(out, []byte("<html>slides</html>"), 0o600)
}

func (f *fakeSlides) RenderFrames(_ context.Context, _ string, dir string) ([]string, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}

	frames := make([]string, 0, f.frames)
	for i := 1; i <= f.frames; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", i))
		if err := os.WriteFile(path, []byte(fmt.Sprintf("frame %d", i)), 0o600); err != nil {
			return nil, err
		}
		frames = append(frames, path)
	}

	if len(frames) == 0 {
		return nil, models.ErrNoFramesProduced
	}

	return frames, nil
}

type fakeEncoder struct {
	manifest string
	failErr  error
}

func (f *fakeEncoder) Encode(_ context.Context, listPath string, out string) error {
	data, err := os.ReadFile(listPath)
	if err != nil {
		return err
	}
	f.manifest = string(data)

	if f.failErr != nil {
		return f.failErr
	}
	return os.WriteFile(out, []byte("mp4"), 0o600)
}

type fakeDocument struct {
	html string
}

func (f *fakeDocument) Render(_ context.Context, htmlPath string, out string) error {
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		return err
	}
	f.html = string(data)
	return os.WriteFile(out, []byte("%PDF-1.4"), 0o600)
}

type fakeImages map[string]*models.ImageAsset

func (f fakeImages) Get(_ context.Context, logicalName string, ownerID string) (*models.ImageAsset, error) {
	img, ok := f[ownerID+"/"+logicalName]
	if !ok {
		return nil, models.ErrImageNotFound
	}
	return img, nil
}

type fixture struct {
	service  *ExportService
	storage  *scratch.Storage
	slides   *fakeSlides
	encoder  *fakeEncoder
	document *fakeDocument
	images   fakeImages
}

func setup(t *testing.T) *fixture {
	t.Helper()

	storage, err := scratch.New(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		storage:  storage,
		slides:   &fakeSlides{frames: 3},
		encoder:  &fakeEncoder{},
		document: &fakeDocument{},
		images:   fakeImages{},
	}

	f.service = New(slog.Default(), Deps{
		Scratch:  storage,
		Markup:   markup.New(""),
		Slides:   f.slides,
		Encoder:  f.encoder,
		Document: f.document,
		Images:   f.images,
		Scaler:   imaging.NewScaler(650, 85),
	})

	return f
}

func filesUnder(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestExport_EmptyInput(t *testing.T) {
	t.Parallel()

	f := setup(t)

	artifact, err := f.service.Export(context.Background(), " \n\t", models.FormatDocument, "user1")
	assert.ErrorIs(t, err, models.ErrEmptyInput)
	assert.Nil(t, artifact)
	assert.Empty(t, filesUnder(t, f.storage.Root()))
}

func TestExport_InvalidFormat(t *testing.T) {
	t.Parallel()

	f := setup(t)

	_, err := f.service.Export(context.Background(), "# hi", models.Format("pptx"), "user1")
	assert.ErrorIs(t, err, models.ErrInvalidFormat)
}

func TestExport_VideoManifest(t *testing.T) {
	t.Parallel()

	f := setup(t)

	artifact, err := f.service.Export(context.Background(), "# a\n---\n# b\n---\n# c", models.FormatVideo, "user1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(f.encoder.manifest, "\n"), "\n")
	require.Len(t, lines, 6)

	for i := 0; i < 3; i++ {
		assert.Regexp(t, regexp.MustCompile(fmt.Sprintf(`^file '.*frame-%04d\.png'$`, i+1)), lines[2*i])
		assert.Equal(t, "duration 5", lines[2*i+1])
	}

	assert.Equal(t, "video/mp4", artifact.MimeType)
	assert.Equal(t, []string{artifact.DiskPath}, filesUnder(t, f.storage.Root()))
	assert.True(t, strings.HasPrefix(artifact.FileName, "video_"))
	assert.True(t, strings.HasSuffix(artifact.FileName, ".mp4"))
}

func TestExport_VideoEncoderFailureLeavesNothing(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.encoder.failErr = &models.ConverterError{Tool: "ffmpeg", ExitCode: 1, Diagnostic: "codec not found"}

	artifact, err := f.service.Export(context.Background(), "# a\n---\n# b", models.FormatVideo, "user1")
	assert.ErrorIs(t, err, models.ErrConverterFailed)
	assert.Nil(t, artifact)

	assert.Empty(t, filesUnder(t, f.storage.Root()))
}

func TestExport_NoFrames(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.slides.frames = 0

	_, err := f.service.Export(context.Background(), "# a", models.FormatImageSet, "user1")
	assert.ErrorIs(t, err, models.ErrNoFramesProduced)
	assert.Empty(t, filesUnder(t, f.storage.Root()))
}

func TestExport_ConverterUnavailable(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.slides.failErr = fmt.Errorf("marp: %w", models.ErrConverterUnavailable)

	_, err := f.service.Export(context.Background(), "# a", models.FormatPage, "user1")
	assert.ErrorIs(t, err, models.ErrConverterUnavailable)
	assert.Empty(t, filesUnder(t, f.storage.Root()))
}

func TestExport_ImageSetZip(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.slides.frames = 12

	artifact, err := f.service.Export(context.Background(), "# deck", models.FormatImageSet, "user1")
	require.NoError(t, err)
	assert.Equal(t, "application/zip", artifact.MimeType)

	zr, err := zip.OpenReader(artifact.DiskPath)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 12)
	for i, file := range zr.File {
		assert.Equal(t, fmt.Sprintf("frame-%04d.png", i+1), file.Name)
	}

	assert.Equal(t, []string{artifact.DiskPath}, filesUnder(t, f.storage.Root()))
}

func TestExport_Page(t *testing.T) {
	t.Parallel()

	f := setup(t)

	artifact, err := f.service.Export(context.Background(), "---\nmarp: true\n---\n# hi", models.FormatPage, "user1")
	require.NoError(t, err)

	data, err := os.ReadFile(artifact.DiskPath)
	require.NoError(t, err)
	assert.Equal(t, "<html>slides</html>", string(data))
	assert.Equal(t, filepath.Join(f.storage.Root(), "page", "user1", artifact.FileName), artifact.DiskPath)
}

func wideImage(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var dataURIRe = regexp.MustCompile(`src="data:image/png;base64,([^"]+)"`)

func TestExport_DocumentInlinesImages(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.images["user1/chart"] = &models.ImageAsset{
		LogicalName: "chart",
		OwnerID:     "user1",
		Data:        wideImage(t, 1300, 700),
		MimeType:    "image/png",
	}
	f.images["user2/private"] = &models.ImageAsset{
		LogicalName: "private",
		OwnerID:     "user2",
		Data:        wideImage(t, 10, 10),
		MimeType:    "image/png",
	}

	source := "# Report\n\n![chart](img:chart)\n\n![gone](img:missing)\n\n![theirs](img:private)\n"

	artifact, err := f.service.Export(context.Background(), source, models.FormatDocument, "user1")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", artifact.MimeType)

	html := f.document.html
	assert.Contains(t, html, "<title>Report</title>")
	assert.Contains(t, html, `src="img:missing"`)
	assert.Contains(t, html, `src="img:private"`)

	matches := dataURIRe.FindAllStringSubmatch(html, -1)
	require.Len(t, matches, 1)

	raw, err := base64.StdEncoding.DecodeString(matches[0][1])
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 650, cfg.Width)
	assert.Equal(t, 350, cfg.Height)

	assert.Equal(t, []string{artifact.DiskPath}, filesUnder(t, f.storage.Root()))
}

func TestExport_DocumentUndecodableImageInlinedAsIs(t *testing.T) {
	t.Parallel()

	f := setup(t)
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="2000" height="10"></svg>`)
	f.images["user1/logo"] = &models.ImageAsset{LogicalName: "logo", OwnerID: "user1", Data: svg, MimeType: "image/svg+xml"}

	_, err := f.service.Export(context.Background(), "![logo](img:logo)", models.FormatDocument, "user1")
	require.NoError(t, err)

	assert.Contains(t, f.document.html, "data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString(svg))
}

func TestStageString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "materialized", StageMaterialized.String())
	assert.Equal(t, "failed", StageFailed.String())
	assert.Equal(t, "unknown", Stage(42).String())
}

func TestTitleOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Quarterly numbers", titleOf("intro\n\n## Quarterly numbers\n"))
	assert.Equal(t, defaultTitle, titleOf("no headings here"))
	assert.Equal(t, "After a long line", titleOf(strings.Repeat("x", 200*1024)+"\r\n# After a long line\r\n"))
}

func TestExport_ErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.slides.failErr = errors.New("boom")

	_, err := f.service.Export(context.Background(), "# a", models.FormatPage, "user1")
	assert.ErrorContains(t, err, "exportService/Export")
}
