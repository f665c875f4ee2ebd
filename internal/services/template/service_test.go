package templateservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"mdexport/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) ListActive(ctx context.Context, kind string) ([]models.Template, error) {
	args := m.Called(ctx, kind)
	templates, _ := args.Get(0).([]models.Template)
	return templates, args.Error(1)
}

func (m *MockTemplateRepository) Content(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func TestListActive(t *testing.T) {
	t.Parallel()

	repo := new(MockTemplateRepository)
	s := New(slog.Default(), repo)

	repo.On("ListActive", mock.Anything, "marp").
		Return([]models.Template{{ID: 1, Title: "Lecture", Kind: models.KindMarp}}, nil)

	templates, err := s.ListActive(context.Background(), models.KindMarp)
	assert.NoError(t, err)
	assert.Len(t, templates, 1)
	repo.AssertExpectations(t)
}

func TestListActive_InvalidKind(t *testing.T) {
	t.Parallel()

	repo := new(MockTemplateRepository)
	s := New(slog.Default(), repo)

	_, err := s.ListActive(context.Background(), models.Kind("pptx"))
	assert.ErrorIs(t, err, models.ErrInvalidKind)
	repo.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything)
}

func TestListActive_StorageError(t *testing.T) {
	t.Parallel()

	repo := new(MockTemplateRepository)
	s := New(slog.Default(), repo)

	repo.On("ListActive", mock.Anything, "").Return(nil, errors.New("db down"))

	_, err := s.ListActive(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInternal)
}

func TestContent(t *testing.T) {
	t.Parallel()

	repo := new(MockTemplateRepository)
	s := New(slog.Default(), repo)

	repo.On("Content", mock.Anything, int64(1)).Return("---\nmarp: true\n---\n# Hi", nil)
	repo.On("Content", mock.Anything, int64(2)).Return("", models.ErrTemplateNotFound)
	repo.On("Content", mock.Anything, int64(3)).Return("", errors.New("db down"))

	content, err := s.Content(context.Background(), 1)
	assert.NoError(t, err)
	assert.Contains(t, content, "marp: true")

	_, err = s.Content(context.Background(), 2)
	assert.ErrorIs(t, err, models.ErrTemplateNotFound)

	_, err = s.Content(context.Background(), 3)
	assert.ErrorIs(t, err, models.ErrInternal)
}
