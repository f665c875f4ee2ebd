package templaterepo

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"mdexport/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, *repository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, NewRepository(sqlxDB)
}

func TestListActive_ByKind(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery("FROM templates t(.|\n)*WHERE t.is_active = TRUE AND t.template_type = \\$1 ORDER BY t.title").
		WithArgs("marp").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "preview_image_path", "template_type"}).
			AddRow(1, "Lecture", "Slides for a lecture", nil, "marp").
			AddRow(2, "Pitch", nil, "/static/pitch.png", "marp"))

	templates, err := repo.ListActive(context.Background(), "marp")
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Lecture", templates[0].Title)
	assert.Equal(t, "", templates[0].PreviewImagePath)
	assert.Equal(t, "", templates[1].Description)
	assert.Equal(t, models.KindMarp, templates[1].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActive_AllKinds(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery("WHERE t.is_active = TRUE ORDER BY t.title").
		WithoutArgs().
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "preview_image_path", "template_type"}))

	templates, err := repo.ListActive(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, templates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActive_DBError(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery("FROM templates").WillReturnError(errors.New("db down"))

	templates, err := repo.ListActive(context.Background(), "")
	assert.Nil(t, templates)
	assert.ErrorContains(t, err, "ListActive")
}

func TestContent_Success(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT markdown_content FROM templates WHERE id_template = $1 AND is_active = TRUE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"markdown_content"}).AddRow("# Title\n"))

	content, err := repo.Content(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", content)
}

func TestContent_NotFound(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery("SELECT markdown_content FROM templates").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	content, err := repo.Content(context.Background(), 99)
	assert.Empty(t, content)
	assert.ErrorIs(t, err, models.ErrTemplateNotFound)
}
