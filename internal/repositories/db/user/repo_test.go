package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"mdexport/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var writer = models.User{
	ID:       "6f1c2d8e-3b7a-4c1e-9f0a-1d2e3f4a5b6c",
	Login:    "writer2024",
	PassHash: []byte("$2a$10$hash"),
}

func TestAddUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		execErr        error
		wantErr        error
		wantConstraint string
	}{
		{name: "inserted"},
		{
			name:           "login taken",
			execErr:        &pq.Error{Code: "23505", Constraint: "users_login_key"},
			wantErr:        models.ErrUNIQUEConstraintFailed,
			wantConstraint: "users_login_key",
		},
		{name: "other failure", execErr: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newRepo(t)

			exec := mock.ExpectExec("INSERT INTO users").WithArgs(writer.ID, writer.Login, writer.PassHash)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.AddUser(context.Background(), writer)

			switch {
			case tt.execErr == nil:
				assert.NoError(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				var uniqueErr *models.UniqueConstraintError
				require.ErrorAs(t, err, &uniqueErr)
				assert.Equal(t, tt.wantConstraint, uniqueErr.Constraint)
			default:
				assert.ErrorContains(t, err, "userRepo/AddUser")
				assert.NotErrorIs(t, err, models.ErrUNIQUEConstraintFailed)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserLookups(t *testing.T) {
	t.Parallel()

	lookups := []struct {
		name    string
		column  string
		key     string
		lookup  func(r *repository, ctx context.Context, key string) (*models.User, error)
		wrapped string
	}{
		{name: "by id", column: "u.id", key: writer.ID, lookup: (*repository).UserByID, wrapped: "userRepo/UserByID"},
		{name: "by login", column: "u.login", key: writer.Login, lookup: (*repository).UserByLogin, wrapped: "userRepo/UserByLogin"},
	}

	for _, l := range lookups {
		t.Run(l.name, func(t *testing.T) {
			t.Parallel()

			query := "SELECT(.|\n)*FROM users u WHERE " + l.column

			repo, mock := newRepo(t)
			mock.ExpectQuery(query).WithArgs(l.key).
				WillReturnRows(sqlmock.NewRows([]string{"id", "login", "pass_hash"}).
					AddRow(writer.ID, writer.Login, writer.PassHash))

			user, err := l.lookup(repo, context.Background(), l.key)
			require.NoError(t, err)
			assert.Equal(t, &writer, user)

			mock.ExpectQuery(query).WithArgs(l.key).WillReturnError(sql.ErrNoRows)

			user, err = l.lookup(repo, context.Background(), l.key)
			assert.ErrorIs(t, err, models.ErrUserNotFound)
			assert.Nil(t, user)

			mock.ExpectQuery(query).WithArgs(l.key).WillReturnError(errors.New("connection reset"))

			_, err = l.lookup(repo, context.Background(), l.key)
			assert.ErrorContains(t, err, l.wrapped)
			assert.NotErrorIs(t, err, models.ErrUserNotFound)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
