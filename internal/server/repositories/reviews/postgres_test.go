package reviews

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/dmitrijs2005/reviewhub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewColumns = []string{"id", "user_id", "title", "item", "item_group", "tags", "body", "rating", "image_key", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+reviews\s*\(user_id,\s*title,\s*item,\s*item_group,\s*tags,\s*body,\s*rating\)`).
		WithArgs("u-1", "Great", "Phone", "tech", `["a","b"]`, "text", 9.5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("r-1", now, now))

	got, err := repo.Create(context.Background(), &models.Review{
		UserID: "u-1", Title: "Great", Item: "Phone", Group: "tech", Tags: []string{"a", "b"}, Text: "text", Rating: 9.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "r-1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NilTagsStoredAsEmptyArray(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+reviews`).
		WithArgs("u-1", "t", "i", "g", `[]`, "x", 1.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("r-1", time.Now(), time.Now()))

	_, err := repo.Create(context.Background(), &models.Review{UserID: "u-1", Title: "t", Item: "i", Group: "g", Text: "x", Rating: 1})
	require.NoError(t, err)
}

func TestCreate_UnknownOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+reviews`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "reviews_user_id_fkey"})

	_, err := repo.Create(context.Background(), &models.Review{UserID: "u-gone", Title: "t", Item: "i", Group: "g", Text: "x"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+reviews\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows(reviewColumns).
			AddRow("r-1", "u-1", "Great", "Phone", "tech", []byte(`["a"]`), "text", 8.0, "reviews/r-1/img", time.Now(), time.Now()))

	got, err := repo.GetByID(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, []string{"a"}, got.Tags)
	assert.True(t, got.HasImage)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+reviews\s+WHERE\s+id`).WithArgs("r-x").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "r-x")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+reviews\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+LIMIT\s+\$1\s+OFFSET\s+\$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(reviewColumns).
			AddRow("r-1", "u-1", "A", "I", "g", []byte(`[]`), "t", 1.0, "", time.Now(), time.Now()).
			AddRow("r-2", "u-2", "B", "I", "g", []byte(`["x"]`), "t", 2.0, "", time.Now(), time.Now()))

	got, err := repo.List(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{}, got[0].Tags)
	assert.False(t, got[0].HasImage)
}

func TestListByUser_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+user_id\s*=\s*\$1`).WithArgs("u-1").WillReturnError(errors.New("boom"))

	_, err := repo.ListByUser(context.Background(), "u-1")
	assert.ErrorContains(t, err, "failed to select reviews")
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^UPDATE\s+reviews\s+SET\s+title\s*=\s*\$2`).
		WithArgs("r-1", "New", "Phone", "tech", `["z"]`, "edited", 3.0).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	got, err := repo.Update(context.Background(), &models.Review{
		ID: "r-1", UserID: "u-1", Title: "New", Item: "Phone", Group: "tech", Tags: []string{"z"}, Text: "edited", Rating: 3,
	})
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(now))
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE\s+reviews`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.Review{ID: "r-x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSetImageKeyAndDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+reviews\s+SET\s+image_key`).WithArgs("r-1", "k").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+reviews`).WithArgs("r-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+reviews`).WithArgs("r-2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetImageKey(context.Background(), "r-1", "k"))
	require.NoError(t, repo.Delete(context.Background(), "r-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "r-2"), common.ErrNotFound)
}
