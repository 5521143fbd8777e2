package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/reviewhub/internal/server/auth"
	"github.com/dmitrijs2005/reviewhub/internal/server/credentials"
	"github.com/dmitrijs2005/reviewhub/internal/server/models"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/memrepo"
)

var testParams = credentials.Params{Time: 1, MemoryKiB: 1024, Threads: 1, KeyLen: 32}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// newTxDB returns a real *sql.DB so dbx.WithTx can begin and commit; the
// in-memory repositories ignore the transaction handle.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	db       *sql.DB
	repos    *memrepo.Manager
	tokens   *auth.TokenService
	users    *UserService
	reviews  *ReviewService
	comments *CommentService
	images   *fakeImages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:     newTxDB(t),
		repos:  memrepo.New(),
		tokens: auth.NewTokenService([]byte("test-secret")),
		images: &fakeImages{},
	}
	f.users = NewUserService(f.db, f.repos, credentials.NewStore(testParams), f.tokens, time.Hour)
	f.reviews = NewReviewService(f.db, f.repos, f.images)
	f.comments = NewCommentService(f.db, f.repos)
	return f
}

func (f *fixture) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), name, name+"@example.com", "password1")
	require.NoError(t, err)
	return u
}

func (f *fixture) review(t *testing.T, owner *models.User) *models.Review {
	t.Helper()
	r, err := f.reviews.Create(context.Background(), auth.Principal{UserID: owner.ID}, validInput())
	require.NoError(t, err)
	return r
}

func validInput() ReviewInput {
	return ReviewInput{Title: "Solid phone", Item: "Pixel", Group: "tech", Tags: []string{"android"}, Text: "Good.", Rating: 8.5}
}

type fakeImages struct {
	putKeys []string
	putErr  error
	getErr  error
}

func (f *fakeImages) PresignPut(_ context.Context, key string) (string, time.Time, error) {
	if f.putErr != nil {
		return "", time.Time{}, f.putErr
	}
	f.putKeys = append(f.putKeys, key)
	return "https://put.example/" + key, time.Unix(1700000000, 0), nil
}

func (f *fakeImages) PresignGet(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return "https://get.example/" + key, nil
}

