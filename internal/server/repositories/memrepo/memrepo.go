// Package memrepo is an in-memory RepositoryManager with the same
// uniqueness, not-found and cascade behaviour as the PostgreSQL schema.
// Transactions are not isolated: a DBTX argument is accepted and ignored.
package memrepo

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/dmitrijs2005/reviewhub/internal/dbx"
	"github.com/dmitrijs2005/reviewhub/internal/server/models"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/comments"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/reviews"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/users"
)

type Manager struct {
	mu  sync.Mutex
	seq int64
	now func() time.Time

	users    map[string]*userRow
	reviews  map[string]*reviewRow
	comments map[string]*commentRow
}

type userRow struct {
	seq int64
	models.User
}

type reviewRow struct {
	seq int64
	models.Review
}

type commentRow struct {
	seq int64
	models.Comment
}

func New() *Manager {
	return &Manager{
		now:      time.Now,
		users:    map[string]*userRow{},
		reviews:  map[string]*reviewRow{},
		comments: map[string]*commentRow{},
	}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Users(dbx.DBTX) users.Repository       { return (*userRepo)(m) }
func (m *Manager) Reviews(dbx.DBTX) reviews.Repository   { return (*reviewRepo)(m) }
func (m *Manager) Comments(dbx.DBTX) comments.Repository { return (*commentRepo)(m) }

func (m *Manager) nextSeq() int64 {
	m.seq++
	return m.seq
}

type userRepo Manager

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.UserName == user.UserName {
			return nil, fmt.Errorf("%w: username is already taken", common.ErrConflict)
		}
		if u.Email == user.Email {
			return nil, fmt.Errorf("%w: email is already registered", common.ErrConflict)
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = m.now()
	m.users[user.ID] = &userRow{seq: m.nextSeq(), User: *user}
	return user, nil
}

func (r *userRepo) GetByUsername(_ context.Context, userName string) (*models.User, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.UserName == userName {
			c := u.User
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := u.User
	return &c, nil
}

func (r *userRepo) List(context.Context) ([]*models.User, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]*userRow, 0, len(m.users))
	for _, u := range m.users {
		rows = append(rows, u)
	}
	slices.SortFunc(rows, func(a, b *userRow) int { return int(a.seq - b.seq) })

	result := make([]*models.User, 0, len(rows))
	for _, u := range rows {
		result = append(result, &models.User{ID: u.ID, UserName: u.UserName, Email: u.Email, CreatedAt: u.CreatedAt})
	}
	return result, nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.users, id)
	for rid, rv := range m.reviews {
		if rv.UserID == id {
			m.deleteReviewLocked(rid)
		}
	}
	for cid, c := range m.comments {
		if c.UserID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (r *userRepo) SetAdmin(_ context.Context, userName string, admin bool) error {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.UserName == userName {
			u.IsAdmin = admin
			return nil
		}
	}
	return common.ErrNotFound
}

func (m *Manager) deleteReviewLocked(id string) {
	delete(m.reviews, id)
	for cid, c := range m.comments {
		if c.ReviewID == id {
			delete(m.comments, cid)
		}
	}
}

type reviewRepo Manager

func copyReview(rv *reviewRow) *models.Review {
	c := rv.Review
	c.Tags = slices.Clone(rv.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.HasImage = c.ImageKey != ""
	return &c
}

func (r *reviewRepo) Create(_ context.Context, review *models.Review) (*models.Review, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[review.UserID]; !ok {
		return nil, fmt.Errorf("%w: account no longer exists", common.ErrUnauthorized)
	}

	review.ID = uuid.NewString()
	review.CreatedAt = m.now()
	review.UpdatedAt = review.CreatedAt
	row := &reviewRow{seq: m.nextSeq(), Review: *review}
	row.Tags = slices.Clone(review.Tags)
	m.reviews[review.ID] = row
	return review, nil
}

func (r *reviewRepo) GetByID(_ context.Context, id string) (*models.Review, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	rv, ok := m.reviews[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return copyReview(rv), nil
}

func (r *reviewRepo) List(_ context.Context, limit, offset int) ([]*models.Review, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := r.sortedLocked(func(*reviewRow) bool { return true })
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}

	result := make([]*models.Review, 0, len(rows))
	for _, rv := range rows {
		result = append(result, copyReview(rv))
	}
	return result, nil
}

func (r *reviewRepo) ListByUser(_ context.Context, userID string) ([]*models.Review, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*models.Review
	for _, rv := range r.sortedLocked(func(rv *reviewRow) bool { return rv.UserID == userID }) {
		result = append(result, copyReview(rv))
	}
	return result, nil
}

// sortedLocked returns matching rows newest first.
func (r *reviewRepo) sortedLocked(keep func(*reviewRow) bool) []*reviewRow {
	var rows []*reviewRow
	for _, rv := range r.reviews {
		if keep(rv) {
			rows = append(rows, rv)
		}
	}
	slices.SortFunc(rows, func(a, b *reviewRow) int { return int(b.seq - a.seq) })
	return rows
}

func (r *reviewRepo) Update(_ context.Context, review *models.Review) (*models.Review, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	rv, ok := m.reviews[review.ID]
	if !ok {
		return nil, common.ErrNotFound
	}
	rv.Title = review.Title
	rv.Item = review.Item
	rv.Group = review.Group
	rv.Tags = slices.Clone(review.Tags)
	rv.Text = review.Text
	rv.Rating = review.Rating
	rv.UpdatedAt = m.now()

	review.UpdatedAt = rv.UpdatedAt
	return review, nil
}

func (r *reviewRepo) SetImageKey(_ context.Context, id, key string) error {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	rv, ok := m.reviews[id]
	if !ok {
		return common.ErrNotFound
	}
	rv.ImageKey = key
	rv.UpdatedAt = m.now()
	return nil
}

func (r *reviewRepo) Delete(_ context.Context, id string) error {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[id]; !ok {
		return common.ErrNotFound
	}
	m.deleteReviewLocked(id)
	return nil
}

type commentRepo Manager

func (r *commentRepo) Create(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[comment.ReviewID]; !ok {
		return nil, common.ErrNotFound
	}
	if _, ok := m.users[comment.UserID]; !ok {
		return nil, fmt.Errorf("%w: account no longer exists", common.ErrUnauthorized)
	}

	comment.ID = uuid.NewString()
	comment.CreatedAt = m.now()
	comment.UpdatedAt = comment.CreatedAt
	m.comments[comment.ID] = &commentRow{seq: m.nextSeq(), Comment: *comment}
	return comment, nil
}

func (r *commentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := c.Comment
	return &cp, nil
}

func (r *commentRepo) ListByReview(_ context.Context, reviewID string) ([]*models.Comment, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []*commentRow
	for _, c := range m.comments {
		if c.ReviewID == reviewID {
			rows = append(rows, c)
		}
	}
	slices.SortFunc(rows, func(a, b *commentRow) int { return int(a.seq - b.seq) })

	var result []*models.Comment
	for _, c := range rows {
		cp := c.Comment
		result = append(result, &cp)
	}
	return result, nil
}

func (r *commentRepo) Update(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[comment.ID]
	if !ok {
		return nil, common.ErrNotFound
	}
	c.Text = comment.Text
	c.UpdatedAt = m.now()

	comment.UpdatedAt = c.UpdatedAt
	return comment, nil
}

func (r *commentRepo) Delete(_ context.Context, id string) error {
	m := (*Manager)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

var (
	_ users.Repository    = (*userRepo)(nil)
	_ reviews.Repository  = (*reviewRepo)(nil)
	_ comments.Repository = (*commentRepo)(nil)
)
