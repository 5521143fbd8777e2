package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/dmitrijs2005/reviewhub/internal/dbx"
	"github.com/dmitrijs2005/reviewhub/internal/server/access"
	"github.com/dmitrijs2005/reviewhub/internal/server/auth"
	"github.com/dmitrijs2005/reviewhub/internal/server/models"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/reviewhub/internal/server/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ImageStore presigns object-storage requests for review images.
type ImageStore interface {
	PresignPut(ctx context.Context, key string) (string, time.Time, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// ReviewInput carries the fields a caller may set. The owner is never part
// of it: it always comes from the principal.
type ReviewInput struct {
	Title  string   `json:"title"`
	Item   string   `json:"item"`
	Group  string   `json:"group"`
	Tags   []string `json:"tags"`
	Text   string   `json:"text"`
	Rating float64  `json:"rating"`
}

type ReviewService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	images      ImageStore
}

func NewReviewService(db *sql.DB, m repomanager.RepositoryManager, images ImageStore) *ReviewService {
	return &ReviewService{db: db, repomanager: m, images: images}
}

// Create stores a review owned by p.
func (s *ReviewService) Create(ctx context.Context, p auth.Principal, in ReviewInput) (*models.Review, error) {
	if !validID(p.UserID) {
		return nil, common.ErrUnauthorized
	}
	if err := validateReview(in); err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID: p.UserID,
		Title:  in.Title,
		Item:   in.Item,
		Group:  in.Group,
		Tags:   in.Tags,
		Text:   in.Text,
		Rating: in.Rating,
	}
	if review.Tags == nil {
		review.Tags = []string{}
	}
	return s.repomanager.Reviews(s.db).Create(ctx, review)
}

func (s *ReviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	if !validID(id) {
		return nil, common.ErrNotFound
	}
	return s.repomanager.Reviews(s.db).GetByID(ctx, id)
}

// List pages through all reviews, newest first. Out-of-range paging values
// are clamped.
func (s *ReviewService) List(ctx context.Context, limit, offset int) ([]*models.Review, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repomanager.Reviews(s.db).List(ctx, limit, offset)
}

// ListByUser returns the reviews of userID, or common.ErrNotFound when no
// such user exists.
func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]*models.Review, error) {
	if !validID(userID) {
		return nil, common.ErrNotFound
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Reviews(s.db).ListByUser(ctx, userID)
}

// Update replaces the editable fields of review id. The owner is unchanged.
func (s *ReviewService) Update(ctx context.Context, p auth.Principal, id string, in ReviewInput) (*models.Review, error) {
	if !validID(id) {
		return nil, common.ErrNotFound
	}
	if err := validateReview(in); err != nil {
		return nil, err
	}

	var updated *models.Review
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reviews(tx)

		review, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Authorize(p, review.UserID); err != nil {
			return err
		}

		review.Title = in.Title
		review.Item = in.Item
		review.Group = in.Group
		review.Tags = in.Tags
		if review.Tags == nil {
			review.Tags = []string{}
		}
		review.Text = in.Text
		review.Rating = in.Rating

		updated, err = repo.Update(ctx, review)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, p auth.Principal, id string) error {
	if !validID(id) {
		return common.ErrNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reviews(tx)

		review, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Authorize(p, review.UserID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

// RequestImageUpload records a fresh object key on review id and returns a
// presigned URL the owner can upload the image to. Any previous image is
// replaced once the new key is stored.
func (s *ReviewService) RequestImageUpload(ctx context.Context, p auth.Principal, id string) (*models.ImageUpload, error) {
	if !validID(id) {
		return nil, common.ErrNotFound
	}

	repo := s.repomanager.Reviews(s.db)

	review, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, review.UserID); err != nil {
		return nil, err
	}

	key := storage.NewImageKey(review.ID)
	url, expiresAt, err := s.images.PresignPut(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := repo.SetImageKey(ctx, review.ID, key); err != nil {
		return nil, err
	}

	return &models.ImageUpload{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

// ImageURL returns a presigned download URL for the image of review id.
func (s *ReviewService) ImageURL(ctx context.Context, id string) (string, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if review.ImageKey == "" {
		return "", common.ErrNotFound
	}
	return s.images.PresignGet(ctx, review.ImageKey)
}
