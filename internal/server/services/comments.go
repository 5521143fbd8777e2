package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/dmitrijs2005/reviewhub/internal/dbx"
	"github.com/dmitrijs2005/reviewhub/internal/server/access"
	"github.com/dmitrijs2005/reviewhub/internal/server/auth"
	"github.com/dmitrijs2005/reviewhub/internal/server/models"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/repomanager"
)

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager) *CommentService {
	return &CommentService{db: db, repomanager: m}
}

// Create adds a comment by p to review reviewID, which must exist.
func (s *CommentService) Create(ctx context.Context, p auth.Principal, reviewID, text string) (*models.Comment, error) {
	if !validID(p.UserID) {
		return nil, common.ErrUnauthorized
	}
	if !validID(reviewID) {
		return nil, common.ErrNotFound
	}
	if err := validateComment(text); err != nil {
		return nil, err
	}

	var created *models.Comment
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Reviews(tx).GetByID(ctx, reviewID); err != nil {
			return err
		}

		var err error
		created, err = s.repomanager.Comments(tx).Create(ctx, &models.Comment{
			ReviewID: reviewID,
			UserID:   p.UserID,
			Text:     text,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListByReview returns the comments on reviewID oldest first, or
// common.ErrNotFound when the review does not exist.
func (s *CommentService) ListByReview(ctx context.Context, reviewID string) ([]*models.Comment, error) {
	if !validID(reviewID) {
		return nil, common.ErrNotFound
	}
	if _, err := s.repomanager.Reviews(s.db).GetByID(ctx, reviewID); err != nil {
		return nil, err
	}
	return s.repomanager.Comments(s.db).ListByReview(ctx, reviewID)
}

func (s *CommentService) Update(ctx context.Context, p auth.Principal, id, text string) (*models.Comment, error) {
	if !validID(id) {
		return nil, common.ErrNotFound
	}
	if err := validateComment(text); err != nil {
		return nil, err
	}

	var updated *models.Comment
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Comments(tx)

		comment, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Authorize(p, comment.UserID); err != nil {
			return err
		}

		comment.Text = text
		updated, err = repo.Update(ctx, comment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CommentService) Delete(ctx context.Context, p auth.Principal, id string) error {
	if !validID(id) {
		return common.ErrNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Comments(tx)

		comment, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Authorize(p, comment.UserID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}
