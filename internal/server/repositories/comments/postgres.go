// Package comments stores review comments in PostgreSQL.
package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/dmitrijs2005/reviewhub/internal/dbx"
	"github.com/dmitrijs2005/reviewhub/internal/server/models"
)

// PostgresRepository implements Repository on top of a DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a comments repository bound to db.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts comment and fills its ID and timestamps. A missing review
// yields common.ErrNotFound and a missing author common.ErrUnauthorized.
func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO comments (review_id, user_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, comment.ReviewID, comment.UserID, comment.Text).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		if constraint, ok := dbx.IsForeignKeyViolation(err); ok {
			switch constraint {
			case "comments_review_id_fkey":
				return nil, common.ErrNotFound
			default:
				return nil, fmt.Errorf("%w: account no longer exists", common.ErrUnauthorized)
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comment, nil
}

// GetByID loads a comment, or returns common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query :=
		`SELECT id, review_id, user_id, body, created_at, updated_at FROM comments
		 WHERE id = $1
		 `

	c := &models.Comment{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.ReviewID, &c.UserID, &c.Text, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

// ListByReview returns the comments on reviewID, oldest first.
func (r *PostgresRepository) ListByReview(ctx context.Context, reviewID string) ([]*models.Comment, error) {
	query :=
		`SELECT id, review_id, user_id, body, created_at, updated_at FROM comments
		 WHERE review_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.UserID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update rewrites the comment body and refreshes UpdatedAt.
func (r *PostgresRepository) Update(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	query :=
		`UPDATE comments SET body = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, comment.ID, comment.Text).Scan(&comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comment, nil
}

// Delete removes a comment, or returns common.ErrNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
