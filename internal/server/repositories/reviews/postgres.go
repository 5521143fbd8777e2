// Package reviews stores reviews in PostgreSQL. The owning user id is
// written once on insert; no statement here updates it.
package reviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/dmitrijs2005/reviewhub/internal/dbx"
	"github.com/dmitrijs2005/reviewhub/internal/server/models"
)

const selectColumns = `id, user_id, title, item, item_group, tags, body, rating, image_key, created_at, updated_at`

// PostgresRepository implements Repository on top of a DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a reviews repository bound to db.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts review and fills its ID and timestamps. A missing owner row
// is reported as common.ErrUnauthorized.
func (r *PostgresRepository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	tags, err := encodeTags(review.Tags)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO reviews (user_id, title, item, item_group, tags, body, rating)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		review.UserID, review.Title, review.Item, review.Group, tags, review.Text, review.Rating,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if _, ok := dbx.IsForeignKeyViolation(err); ok {
			return nil, fmt.Errorf("%w: account no longer exists", common.ErrUnauthorized)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return review, nil
}

// GetByID loads a review, or returns common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	query := `SELECT ` + selectColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return review, nil
}

// List returns a page of reviews, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Review, error) {
	query := `SELECT ` + selectColumns + ` FROM reviews ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	return r.query(ctx, query, limit, offset)
}

// ListByUser returns every review owned by userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Review, error) {
	query := `SELECT ` + selectColumns + ` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC, id`
	return r.query(ctx, query, userID)
}

// Update rewrites the editable fields of review and refreshes UpdatedAt.
func (r *PostgresRepository) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	tags, err := encodeTags(review.Tags)
	if err != nil {
		return nil, err
	}

	query :=
		`UPDATE reviews
		 SET title = $2, item = $3, item_group = $4, tags = $5, body = $6, rating = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		review.ID, review.Title, review.Item, review.Group, tags, review.Text, review.Rating,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return review, nil
}

// SetImageKey records the object key of the review image.
func (r *PostgresRepository) SetImageKey(ctx context.Context, id, key string) error {
	query := `UPDATE reviews SET image_key = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, key)
}

// Delete removes the review and its comments, or returns common.ErrNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM reviews WHERE id = $1`, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select reviews: %w", err)
	}
	defer rows.Close()

	var result []*models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(row scanner) (*models.Review, error) {
	review := &models.Review{}
	var tags []byte

	err := row.Scan(&review.ID, &review.UserID, &review.Title, &review.Item, &review.Group,
		&tags, &review.Text, &review.Rating, &review.ImageKey, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &review.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	if review.Tags == nil {
		review.Tags = []string{}
	}
	review.HasImage = review.ImageKey != ""

	return review, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}
