package reviews

import (
	"context"

	"github.com/dmitrijs2005/reviewhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	GetByID(ctx context.Context, id string) (*models.Review, error)
	List(ctx context.Context, limit, offset int) ([]*models.Review, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Review, error)
	Update(ctx context.Context, review *models.Review) (*models.Review, error)
	SetImageKey(ctx context.Context, id, key string) error
	Delete(ctx context.Context, id string) error
}
