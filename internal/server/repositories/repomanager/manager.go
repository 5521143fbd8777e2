package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/reviewhub/internal/dbx"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/comments"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/reviews"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Reviews(db dbx.DBTX) reviews.Repository
	Comments(db dbx.DBTX) comments.Repository
}
