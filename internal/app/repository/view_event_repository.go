package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lnky-dev/lnky/internal/app/model"
	"gorm.io/gorm"
)

// ViewEventRepository defines the data access contract for profile view
// events and the per-user view counter.
type ViewEventRepository interface {
	Create(ctx context.Context, event *model.ViewEvent) error
	IncrementProfileViews(ctx context.Context, userID string) error
}

type viewEventRepository struct {
	db   *gorm.DB
	pool *pgxpool.Pool
}

// NewViewEventRepository returns a repository persisting events through GORM
// and bumping the denormalized counter through the pgx pool.
func NewViewEventRepository(db *gorm.DB, pool *pgxpool.Pool) ViewEventRepository {
	return &viewEventRepository{db: db, pool: pool}
}

func (r *viewEventRepository) Create(ctx context.Context, event *model.ViewEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// IncrementProfileViews bumps users.profile_views atomically in SQL so
// concurrent consumers never lose an increment.
func (r *viewEventRepository) IncrementProfileViews(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET profile_views = profile_views + 1 WHERE id = $1`,
		userID,
	)
	return err
}
