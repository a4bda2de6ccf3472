package repository

import (
	"context"
	"errors"

	"github.com/lnky-dev/lnky/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that the link does not exist or is not owned
	// by the caller. The two cases are deliberately indistinguishable.
	ErrLinkNotFound = errors.New("link not found")
)

// LinkRepository defines the data access contract for a user's links.
// Every method is scoped to one owner; no call can observe or touch
// another user's rows.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByOwner(ctx context.Context, userID, id string) (*model.Link, error)
	ListByOwner(ctx context.Context, userID string) ([]model.Link, error)
	ListActiveByOwner(ctx context.Context, userID string) ([]model.Link, error)
	ListIDsByOwner(ctx context.Context, userID string) ([]string, error)
	CountByOwner(ctx context.Context, userID string, kind string) (int64, error)
	Update(ctx context.Context, userID, id string, fields map[string]interface{}) (*model.Link, error)
	UpdateOrders(ctx context.Context, userID string, orderedIDs []string) error
	Delete(ctx context.Context, userID, id string) error
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return err
	}
	return nil
}

func (r *linkRepository) GetByOwner(ctx context.Context, userID, id string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) ListByOwner(ctx context.Context, userID string) ([]model.Link, error) {
	var result []model.Link
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order ASC, id ASC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *linkRepository) ListActiveByOwner(ctx context.Context, userID string) ([]model.Link, error) {
	var result []model.Link
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("sort_order ASC, id ASC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *linkRepository) ListIDsByOwner(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *linkRepository) CountByOwner(ctx context.Context, userID string, kind string) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("user_id = ?", userID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *linkRepository) Update(ctx context.Context, userID, id string, fields map[string]interface{}) (*model.Link, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}

	var link model.Link
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// UpdateOrders assigns sort_order = index for each id in sequence, inside
// one transaction so a concurrent reader never observes a half-applied
// ordering. Callers must have verified the id set beforehand.
func (r *linkRepository) UpdateOrders(ctx context.Context, userID string, orderedIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for index, id := range orderedIDs {
			result := tx.Model(&model.Link{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("sort_order", index)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrLinkNotFound
			}
		}
		return nil
	})
}

func (r *linkRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Link{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}
