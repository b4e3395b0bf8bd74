package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type shoppingListRepository struct {
	db *gorm.DB
}

func NewShoppingListRepository(db *gorm.DB) *shoppingListRepository {
	return &shoppingListRepository{db: db}
}

func (r *shoppingListRepository) CreateMany(ctx context.Context, items []*domain.ShoppingListItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *shoppingListRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShoppingListItem, error) {
	var item domain.ShoppingListItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *shoppingListRepository) ExistsOnDay(ctx context.Context, userID, foodID uuid.UUID, day time.Time) (bool, error) {
	start, end := dayBounds(day)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ShoppingListItem{}).
		Where("user_id = ? AND food_id = ? AND date >= ? AND date < ?", userID, foodID, start, end).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shoppingListRepository) Update(ctx context.Context, item *domain.ShoppingListItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *shoppingListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ShoppingListItem{}, "id = ?", id).Error
}

func (r *shoppingListRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ShoppingListItem, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.ShoppingListItem{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var items []*domain.ShoppingListItem
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByDateRange returns entries whose date falls on any day from from to
// to, both inclusive.
func (r *shoppingListRepository) ListByDateRange(ctx context.Context, userID uuid.UUID, from, to time.Time, limit, offset int) ([]*domain.ShoppingListItem, int64, error) {
	start, _ := dayBounds(from)
	_, end := dayBounds(to)

	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.ShoppingListItem{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var items []*domain.ShoppingListItem
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Preload("Food").
		Order("date ASC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
