package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type mealFoodRepository struct {
	db *gorm.DB
}

func NewMealFoodRepository(db *gorm.DB) *mealFoodRepository {
	return &mealFoodRepository{db: db}
}

func (r *mealFoodRepository) CreateMany(ctx context.Context, items []*domain.MealFood) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *mealFoodRepository) GetByMealID(ctx context.Context, mealID uuid.UUID) ([]*domain.MealFood, error) {
	var items []*domain.MealFood
	err := r.db.WithContext(ctx).
		Where("meal_id = ?", mealID).
		Preload("Food").
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mealFoodRepository) DeleteByMealID(ctx context.Context, mealID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.MealFood{}, "meal_id = ?", mealID).Error
}
