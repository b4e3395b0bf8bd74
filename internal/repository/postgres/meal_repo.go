package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type mealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) *mealRepository {
	return &mealRepository{db: db}
}

// Create inserts the meal row only; meal foods are written separately.
func (r *mealRepository) Create(ctx context.Context, meal *domain.Meal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(meal).Error
}

func (r *mealRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meal, error) {
	var meal domain.Meal
	err := r.db.WithContext(ctx).
		Preload("Foods", func(db *gorm.DB) *gorm.DB {
			return db.Order("meal_foods.created_at ASC")
		}).
		Preload("Foods.Food").
		First(&meal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

func (r *mealRepository) ExistsOnDate(ctx context.Context, userID uuid.UUID, mealType domain.MealType, date datatypes.Date, mealID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Meal{}).
		Where("user_id = ? AND meal_type = ? AND date = ?", userID, mealType, date)
	if mealID != uuid.Nil {
		query = query.Where("id = ?", mealID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mealRepository) UpdateInfo(ctx context.Context, meal *domain.Meal) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Meal{}).
		Where("id = ?", meal.ID).
		Updates(map[string]interface{}{
			"name":        meal.Name,
			"description": meal.Description,
			"meal_type":   meal.MealType,
			"date":        meal.Date,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *mealRepository) UpdateTotals(ctx context.Context, id uuid.UUID, totals domain.Nutrients) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Meal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_calories":      totals.Calories,
			"total_protein":       totals.Protein,
			"total_carbohydrates": totals.Carbohydrates,
			"total_fats":          totals.Fats,
			"total_vitamins":      totals.Vitamins,
			"total_minerals":      totals.Minerals,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *mealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Meal{}, "id = ?", id).Error
}

func (r *mealRepository) List(ctx context.Context, filter repository.MealFilter, limit, offset int) ([]*domain.Meal, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", filter.UserID)
		if filter.MealType != "" {
			db = db.Where("meal_type = ?", filter.MealType)
		}
		if filter.From != nil {
			db = db.Where("date >= ?", *filter.From)
		}
		if filter.To != nil {
			db = db.Where("date <= ?", *filter.To)
		}
		return db
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Meal{}).
		Scopes(scope).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var meals []*domain.Meal
	err = r.db.WithContext(ctx).
		Scopes(scope).
		Preload("Foods").
		Preload("Foods.Food").
		Order("date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&meals).Error
	if err != nil {
		return nil, 0, err
	}
	return meals, total, nil
}
