package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"gorm.io/gorm"
)

type foodRepository struct {
	db *gorm.DB
}

func NewFoodRepository(db *gorm.DB) *foodRepository {
	return &foodRepository{db: db}
}

func (r *foodRepository) Create(ctx context.Context, food *domain.Food) error {
	return r.db.WithContext(ctx).Create(food).Error
}

func (r *foodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Food, error) {
	var food domain.Food
	err := r.db.WithContext(ctx).First(&food, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (r *foodRepository) GetByUserAndName(ctx context.Context, userID uuid.UUID, name string) (*domain.Food, error) {
	var food domain.Food
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&food).Error
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (r *foodRepository) GetOwned(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Food, error) {
	var foods []*domain.Food
	if len(ids) == 0 {
		return foods, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND user_id = ?", ids, userID).
		Find(&foods).Error
	if err != nil {
		return nil, err
	}
	return foods, nil
}

func (r *foodRepository) Update(ctx context.Context, food *domain.Food) error {
	return r.db.WithContext(ctx).Save(food).Error
}

func (r *foodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Food{}, "id = ?", id).Error
}

func (r *foodRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Food, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Food{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var foods []*domain.Food
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&foods).Error
	if err != nil {
		return nil, 0, err
	}
	return foods, total, nil
}
