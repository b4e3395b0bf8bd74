package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrFoodNotFound = fmt.Errorf("%w: food not found", domain.ErrNotFound)
	ErrFoodExists   = fmt.Errorf("%w: food item already exists for this user", domain.ErrConflict)
	ErrFoodInUse    = fmt.Errorf("%w: food is used by one or more meals", domain.ErrConflict)
)

type FoodInput struct {
	Name string `json:"name"`
	domain.Nutrients
}

func (in FoodInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: food name is required", domain.ErrValidation)
	}
	n := in.Nutrients
	for _, v := range []float64{n.Calories, n.Protein, n.Carbohydrates, n.Fats, n.Vitamins, n.Minerals} {
		if v < 0 {
			return fmt.Errorf("%w: nutrient values must not be negative", domain.ErrValidation)
		}
	}
	return nil
}

type FoodService struct {
	foodRepo repository.FoodRepository
}

func NewFoodService(foodRepo repository.FoodRepository) *FoodService {
	return &FoodService{foodRepo: foodRepo}
}

func (s *FoodService) CreateFood(ctx context.Context, userID uuid.UUID, input FoodInput) (*domain.Food, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)

	if existing, err := s.foodRepo.GetByUserAndName(ctx, userID, name); err == nil && existing != nil {
		return nil, ErrFoodExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	food := &domain.Food{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Nutrients: input.Nutrients,
	}
	if err := s.foodRepo.Create(ctx, food); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFoodExists
		}
		return nil, err
	}
	return food, nil
}

func (s *FoodService) UpdateFood(ctx context.Context, foodID, userID uuid.UUID, input FoodInput) (*domain.Food, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	food, err := s.owned(ctx, foodID, userID)
	if err != nil {
		return nil, err
	}

	food.Name = strings.TrimSpace(input.Name)
	food.Nutrients = input.Nutrients
	if err := s.foodRepo.Update(ctx, food); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFoodExists
		}
		return nil, err
	}
	return food, nil
}

func (s *FoodService) DeleteFood(ctx context.Context, foodID, userID uuid.UUID) error {
	if _, err := s.owned(ctx, foodID, userID); err != nil {
		return err
	}
	if err := s.foodRepo.Delete(ctx, foodID); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrFoodInUse
		}
		return err
	}
	return nil
}

func (s *FoodService) ListFoods(ctx context.Context, userID uuid.UUID, page, limit int) (*Page[*domain.Food], error) {
	page, limit, offset := normalizePage(page, limit)
	foods, total, err := s.foodRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return newPage(foods, total, page, limit), nil
}

func (s *FoodService) owned(ctx context.Context, foodID, userID uuid.UUID) (*domain.Food, error) {
	food, err := s.foodRepo.GetByID(ctx, foodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	if food.UserID != userID {
		return nil, ErrFoodNotFound
	}
	return food, nil
}
