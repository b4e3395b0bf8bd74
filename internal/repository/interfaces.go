package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"gorm.io/datatypes"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateSession(ctx context.Context, id uuid.UUID, token *string) error
}

type FoodRepository interface {
	Create(ctx context.Context, food *domain.Food) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Food, error)
	GetByUserAndName(ctx context.Context, userID uuid.UUID, name string) (*domain.Food, error)
	// GetOwned returns the foods among ids that belong to userID.
	GetOwned(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Food, error)
	Update(ctx context.Context, food *domain.Food) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Food, int64, error)
}

type MealFilter struct {
	UserID   uuid.UUID
	MealType domain.MealType
	From     *datatypes.Date
	To       *datatypes.Date
}

type MealRepository interface {
	Create(ctx context.Context, meal *domain.Meal) error
	// GetByID loads the meal with its foods.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Meal, error)
	// ExistsOnDate reports whether a meal of mealType exists for the user on
	// date. A mealID other than uuid.Nil narrows the match to that meal.
	ExistsOnDate(ctx context.Context, userID uuid.UUID, mealType domain.MealType, date datatypes.Date, mealID uuid.UUID) (bool, error)
	UpdateInfo(ctx context.Context, meal *domain.Meal) error
	UpdateTotals(ctx context.Context, id uuid.UUID, totals domain.Nutrients) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter MealFilter, limit, offset int) ([]*domain.Meal, int64, error)
}

type MealFoodRepository interface {
	CreateMany(ctx context.Context, items []*domain.MealFood) error
	GetByMealID(ctx context.Context, mealID uuid.UUID) ([]*domain.MealFood, error)
	DeleteByMealID(ctx context.Context, mealID uuid.UUID) error
}

type ShoppingListRepository interface {
	CreateMany(ctx context.Context, items []*domain.ShoppingListItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ShoppingListItem, error)
	// ExistsOnDay compares dates at day granularity.
	ExistsOnDay(ctx context.Context, userID, foodID uuid.UUID, day time.Time) (bool, error)
	Update(ctx context.Context, item *domain.ShoppingListItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ShoppingListItem, int64, error)
	ListByDateRange(ctx context.Context, userID uuid.UUID, from, to time.Time, limit, offset int) ([]*domain.ShoppingListItem, int64, error)
}

// Transactor runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx *Repositories) error) error
}

type Repositories struct {
	User         UserRepository
	Food         FoodRepository
	Meal         MealRepository
	MealFood     MealFoodRepository
	ShoppingList ShoppingListRepository
	Tx           Transactor
}
