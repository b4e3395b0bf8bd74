package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// AllMealTypes lists the accepted meal types in display order.
var AllMealTypes = []MealType{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack}

func (t MealType) IsValid() bool {
	return slices.Contains(AllMealTypes, t)
}

// IsExclusive reports whether at most one meal of this type may exist per
// user and day. Snacks are exempt.
func (t MealType) IsExclusive() bool {
	return t != MealTypeSnack
}

// Meal totals are derived from the meal's foods and are only written by the
// aggregation paths in the meal service.
type Meal struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_meals_user_type_date,where:meal_type <> 'snack'"`
	Name        string         `json:"name" gorm:"not null"`
	Description *string        `json:"description"`
	MealType    MealType       `json:"meal_type" gorm:"type:varchar(16);not null;uniqueIndex:idx_meals_user_type_date"`
	Date        datatypes.Date `json:"date" gorm:"not null;uniqueIndex:idx_meals_user_type_date"`
	Totals      Nutrients      `json:"totals" gorm:"embedded;embeddedPrefix:total_"`
	Foods       []MealFood     `json:"foods" gorm:"foreignKey:MealID;constraint:OnDelete:RESTRICT"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// MealFood links a food to a meal with a per-meal quantity multiplier.
type MealFood struct {
	MealID      uuid.UUID `json:"meal_id" gorm:"type:uuid;primaryKey"`
	FoodID      uuid.UUID `json:"food_id" gorm:"type:uuid;primaryKey"`
	Quantity    float64   `json:"quantity" gorm:"not null"`
	ServingSize *string   `json:"serving_size"`
	Food        *Food     `json:"food,omitempty" gorm:"foreignKey:FoodID;constraint:OnDelete:RESTRICT"`
	CreatedAt   time.Time `json:"created_at"`
}

// DateOnly truncates t to a calendar day in UTC.
func DateOnly(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
