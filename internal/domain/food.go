package domain

import (
	"time"

	"github.com/google/uuid"
)

// Nutrients is the nutrient profile shared by foods (per serving) and meals
// (aggregated totals).
type Nutrients struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
	Vitamins      float64 `json:"vitamins"`
	Minerals      float64 `json:"minerals"`
}

// Add returns n plus other scaled by quantity. No rounding is applied.
func (n Nutrients) Add(other Nutrients, quantity float64) Nutrients {
	return Nutrients{
		Calories:      n.Calories + other.Calories*quantity,
		Protein:       n.Protein + other.Protein*quantity,
		Carbohydrates: n.Carbohydrates + other.Carbohydrates*quantity,
		Fats:          n.Fats + other.Fats*quantity,
		Vitamins:      n.Vitamins + other.Vitamins*quantity,
		Minerals:      n.Minerals + other.Minerals*quantity,
	}
}

type Food struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_foods_user_name"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_foods_user_name"`
	Nutrients `gorm:"embedded"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
