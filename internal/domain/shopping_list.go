package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingListItem is one entry of a user's shopping list. At most one entry
// per user, food and calendar day.
type ShoppingListItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	FoodID    uuid.UUID `json:"food_id" gorm:"type:uuid;not null"`
	Food      *Food     `json:"food,omitempty" gorm:"foreignKey:FoodID;constraint:OnDelete:CASCADE"`
	Quantity  float64   `json:"quantity" gorm:"not null"`
	Date      time.Time `json:"date" gorm:"not null;index"`
	IsBought  bool      `json:"is_bought" gorm:"not null;default:false"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShoppingListItem) TableName() string {
	return "shopping_lists"
}
