package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrShoppingItemNotFound = fmt.Errorf("%w: shopping list entry not found", domain.ErrNotFound)
	ErrEmptyShoppingList    = fmt.Errorf("%w: please provide a valid shopping list", domain.ErrValidation)
)

type ShoppingItemInput struct {
	FoodID   uuid.UUID `json:"food_id"`
	Quantity float64   `json:"quantity"`
	Date     string    `json:"date"`
	IsBought bool      `json:"is_bought"`
	Note     *string   `json:"note"`
}

// ShoppingItemUpdate carries optional changes. Nil fields are left untouched.
type ShoppingItemUpdate struct {
	Quantity *float64 `json:"quantity"`
	IsBought *bool    `json:"is_bought"`
	Date     *string  `json:"date"`
	Note     *string  `json:"note"`
}

type ShoppingListService struct {
	repos *repository.Repositories
}

func NewShoppingListService(repos *repository.Repositories) *ShoppingListService {
	return &ShoppingListService{repos: repos}
}

// CreateItems adds a batch of entries. The batch is rejected as a whole when
// any food is not the user's or when any entry repeats a food on a day that
// already has it, either in the store or earlier in the same batch.
func (s *ShoppingListService) CreateItems(ctx context.Context, userID uuid.UUID, inputs []ShoppingItemInput) ([]*domain.ShoppingListItem, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyShoppingList
	}

	items := make([]*domain.ShoppingListItem, 0, len(inputs))
	ids := make([]uuid.UUID, 0, len(inputs))
	seenIDs := make(map[uuid.UUID]struct{}, len(inputs))
	for _, in := range inputs {
		if in.FoodID == uuid.Nil {
			return nil, fmt.Errorf("%w: food_id is required", domain.ErrValidation)
		}
		if in.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
		}
		day, err := parseDay("date", in.Date)
		if err != nil {
			return nil, err
		}
		items = append(items, &domain.ShoppingListItem{
			ID:       uuid.New(),
			UserID:   userID,
			FoodID:   in.FoodID,
			Quantity: in.Quantity,
			Date:     day,
			IsBought: in.IsBought,
			Note:     in.Note,
		})
		if _, ok := seenIDs[in.FoodID]; !ok {
			seenIDs[in.FoodID] = struct{}{}
			ids = append(ids, in.FoodID)
		}
	}

	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		foods, err := tx.Food.GetOwned(ctx, userID, ids)
		if err != nil {
			return err
		}
		if len(foods) != len(ids) {
			return ErrFoodsNotOwned
		}
		names := make(map[uuid.UUID]string, len(foods))
		for _, f := range foods {
			names[f.ID] = f.Name
		}

		type key struct {
			food uuid.UUID
			day  string
		}
		batch := make(map[key]struct{}, len(items))
		var duplicates []string
		for _, item := range items {
			k := key{item.FoodID, item.Date.Format(dayLayout)}
			if _, dup := batch[k]; dup {
				duplicates = append(duplicates, names[item.FoodID])
				continue
			}
			batch[k] = struct{}{}

			exists, err := tx.ShoppingList.ExistsOnDay(ctx, userID, item.FoodID, item.Date)
			if err != nil {
				return err
			}
			if exists {
				duplicates = append(duplicates, names[item.FoodID])
			}
		}
		if len(duplicates) > 0 {
			return fmt.Errorf("%w: duplicate entries found for: %s", domain.ErrConflict, strings.Join(duplicates, ", "))
		}

		return tx.ShoppingList.CreateMany(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ShoppingListService) UpdateItem(ctx context.Context, id, userID uuid.UUID, update ShoppingItemUpdate) (*domain.ShoppingListItem, error) {
	item, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if update.Quantity != nil {
		if *update.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
		}
		item.Quantity = *update.Quantity
	}
	if update.IsBought != nil {
		item.IsBought = *update.IsBought
	}
	if update.Note != nil {
		item.Note = update.Note
	}
	if update.Date != nil {
		day, err := parseDay("date", *update.Date)
		if err != nil {
			return nil, err
		}
		if !sameDay(day, item.Date) {
			exists, err := s.repos.ShoppingList.ExistsOnDay(ctx, userID, item.FoodID, day)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("%w: an entry for this food already exists on %s", domain.ErrConflict, day.Format(dayLayout))
			}
		}
		item.Date = day
	}

	if err := s.repos.ShoppingList.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ShoppingListService) DeleteItem(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.repos.ShoppingList.Delete(ctx, id)
}

func (s *ShoppingListService) ListItems(ctx context.Context, userID uuid.UUID, page, limit int) (*Page[*domain.ShoppingListItem], error) {
	page, limit, offset := normalizePage(page, limit)
	items, total, err := s.repos.ShoppingList.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit), nil
}

// ListItemsByDate lists entries dated from..to inclusive. Both bounds are
// YYYY-MM-DD.
func (s *ShoppingListService) ListItemsByDate(ctx context.Context, userID uuid.UUID, from, to string, page, limit int) (*Page[*domain.ShoppingListItem], error) {
	fromDay, err := parseStrictDay("fromDate", from)
	if err != nil {
		return nil, err
	}
	toDay, err := parseStrictDay("toDate", to)
	if err != nil {
		return nil, err
	}
	if toDay.Before(fromDay) {
		return nil, fmt.Errorf("%w: toDate must not be before fromDate", domain.ErrValidation)
	}

	page, limit, offset := normalizePage(page, limit)
	items, total, err := s.repos.ShoppingList.ListByDateRange(ctx, userID, fromDay, toDay, limit, offset)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit), nil
}

func (s *ShoppingListService) owned(ctx context.Context, id, userID uuid.UUID) (*domain.ShoppingListItem, error) {
	item, err := s.repos.ShoppingList.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShoppingItemNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrShoppingItemNotFound
	}
	return item, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
