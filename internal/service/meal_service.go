package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/metrics"
	"github.com/mealtrack/meal-tracker/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrMealNotFound     = fmt.Errorf("%w: meal not found", domain.ErrNotFound)
	ErrFoodsNotOwned    = fmt.Errorf("%w: some food items do not belong to the user", domain.ErrValidation)
	ErrInvalidMealType  = fmt.Errorf("%w: invalid meal type, must be one of: %s", domain.ErrValidation, mealTypeList())
	ErrDuplicateFoodRef = fmt.Errorf("%w: a food may appear only once per meal", domain.ErrValidation)
)

// Meal event types published to the owner's realtime connections.
const (
	EventMealCreated = "MEAL_CREATED"
	EventMealUpdated = "MEAL_UPDATED"
	EventMealDeleted = "MEAL_DELETED"
)

// MealNotifier receives meal changes after they are committed. Delivery is
// best-effort.
type MealNotifier interface {
	PublishToUser(userID uuid.UUID, eventType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) PublishToUser(uuid.UUID, string, interface{}) {}

func mealTypeList() string {
	names := make([]string, len(domain.AllMealTypes))
	for i, t := range domain.AllMealTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

type MealFoodInput struct {
	FoodID      uuid.UUID `json:"id"`
	Quantity    float64   `json:"quantity"`
	ServingSize *string   `json:"serving_size"`
}

type MealInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	MealType    domain.MealType `json:"meal_type"`
	Date        string          `json:"date"`
	Foods       []MealFoodInput `json:"foods"`
}

type MealInfoInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	MealType    domain.MealType `json:"meal_type"`
	Date        string          `json:"date"`
}

type MealQuery struct {
	MealType string
	From     string
	To       string
	Page     int
	Limit    int
}

// MealService owns meals and keeps their nutrient totals in step with their
// foods. Every multi-row write runs in one transaction.
type MealService struct {
	repos    *repository.Repositories
	notifier MealNotifier
	rec      metrics.Recorder
	log      *logrus.Entry
	now      func() time.Time
}

func NewMealService(repos *repository.Repositories, notifier MealNotifier, rec metrics.Recorder, log *logrus.Logger) *MealService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &MealService{
		repos:    repos,
		notifier: notifier,
		rec:      rec,
		log:      logger.Component(log, "meal"),
		now:      time.Now,
	}
}

// CreateMeal stores a meal with its foods. Totals are the sum of each food's
// stored nutrients times the requested quantity.
func (s *MealService) CreateMeal(ctx context.Context, userID uuid.UUID, input MealInput) (*domain.Meal, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: meal name is required", domain.ErrValidation)
	}
	mealType := domain.MealType(strings.ToLower(string(input.MealType)))
	if !mealType.IsValid() {
		return nil, ErrInvalidMealType
	}
	day, err := parseDay("date", input.Date)
	if err != nil {
		return nil, err
	}
	ids, err := foodIDs(input.Foods)
	if err != nil {
		return nil, err
	}
	date := domain.DateOnly(day)

	meal := &domain.Meal{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: input.Description,
		MealType:    mealType,
		Date:        date,
	}

	err = s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		foods, err := tx.Food.GetOwned(ctx, userID, ids)
		if err != nil {
			return err
		}
		if len(foods) != len(ids) {
			return ErrFoodsNotOwned
		}

		if mealType.IsExclusive() {
			exists, err := tx.Meal.ExistsOnDate(ctx, userID, mealType, date, uuid.Nil)
			if err != nil {
				return err
			}
			if exists {
				return duplicateMealError(mealType)
			}
		}

		meal.Totals = aggregate(foods, input.Foods)
		if err := tx.Meal.Create(ctx, meal); err != nil {
			return err
		}
		return tx.MealFood.CreateMany(ctx, mealFoods(meal.ID, input.Foods))
	})
	if err != nil {
		return nil, s.translate(err, mealType)
	}

	created, err := s.repos.Meal.GetByID(ctx, meal.ID)
	if err != nil {
		return nil, err
	}

	s.rec.RecordMealAggregated("create")
	s.log.WithFields(logrus.Fields{"user_id": userID, "meal_id": meal.ID}).Info("meal created")
	s.notifier.PublishToUser(userID, EventMealCreated, created)
	return created, nil
}

// UpdateMealFood replaces the meal's foods and recomputes its totals from the
// foods' current nutrient values. On any error the meal keeps its previous
// foods and totals.
func (s *MealService) UpdateMealFood(ctx context.Context, mealID, userID uuid.UUID, foods []MealFoodInput) (*domain.Meal, error) {
	ids, err := foodIDs(foods)
	if err != nil {
		return nil, err
	}

	err = s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		if _, err := ownedMeal(ctx, tx.Meal, mealID, userID); err != nil {
			return err
		}

		if err := tx.MealFood.DeleteByMealID(ctx, mealID); err != nil {
			return err
		}

		owned, err := tx.Food.GetOwned(ctx, userID, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*domain.Food, len(owned))
		for _, f := range owned {
			byID[f.ID] = f
		}
		for _, in := range foods {
			if _, ok := byID[in.FoodID]; !ok {
				return fmt.Errorf("%w: food %s does not belong to the user", domain.ErrValidation, in.FoodID)
			}
		}

		if err := tx.MealFood.CreateMany(ctx, mealFoods(mealID, foods)); err != nil {
			return err
		}
		return tx.Meal.UpdateTotals(ctx, mealID, aggregate(owned, foods))
	})
	if err != nil {
		return nil, s.translate(err, "")
	}

	updated, err := s.repos.Meal.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}

	s.rec.RecordMealAggregated("update_foods")
	s.log.WithFields(logrus.Fields{"user_id": userID, "meal_id": mealID}).Info("meal foods replaced")
	s.notifier.PublishToUser(userID, EventMealUpdated, updated)
	return updated, nil
}

// UpdateMealInfo overwrites name, type and date. Totals are untouched. The
// duplicate check matches on the meal's own id as well as user, type and
// date, so it rejects an update that keeps both type and date; a clash with a
// different meal is rejected by the store's unique index.
func (s *MealService) UpdateMealInfo(ctx context.Context, mealID, userID uuid.UUID, input MealInfoInput) (*domain.Meal, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: meal name is required", domain.ErrValidation)
	}
	mealType := domain.MealType(strings.ToLower(string(input.MealType)))
	if !mealType.IsValid() {
		return nil, ErrInvalidMealType
	}
	day, err := parseDay("date", input.Date)
	if err != nil {
		return nil, err
	}
	date := domain.DateOnly(day)

	exists, err := s.repos.Meal.ExistsOnDate(ctx, userID, mealType, date, mealID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateMealError(mealType)
	}

	meal, err := ownedMeal(ctx, s.repos.Meal, mealID, userID)
	if err != nil {
		return nil, err
	}

	meal.Name = name
	meal.Description = input.Description
	meal.MealType = mealType
	meal.Date = date
	if err := s.repos.Meal.UpdateInfo(ctx, meal); err != nil {
		return nil, s.translate(err, mealType)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "meal_id": mealID}).Info("meal info updated")
	s.notifier.PublishToUser(userID, EventMealUpdated, meal)
	return meal, nil
}

// DeleteMeal removes the meal's foods and then the meal.
func (s *MealService) DeleteMeal(ctx context.Context, mealID, userID uuid.UUID) error {
	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		if _, err := ownedMeal(ctx, tx.Meal, mealID, userID); err != nil {
			return err
		}
		if err := tx.MealFood.DeleteByMealID(ctx, mealID); err != nil {
			return err
		}
		return tx.Meal.Delete(ctx, mealID)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "meal_id": mealID}).Info("meal deleted")
	s.notifier.PublishToUser(userID, EventMealDeleted, map[string]uuid.UUID{"id": mealID})
	return nil
}

func (s *MealService) GetMeal(ctx context.Context, mealID, userID uuid.UUID) (*domain.Meal, error) {
	return ownedMeal(ctx, s.repos.Meal, mealID, userID)
}

// ListMeals returns the user's meals newest first. Without date bounds it
// covers the last seven days.
func (s *MealService) ListMeals(ctx context.Context, userID uuid.UUID, q MealQuery) (*Page[*domain.Meal], error) {
	filter := repository.MealFilter{UserID: userID}

	if q.MealType != "" {
		mealType := domain.MealType(strings.ToLower(q.MealType))
		if !mealType.IsValid() {
			return nil, ErrInvalidMealType
		}
		filter.MealType = mealType
	}

	if q.From == "" && q.To == "" {
		today := domain.DateOnly(s.now().UTC())
		weekAgo := domain.DateOnly(time.Time(today).AddDate(0, 0, -7))
		filter.From, filter.To = &weekAgo, &today
	} else {
		if q.From != "" {
			from, err := parseDay("from", q.From)
			if err != nil {
				return nil, err
			}
			d := datatypes.Date(from)
			filter.From = &d
		}
		if q.To != "" {
			to, err := parseDay("to", q.To)
			if err != nil {
				return nil, err
			}
			d := datatypes.Date(to)
			filter.To = &d
		}
	}

	page, limit, offset := normalizePage(q.Page, q.Limit)
	meals, total, err := s.repos.Meal.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	return newPage(meals, total, page, limit), nil
}

func (s *MealService) translate(err error, mealType domain.MealType) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if mealType == "" {
			return fmt.Errorf("%w: meal already contains one of these foods", domain.ErrConflict)
		}
		return duplicateMealError(mealType)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrFoodsNotOwned
	}
	return err
}

func ownedMeal(ctx context.Context, meals repository.MealRepository, mealID, userID uuid.UUID) (*domain.Meal, error) {
	meal, err := meals.GetByID(ctx, mealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	if meal.UserID != userID {
		return nil, ErrMealNotFound
	}
	return meal, nil
}

func duplicateMealError(mealType domain.MealType) error {
	return fmt.Errorf("%w: a meal of type %s already exists for this date", domain.ErrConflict, mealType)
}

func foodIDs(foods []MealFoodInput) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(foods))
	seen := make(map[uuid.UUID]struct{}, len(foods))
	for _, f := range foods {
		if f.FoodID == uuid.Nil {
			return nil, fmt.Errorf("%w: food id is required", domain.ErrValidation)
		}
		if f.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
		}
		if _, dup := seen[f.FoodID]; dup {
			return nil, ErrDuplicateFoodRef
		}
		seen[f.FoodID] = struct{}{}
		ids = append(ids, f.FoodID)
	}
	return ids, nil
}

func aggregate(foods []*domain.Food, inputs []MealFoodInput) domain.Nutrients {
	byID := make(map[uuid.UUID]domain.Nutrients, len(foods))
	for _, f := range foods {
		byID[f.ID] = f.Nutrients
	}

	var totals domain.Nutrients
	for _, in := range inputs {
		totals = totals.Add(byID[in.FoodID], in.Quantity)
	}
	return totals
}

func mealFoods(mealID uuid.UUID, inputs []MealFoodInput) []*domain.MealFood {
	items := make([]*domain.MealFood, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, &domain.MealFood{
			MealID:      mealID,
			FoodID:      in.FoodID,
			Quantity:    in.Quantity,
			ServingSize: in.ServingSize,
		})
	}
	return items
}
