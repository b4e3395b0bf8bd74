package service

import (
	"github.com/mealtrack/meal-tracker/internal/cache"
	"github.com/mealtrack/meal-tracker/internal/config"
	"github.com/mealtrack/meal-tracker/internal/metrics"
	"github.com/mealtrack/meal-tracker/internal/repository"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Session      *SessionManager
	User         *UserService
	Food         *FoodService
	Meal         *MealService
	ShoppingList *ShoppingListService
}

func NewServices(repos *repository.Repositories, tokens cache.TokenCache, notifier MealNotifier, rec metrics.Recorder, log *logrus.Logger, cfg *config.Config) *Services {
	return &Services{
		Session:      NewSessionManager(repos.User, tokens, cfg, rec, log),
		User:         NewUserService(repos.User),
		Food:         NewFoodService(repos.Food),
		Meal:         NewMealService(repos, notifier, rec, log),
		ShoppingList: NewShoppingListService(repos),
	}
}
