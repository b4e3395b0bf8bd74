package handlers

import (
	"net/http"

	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/service"
	"github.com/sirupsen/logrus"
)

type MealHandler struct {
	mealService *service.MealService
	log         *logrus.Entry
}

func NewMealHandler(mealService *service.MealService, log *logrus.Logger) *MealHandler {
	return &MealHandler{mealService: mealService, log: logger.Component(log, "meal_handler")}
}

type UpdateMealFoodsRequest struct {
	Foods []service.MealFoodInput `json:"foods"`
}

// List accepts meal_type, from and to filters besides the page parameters.
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, limit := pageParams(r)
	q := r.URL.Query()
	meals, err := h.mealService.ListMeals(r.Context(), userID, service.MealQuery{
		MealType: q.Get("meal_type"),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, h.log, "list_meals", err)
		return
	}

	writeJSON(w, http.StatusOK, meals)
}

func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	mealID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	meal, err := h.mealService.GetMeal(r.Context(), mealID, userID)
	if err != nil {
		writeError(w, h.log, "get_meal", err)
		return
	}

	writeJSON(w, http.StatusOK, meal)
}

func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req service.MealInput
	if !decodeJSON(w, r, &req) {
		return
	}

	meal, err := h.mealService.CreateMeal(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.log, "create_meal", err)
		return
	}

	writeJSON(w, http.StatusCreated, meal)
}

func (h *MealHandler) UpdateFoods(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	mealID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateMealFoodsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meal, err := h.mealService.UpdateMealFood(r.Context(), mealID, userID, req.Foods)
	if err != nil {
		writeError(w, h.log, "update_meal_foods", err)
		return
	}

	writeJSON(w, http.StatusOK, meal)
}

func (h *MealHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	mealID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.MealInfoInput
	if !decodeJSON(w, r, &req) {
		return
	}

	meal, err := h.mealService.UpdateMealInfo(r.Context(), mealID, userID, req)
	if err != nil {
		writeError(w, h.log, "update_meal_info", err)
		return
	}

	writeJSON(w, http.StatusOK, meal)
}

func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	mealID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.mealService.DeleteMeal(r.Context(), mealID, userID); err != nil {
		writeError(w, h.log, "delete_meal", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
