package handlers

import (
	"net/http"

	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/service"
	"github.com/sirupsen/logrus"
)

type FoodHandler struct {
	foodService *service.FoodService
	log         *logrus.Entry
}

func NewFoodHandler(foodService *service.FoodService, log *logrus.Logger) *FoodHandler {
	return &FoodHandler{foodService: foodService, log: logger.Component(log, "food_handler")}
}

func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, limit := pageParams(r)
	foods, err := h.foodService.ListFoods(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, h.log, "list_foods", err)
		return
	}

	writeJSON(w, http.StatusOK, foods)
}

func (h *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req service.FoodInput
	if !decodeJSON(w, r, &req) {
		return
	}

	food, err := h.foodService.CreateFood(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.log, "create_food", err)
		return
	}

	writeJSON(w, http.StatusCreated, food)
}

func (h *FoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	foodID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.FoodInput
	if !decodeJSON(w, r, &req) {
		return
	}

	food, err := h.foodService.UpdateFood(r.Context(), foodID, userID, req)
	if err != nil {
		writeError(w, h.log, "update_food", err)
		return
	}

	writeJSON(w, http.StatusOK, food)
}

func (h *FoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	foodID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.foodService.DeleteFood(r.Context(), foodID, userID); err != nil {
		writeError(w, h.log, "delete_food", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
