package handlers

import (
	"net/http"

	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/service"
	"github.com/sirupsen/logrus"
)

type ShoppingListHandler struct {
	shoppingList *service.ShoppingListService
	log          *logrus.Entry
}

func NewShoppingListHandler(shoppingList *service.ShoppingListService, log *logrus.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{shoppingList: shoppingList, log: logger.Component(log, "shopping_list_handler")}
}

type CreateShoppingListRequest struct {
	Items []service.ShoppingItemInput `json:"items"`
}

func (h *ShoppingListHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, limit := pageParams(r)
	items, err := h.shoppingList.ListItems(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, h.log, "list_shopping_items", err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *ShoppingListHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, limit := pageParams(r)
	q := r.URL.Query()
	items, err := h.shoppingList.ListItemsByDate(r.Context(), userID, q.Get("fromDate"), q.Get("toDate"), page, limit)
	if err != nil {
		writeError(w, h.log, "list_shopping_items_by_date", err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *ShoppingListHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateShoppingListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items, err := h.shoppingList.CreateItems(r.Context(), userID, req.Items)
	if err != nil {
		writeError(w, h.log, "create_shopping_items", err)
		return
	}

	writeJSON(w, http.StatusCreated, items)
}

func (h *ShoppingListHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.ShoppingItemUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.shoppingList.UpdateItem(r.Context(), itemID, userID, req)
	if err != nil {
		writeError(w, h.log, "update_shopping_item", err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ShoppingListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.shoppingList.DeleteItem(r.Context(), itemID, userID); err != nil {
		writeError(w, h.log, "delete_shopping_item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
