package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoodHandler(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	var created struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
		domain.Nutrients
	}

	t.Run("create", func(t *testing.T) {
		body := map[string]interface{}{"name": "Banana", "calories": 89, "protein": 1.1, "carbohydrates": 22.8}

		resp := testutil.Do(t, http.MethodPost, ts.APIURL("/foods"), body, token)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		testutil.AssertJSONResponse(t, resp, &created)
		require.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, "Banana", created.Name)
		assert.Equal(t, 89.0, created.Calories)

		resp = testutil.Do(t, http.MethodPost, ts.APIURL("/foods"), body, token)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "already exists")

		// names are unique per user only
		resp = testutil.Do(t, http.MethodPost, ts.APIURL("/foods"), body, otherToken)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		resp = testutil.Do(t, http.MethodPost, ts.APIURL("/foods"), map[string]interface{}{"name": ""}, token)
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("update", func(t *testing.T) {
		url := ts.APIURL(fmt.Sprintf("/foods/%s", created.ID))

		resp := testutil.Do(t, http.MethodPut, url, map[string]interface{}{"name": "Plantain", "calories": 122}, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		resp = testutil.Do(t, http.MethodPut, url, map[string]interface{}{"name": "Stolen"}, otherToken)
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})

	t.Run("list", func(t *testing.T) {
		testutil.NewFoodBuilder().ForUser(user).Build(t, ts.DB.DB)

		resp := testutil.Do(t, http.MethodGet, ts.APIURL("/foods?page=1&limit=1"), nil, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var page struct {
			Items      []map[string]interface{} `json:"items"`
			TotalItems int64                    `json:"total_items"`
			TotalPages int                      `json:"total_pages"`
		}
		testutil.AssertJSONResponse(t, resp, &page)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(2), page.TotalItems)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("delete in use", func(t *testing.T) {
		food := testutil.NewFoodBuilder().ForUser(user).Build(t, ts.DB.DB)
		testutil.NewMealBuilder().ForUser(user).WithType(domain.MealTypeSnack).WithFood(food, 1).Build(t, ts.DB.DB)

		resp := testutil.Do(t, http.MethodDelete, ts.APIURL(fmt.Sprintf("/foods/%s", food.ID)), nil, token)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "used by")
	})

	t.Run("delete", func(t *testing.T) {
		url := ts.APIURL(fmt.Sprintf("/foods/%s", created.ID))
		testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, url, nil, otherToken), http.StatusNotFound)
		testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, url, nil, token), http.StatusNoContent)
	})
}
