package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/testutil"
	"github.com/mealtrack/meal-tracker/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mealBody struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name"`
	MealType domain.MealType  `json:"meal_type"`
	Totals   domain.Nutrients `json:"totals"`
	Foods    []struct {
		FoodID   uuid.UUID `json:"food_id"`
		Quantity float64   `json:"quantity"`
	} `json:"foods"`
}

type pageBody struct {
	Items       []mealBody `json:"items"`
	TotalItems  int64      `json:"total_items"`
	TotalPages  int        `json:"total_pages"`
	CurrentPage int        `json:"current_page"`
}

func TestMealHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	oats := testutil.NewFoodBuilder().ForUser(user).WithName("Oats").Build(t, ts.DB.DB)

	breakfast := func(date string) map[string]interface{} {
		return map[string]interface{}{
			"name":      "Porridge",
			"meal_type": "breakfast",
			"date":      date,
			"foods":     []map[string]interface{}{{"id": oats.ID, "quantity": 1.5}},
		}
	}

	tests := []struct {
		name           string
		body           map[string]interface{}
		token          string
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "created",
			body:           breakfast("2024-07-01"),
			token:          token,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "second breakfast on the same day",
			body:           breakfast("2024-07-01"),
			token:          token,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "a meal of type breakfast already exists",
		},
		{
			name:           "food of another user",
			body:           breakfast("2024-07-02"),
			token:          otherToken,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "do not belong",
		},
		{
			name: "unknown meal type",
			body: map[string]interface{}{
				"name": "Brunch", "meal_type": "brunch", "date": "2024-07-02",
				"foods": []map[string]interface{}{{"id": oats.ID, "quantity": 1}},
			},
			token:          token,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid meal type",
		},
		{
			name:           "unauthenticated",
			body:           breakfast("2024-07-03"),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Do(t, http.MethodPost, ts.APIURL("/meals"), tt.body, tt.token)

			if tt.expectedMsg != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedMsg)
				return
			}
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var meal mealBody
				testutil.AssertJSONResponse(t, resp, &meal)
				assert.Equal(t, domain.MealTypeBreakfast, meal.MealType)
				require.Len(t, meal.Foods, 1)
				testutil.AssertNutrients(t, domain.Nutrients{
					Calories: 150, Protein: 15, Carbohydrates: 30, Fats: 7.5, Vitamins: 1.5, Minerals: 3,
				}, meal.Totals)
			}
		})
	}
}

func TestMealHandler_Lifecycle(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	rice := testutil.NewFoodBuilder().ForUser(user).WithName("Rice").Build(t, ts.DB.DB)
	beans := testutil.NewFoodBuilder().ForUser(user).WithName("Beans").
		WithNutrients(domain.Nutrients{Calories: 50, Protein: 8}).Build(t, ts.DB.DB)
	lunch := testutil.NewMealBuilder().ForUser(user).WithType(domain.MealTypeLunch).
		OnDate(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)).
		WithFood(rice, 1).Build(t, ts.DB.DB)
	mealURL := ts.APIURL(fmt.Sprintf("/meals/%s", lunch.ID))

	t.Run("get", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodGet, mealURL, nil, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var meal mealBody
		testutil.AssertJSONResponse(t, resp, &meal)
		assert.Equal(t, lunch.ID, meal.ID)

		var raw map[string]interface{}
		testutil.AssertJSONResponse(t, testutil.Do(t, http.MethodGet, mealURL, nil, token), &raw)
		for _, key := range []string{"user_id", "meal_type", "created_at", "updated_at"} {
			assert.Contains(t, raw, key)
		}
		assert.NotContains(t, raw, "mealType")
		foods, ok := raw["foods"].([]interface{})
		require.True(t, ok)
		require.Len(t, foods, 1)
		assert.Contains(t, foods[0], "food_id")
		assert.Contains(t, foods[0], "serving_size")

		testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, mealURL, nil, otherToken), http.StatusNotFound)
		testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, ts.APIURL("/meals/not-a-uuid"), nil, token), http.StatusBadRequest)
	})

	t.Run("replace foods", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPut, mealURL+"/foods", map[string]interface{}{
			"foods": []map[string]interface{}{
				{"id": rice.ID, "quantity": 2},
				{"id": beans.ID, "quantity": 1},
			},
		}, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var meal mealBody
		testutil.AssertJSONResponse(t, resp, &meal)
		assert.Len(t, meal.Foods, 2)
		assert.InDelta(t, 250.0, meal.Totals.Calories, 1e-6)
		assert.InDelta(t, 28.0, meal.Totals.Protein, 1e-6)
	})

	t.Run("update info", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPut, mealURL+"/info", map[string]interface{}{
			"name": "Late lunch", "meal_type": "dinner", "date": "2024-07-01",
		}, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var meal mealBody
		testutil.AssertJSONResponse(t, resp, &meal)
		assert.Equal(t, "Late lunch", meal.Name)
		assert.Equal(t, domain.MealTypeDinner, meal.MealType)
	})

	t.Run("list", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodGet, ts.APIURL("/meals?from=2024-07-01&to=2024-07-31&meal_type=dinner"), nil, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var page pageBody
		testutil.AssertJSONResponse(t, resp, &page)
		assert.Equal(t, int64(1), page.TotalItems)
		require.Len(t, page.Items, 1)
		assert.Equal(t, lunch.ID, page.Items[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, mealURL, nil, otherToken), http.StatusNotFound)
		testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, mealURL, nil, token), http.StatusNoContent)
		testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, mealURL, nil, token), http.StatusNotFound)
	})
}

func TestMealHandler_Events(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	stranger, strangerToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	eggs := testutil.NewFoodBuilder().ForUser(user).WithName("Eggs").Build(t, ts.DB.DB)

	owner := testutil.NewWSClient(t, ts.WebSocketURL(token))
	other := testutil.NewWSClient(t, ts.WebSocketURL(strangerToken))
	require.Eventually(t, func() bool {
		return ts.Hub.ConnectionCount(user.ID) == 1 && ts.Hub.ConnectionCount(stranger.ID) == 1
	}, 2*time.Second, 20*time.Millisecond)
	owner.Ping(time.Second)

	resp := testutil.Do(t, http.MethodPost, ts.APIURL("/meals"), map[string]interface{}{
		"name": "Omelette", "meal_type": "snack", "date": "2024-07-01",
		"foods": []map[string]interface{}{{"id": eggs.ID, "quantity": 2}},
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created mealBody
	testutil.AssertJSONResponse(t, resp, &created)

	var payload mealBody
	owner.ExpectPayload(websocket.MessageTypeMealCreated, 2*time.Second, &payload)
	assert.Equal(t, created.ID, payload.ID)
	other.ExpectNoMessage(200 * time.Millisecond)

	resp = testutil.Do(t, http.MethodDelete, ts.APIURL(fmt.Sprintf("/meals/%s", created.ID)), nil, token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var deleted struct {
		ID uuid.UUID `json:"id"`
	}
	owner.ExpectPayload(websocket.MessageTypeMealDeleted, 2*time.Second, &deleted)
	assert.Equal(t, created.ID, deleted.ID)
}

func TestWebSocket_RequiresToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.Do(t, http.MethodGet, ts.APIURL("/ws"), nil, "")
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Token required")

	resp = testutil.Do(t, http.MethodGet, ts.APIURL("/ws?token=garbage"), nil, "")
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
}
