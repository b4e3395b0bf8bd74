package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/repository/postgres"
	"github.com/mealtrack/meal-tracker/internal/service"
	"github.com/mealtrack/meal-tracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoodService(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	foods := service.NewFoodService(repos.Food)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	oats, err := foods.CreateFood(ctx, owner.ID, service.FoodInput{
		Name:      "  Oats ",
		Nutrients: domain.Nutrients{Calories: 389, Protein: 16.9},
	})
	require.NoError(t, err)
	assert.Equal(t, "Oats", oats.Name)

	t.Run("create validation", func(t *testing.T) {
		tests := []struct {
			name    string
			input   service.FoodInput
			wantErr error
		}{
			{"duplicate name", service.FoodInput{Name: "Oats"}, service.ErrFoodExists},
			{"blank name", service.FoodInput{Name: "  "}, domain.ErrValidation},
			{"negative nutrient", service.FoodInput{Name: "Odd", Nutrients: domain.Nutrients{Fats: -1}}, domain.ErrValidation},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := foods.CreateFood(ctx, owner.ID, tt.input)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})

	t.Run("update", func(t *testing.T) {
		updated, err := foods.UpdateFood(ctx, oats.ID, owner.ID, service.FoodInput{
			Name:      "Rolled oats",
			Nutrients: domain.Nutrients{Calories: 379},
		})
		require.NoError(t, err)
		assert.Equal(t, 379.0, updated.Calories)

		_, err = foods.UpdateFood(ctx, oats.ID, stranger.ID, service.FoodInput{Name: "Mine now"})
		assert.ErrorIs(t, err, service.ErrFoodNotFound)

		_, err = foods.UpdateFood(ctx, uuid.New(), owner.ID, service.FoodInput{Name: "Ghost"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete in use", func(t *testing.T) {
		used := testutil.NewFoodBuilder().ForUser(owner).Build(t, testDB.DB)
		testutil.NewMealBuilder().ForUser(owner).WithType(domain.MealTypeSnack).WithFood(used, 1).Build(t, testDB.DB)

		err := foods.DeleteFood(ctx, used.ID, owner.ID)
		assert.ErrorIs(t, err, service.ErrFoodInUse)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("delete", func(t *testing.T) {
		spare := testutil.NewFoodBuilder().ForUser(owner).Build(t, testDB.DB)

		assert.ErrorIs(t, foods.DeleteFood(ctx, spare.ID, stranger.ID), service.ErrFoodNotFound)
		require.NoError(t, foods.DeleteFood(ctx, spare.ID, owner.ID))
		assert.ErrorIs(t, foods.DeleteFood(ctx, spare.ID, owner.ID), service.ErrFoodNotFound)
	})

	t.Run("list", func(t *testing.T) {
		page, err := foods.ListFoods(ctx, owner.ID, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalItems)
		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, 1, page.TotalPages)
		assert.Equal(t, oats.ID, page.Items[0].ID)

		empty, err := foods.ListFoods(ctx, stranger.ID, 1, 10)
		require.NoError(t, err)
		assert.NotNil(t, empty.Items)
		assert.Empty(t, empty.Items)
	})
}
