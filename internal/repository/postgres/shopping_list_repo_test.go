package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/repository/postgres"
	"github.com/mealtrack/meal-tracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewShoppingListRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	milk := testutil.NewFoodBuilder().ForUser(owner).WithName("Milk").Build(t, testDB.DB)
	eggs := testutil.NewFoodBuilder().ForUser(owner).WithName("Eggs").Build(t, testDB.DB)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateMany(ctx, []*domain.ShoppingListItem{
		{UserID: owner.ID, FoodID: milk.ID, Quantity: 1, Date: day.Add(9 * time.Hour)},
		{UserID: owner.ID, FoodID: eggs.ID, Quantity: 12, Date: day.AddDate(0, 0, 1)},
		{UserID: owner.ID, FoodID: milk.ID, Quantity: 2, Date: day.AddDate(0, 0, 3)},
	}))

	t.Run("exists on day ignores time of day", func(t *testing.T) {
		exists, err := repo.ExistsOnDay(ctx, owner.ID, milk.ID, day.Add(23*time.Hour))
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsOnDay(ctx, owner.ID, milk.ID, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("date range is inclusive and preloads food", func(t *testing.T) {
		items, total, err := repo.ListByDateRange(ctx, owner.ID, day, day.AddDate(0, 0, 1), 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 2)
		require.NotNil(t, items[0].Food)
		assert.Equal(t, "Milk", items[0].Food.Name)
		assert.Equal(t, "Eggs", items[1].Food.Name)
	})

	t.Run("list by user orders by date", func(t *testing.T) {
		items, total, err := repo.ListByUser(ctx, owner.ID, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 3)
		assert.Equal(t, 12.0, items[1].Quantity)
	})

	t.Run("update and delete", func(t *testing.T) {
		items, _, err := repo.ListByUser(ctx, owner.ID, 1, 0)
		require.NoError(t, err)
		item := items[0]

		item.IsBought = true
		require.NoError(t, repo.Update(ctx, item))

		got, err := repo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, got.IsBought)

		require.NoError(t, repo.Delete(ctx, item.ID))
		_, err = repo.GetByID(ctx, item.ID)
		assert.Error(t, err)
	})
}
