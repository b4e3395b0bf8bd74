package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/repository/postgres"
	"github.com/mealtrack/meal-tracker/internal/service"
	"github.com/mealtrack/meal-tracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestUserService_UpdateProfile(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	users := service.NewUserService(repos.User)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.ProfileInput
		wantErr bool
	}{
		{"full profile", service.ProfileInput{
			Name: ptr("Sam Doe"), Phone: ptr("+1 (555) 123-4567"), Age: ptr(34), Weight: ptr(72.5), Height: ptr(180.0),
		}, false},
		{"name too short", service.ProfileInput{Name: ptr("S")}, true},
		{"name too long", service.ProfileInput{Name: ptr(strings.Repeat("a", 101))}, true},
		{"phone letters", service.ProfileInput{Phone: ptr("call me maybe")}, true},
		{"age out of range", service.ProfileInput{Age: ptr(121)}, true},
		{"weight out of range", service.ProfileInput{Weight: ptr(9.9)}, true},
		{"height out of range", service.ProfileInput{Height: ptr(301.0)}, true},
		{"partial update", service.ProfileInput{Age: ptr(35)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.UpdateProfile(ctx, user.ID, tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}

	stored, err := users.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Name)
	assert.Equal(t, "Sam Doe", *stored.Name)
	require.NotNil(t, stored.Age)
	assert.Equal(t, 35, *stored.Age)

	_, err = users.UpdateProfile(ctx, uuid.New(), service.ProfileInput{Age: ptr(20)})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
