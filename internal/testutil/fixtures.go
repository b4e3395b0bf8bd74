package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	password string
	name     *string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password: "testpassword123",
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithName sets the profile name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = &name
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		PasswordHash: string(hashedPassword),
		Name:         b.name,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// BuildAndAuthenticate registers the user via the API and returns the user
// and session token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": b.username,
		"password": b.password,
	})

	resp, err := http.Post(ts.APIURL("/users/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return &authResp.User, authResp.Token
}

// FoodBuilder creates test foods
type FoodBuilder struct {
	owner     *domain.User
	name      string
	nutrients domain.Nutrients
}

// NewFoodBuilder creates a new FoodBuilder with default values
func NewFoodBuilder() *FoodBuilder {
	return &FoodBuilder{
		name: fmt.Sprintf("food_%s", uuid.New().String()[:8]),
		nutrients: domain.Nutrients{
			Calories:      100,
			Protein:       10,
			Carbohydrates: 20,
			Fats:          5,
			Vitamins:      1,
			Minerals:      2,
		},
	}
}

// ForUser sets the owner
func (b *FoodBuilder) ForUser(user *domain.User) *FoodBuilder {
	b.owner = user
	return b
}

// WithName sets the food name
func (b *FoodBuilder) WithName(name string) *FoodBuilder {
	b.name = name
	return b
}

// WithNutrients sets the per-serving nutrient profile
func (b *FoodBuilder) WithNutrients(n domain.Nutrients) *FoodBuilder {
	b.nutrients = n
	return b
}

// Build creates the food in the database, creating an owner when none was set
func (b *FoodBuilder) Build(t *testing.T, db *gorm.DB) *domain.Food {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	food := &domain.Food{
		ID:        uuid.New(),
		UserID:    b.owner.ID,
		Name:      b.name,
		Nutrients: b.nutrients,
	}

	if err := db.Create(food).Error; err != nil {
		t.Fatalf("failed to create food: %v", err)
	}

	return food
}

// MealBuilder inserts meals directly, bypassing aggregation. Totals are
// computed from the attached foods the same way the meal service does.
type MealBuilder struct {
	owner    *domain.User
	name     string
	mealType domain.MealType
	date     time.Time
	foods    []*domain.Food
	qty      []float64
}

// NewMealBuilder creates a new MealBuilder with default values
func NewMealBuilder() *MealBuilder {
	return &MealBuilder{
		name:     "Test meal",
		mealType: domain.MealTypeLunch,
		date:     time.Now().UTC(),
	}
}

// ForUser sets the owner
func (b *MealBuilder) ForUser(user *domain.User) *MealBuilder {
	b.owner = user
	return b
}

// WithType sets the meal type
func (b *MealBuilder) WithType(mealType domain.MealType) *MealBuilder {
	b.mealType = mealType
	return b
}

// OnDate sets the meal day
func (b *MealBuilder) OnDate(date time.Time) *MealBuilder {
	b.date = date
	return b
}

// WithFood attaches a food with a quantity
func (b *MealBuilder) WithFood(food *domain.Food, quantity float64) *MealBuilder {
	b.foods = append(b.foods, food)
	b.qty = append(b.qty, quantity)
	return b
}

// Build creates the meal and its food links in the database
func (b *MealBuilder) Build(t *testing.T, db *gorm.DB) *domain.Meal {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	meal := &domain.Meal{
		ID:       uuid.New(),
		UserID:   b.owner.ID,
		Name:     b.name,
		MealType: b.mealType,
		Date:     domain.DateOnly(b.date),
	}
	for i, food := range b.foods {
		meal.Totals = meal.Totals.Add(food.Nutrients, b.qty[i])
	}

	if err := db.Omit(clause.Associations).Create(meal).Error; err != nil {
		t.Fatalf("failed to create meal: %v", err)
	}

	for i, food := range b.foods {
		link := &domain.MealFood{MealID: meal.ID, FoodID: food.ID, Quantity: b.qty[i]}
		if err := db.Omit(clause.Associations).Create(link).Error; err != nil {
			t.Fatalf("failed to create meal food: %v", err)
		}
	}

	return meal
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends an authenticated request and returns the response. The body is
// closed at test cleanup.
func Do(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateAuthenticatedRequest(t, method, url, body, token))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
