package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = fmt.Errorf("%w: user not found", domain.ErrNotFound)

	phonePattern = regexp.MustCompile(`^[+]?[\d\s()-]{10,15}$`)
)

// ProfileInput carries optional profile attributes. Nil fields are left
// untouched.
type ProfileInput struct {
	Name   *string  `json:"name"`
	Phone  *string  `json:"phone"`
	Age    *int     `json:"age"`
	Weight *float64 `json:"weight"`
	Height *float64 `json:"height"`
}

func (p ProfileInput) validate() error {
	if p.Name != nil {
		if n := utf8.RuneCountInString(*p.Name); n < 2 || n > 100 {
			return fmt.Errorf("%w: name must be between 2 and 100 characters", domain.ErrValidation)
		}
	}
	if p.Phone != nil && !phonePattern.MatchString(*p.Phone) {
		return fmt.Errorf("%w: invalid phone number format", domain.ErrValidation)
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 120) {
		return fmt.Errorf("%w: age must be between 0 and 120", domain.ErrValidation)
	}
	if p.Weight != nil && (*p.Weight < 10 || *p.Weight > 500) {
		return fmt.Errorf("%w: weight must be between 10 and 500", domain.ErrValidation)
	}
	if p.Height != nil && (*p.Height < 50 || *p.Height > 300) {
		return fmt.Errorf("%w: height must be between 50 and 300", domain.ErrValidation)
	}
	return nil
}

func (p ProfileInput) apply(user *domain.User) {
	if p.Name != nil {
		user.Name = p.Name
	}
	if p.Phone != nil {
		user.Phone = p.Phone
	}
	if p.Age != nil {
		user.Age = p.Age
	}
	if p.Weight != nil {
		user.Weight = p.Weight
	}
	if p.Height != nil {
		user.Height = p.Height
	}
}

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	input.apply(user)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
