// Package user implements registration, authentication and profile
// management over the trade store.
package user

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

const bcryptCost = 10

type Store interface {
	CreateUser(user *model.User) error
	GetUser(id model.UserID) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	UpdateUserProfile(id model.UserID, name *string, email *string) error
	UpdateUserPassword(id model.UserID, hashed string) error
	ListTransactionsByUser(userID model.UserID) ([]model.Transaction, error)
	ListRatingsByTarget(targetID model.UserID) ([]model.Rating, error)
}

type service struct {
	store Store
}

func New(store Store) *service {
	return &service{store}
}

func (s *service) Register(params *model.CreateUserParams) (*model.User, error) {
	if err := validateCreateParams(params); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByUsername(params.Username); err == nil {
		return nil, model.ErrorDuplicateUsername
	} else if !errors.Is(err, model.ErrorUserNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}

	if _, err := s.store.GetUserByEmail(params.Email); err == nil {
		return nil, model.ErrorDuplicateEmail
	} else if !errors.Is(err, model.ErrorUserNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		ID:        model.UserID(model.CreateID()),
		CreatedAt: time.Now().UTC(),
		Username:  params.Username,
		Name:      params.Name,
		Email:     params.Email,
		Age:       params.Age,
		Password:  string(passwordBytes),
		Balance:   0,
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Authenticate accepts either a username or an email address.
func (s *service) Authenticate(usernameOrEmail, password string) (*model.User, error) {
	user, err := s.store.GetUserByUsername(usernameOrEmail)
	if errors.Is(err, model.ErrorUserNotFound) {
		user, err = s.store.GetUserByEmail(usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) {
			return nil, model.ErrorInvalidUsernameOrPassword
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, model.ErrorInvalidUsernameOrPassword
	}

	return user, nil
}

func (s *service) Fetch(id model.UserID) (*model.User, error) {
	return s.store.GetUser(id)
}

func (s *service) UpdateProfile(id model.UserID, params *model.UpdateUserParams) (*model.User, error) {
	if params.Name == nil && params.Email == nil {
		return nil, model.Invalid("profile", "no valid fields to update")
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, model.Invalid("name", "name must not be empty")
	}
	if params.Email != nil && !strings.Contains(*params.Email, "@") {
		return nil, model.Invalid("email", "invalid email address")
	}

	if params.Email != nil {
		if existing, err := s.store.GetUserByEmail(*params.Email); err == nil && existing.ID != id {
			return nil, model.ErrorDuplicateEmail
		} else if err != nil && !errors.Is(err, model.ErrorUserNotFound) {
			return nil, fmt.Errorf("checking email: %w", err)
		}
	}

	if err := s.store.UpdateUserProfile(id, params.Name, params.Email); err != nil {
		return nil, err
	}
	return s.store.GetUser(id)
}

func (s *service) ChangePassword(id model.UserID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return model.Invalid("password", "password must be at least 8 characters")
	}

	user, err := s.store.GetUser(id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return model.ErrorInvalidUsernameOrPassword
	}

	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.store.UpdateUserPassword(id, string(passwordBytes))
}

// Stats aggregates the user's trade counts and received ratings. With no
// transactions at all the kind split reads 50/50.
func (s *service) Stats(id model.UserID) (*model.UserStats, error) {
	if _, err := s.store.GetUser(id); err != nil {
		return nil, err
	}

	trades, err := s.store.ListTransactionsByUser(id)
	if err != nil {
		return nil, err
	}

	stats := &model.UserStats{TotalTransactions: len(trades)}
	buySell := 0
	boosting := 0
	for _, trade := range trades {
		switch trade.Status {
		case model.StatusCompleted:
			stats.CompletedTransactions++
		case model.StatusProcessing:
			stats.PendingTransactions++
		}
		switch trade.Kind {
		case model.KindBuySell:
			buySell++
		case model.KindBoosting:
			boosting++
		}
	}

	if total := buySell + boosting; total > 0 {
		stats.BuySellPercent = int(math.Round(float64(buySell) / float64(total) * 100))
		stats.BoostingPercent = int(math.Round(float64(boosting) / float64(total) * 100))
	} else {
		stats.BuySellPercent = 50
		stats.BoostingPercent = 50
	}

	ratings, err := s.store.ListRatingsByTarget(id)
	if err != nil {
		return nil, err
	}
	stats.RatingCount = len(ratings)
	if len(ratings) > 0 {
		sum := 0
		for _, rating := range ratings {
			sum += rating.Score
		}
		average := float64(sum) / float64(len(ratings))
		stats.RatingAverage = math.Round(average*10) / 10
	}

	return stats, nil
}

func validateCreateParams(params *model.CreateUserParams) error {
	if strings.TrimSpace(params.Username) == "" {
		return model.Invalid("username", "username is required")
	}
	if strings.TrimSpace(params.Name) == "" {
		return model.Invalid("name", "name is required")
	}
	if !strings.Contains(params.Email, "@") {
		return model.Invalid("email", "invalid email address")
	}
	if params.Age < 10 {
		return model.Invalid("age", "you must be at least 10 years old")
	}
	if len(params.Password) < 8 {
		return model.Invalid("password", "password must be at least 8 characters")
	}
	return nil
}
