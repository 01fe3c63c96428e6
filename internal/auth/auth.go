// Package auth registers flatmates into flats and checks their credentials.
package auth

import (
	"context"
	"errors"
	"strings"

	"flatgripe/backend/internal/config"
	"flatgripe/backend/internal/models"
	"flatgripe/backend/internal/storage"
	"flatgripe/backend/internal/utils"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// maxRegisterAttempts bounds retries when two registrations create the same flat at once.
const maxRegisterAttempts = 3

type Service struct {
	Storage storage.Storage
	Tokens  *TokenIssuer
	Log     zerolog.Logger
	Cost    int
}

func NewService(s storage.Storage, tokens *TokenIssuer, cost int, log zerolog.Logger) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		Storage: s,
		Tokens:  tokens,
		Log:     log.With().Str("component", "auth").Logger(),
		Cost:    cost,
	}
}

// Register creates a user in the flat with flatCode, creating the flat on first use.
func (s *Service) Register(ctx context.Context, username, password, flatCode string) (*models.User, *models.Flat, error) {
	username = strings.TrimSpace(username)
	flatCode = strings.TrimSpace(flatCode)

	if len(username) < config.MinUsernameLength {
		return nil, nil, utils.NewValidationError("username must be at least 3 characters")
	}
	if len(password) < config.MinPasswordLength {
		return nil, nil, utils.NewValidationError("password must be at least 6 characters")
	}
	if flatCode == "" {
		return nil, nil, utils.NewValidationError("flat code is required")
	}

	existing, err := s.Storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, utils.NewDatabaseError("register", err)
	}
	if existing != nil {
		return nil, nil, utils.NewConflictError("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, nil, utils.NewValidationError("password is too long")
		}
		return nil, nil, utils.NewAppError(utils.ErrDatabase, "hash password", err)
	}

	for attempt := 1; ; attempt++ {
		user, flat, err := s.createInFlat(ctx, username, string(hash), flatCode)
		if err == nil {
			s.Log.Info().Uint("user_id", user.ID).Uint("flat_id", flat.ID).Msg("user registered")
			return user, flat, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, utils.NewDatabaseError("register", err)
		}

		// the unique violation is either the username or a flat created concurrently with the same code
		taken, lookupErr := s.Storage.GetUserByUsername(ctx, username)
		if lookupErr != nil {
			return nil, nil, utils.NewDatabaseError("register", lookupErr)
		}
		if taken != nil {
			return nil, nil, utils.NewConflictError("username already taken")
		}
		if attempt == maxRegisterAttempts {
			return nil, nil, utils.NewAppError(utils.ErrUnavailable, "flat is busy, try again", err)
		}
		s.Log.Debug().Str("flat_code", flatCode).Int("attempt", attempt).Msg("flat creation raced, retrying")
	}
}

// createInFlat gets or creates the flat and inserts the user in one transaction.
func (s *Service) createInFlat(ctx context.Context, username, hash, flatCode string) (*models.User, *models.Flat, error) {
	var (
		user *models.User
		flat *models.Flat
	)
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		f, created, err := tx.GetOrCreateFlat(ctx, flatCode, "Flat "+flatCode)
		if err != nil {
			return err
		}
		flat = f
		if created {
			s.Log.Info().Uint("flat_id", flat.ID).Str("code", flat.Code).Msg("flat created")
		}
		user = &models.User{Username: username, PasswordHash: hash, FlatID: &flat.ID}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, nil, err
	}
	return user, flat, nil
}

// Authenticate returns the user and its flat code when the credentials match.
// Unknown usernames and wrong passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.Storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", utils.NewDatabaseError("authenticate", err)
	}
	if user == nil {
		return nil, "", utils.NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.Log.Debug().Uint("user_id", user.ID).Msg("password mismatch")
		return nil, "", utils.NewUnauthorizedError("invalid credentials")
	}

	flatCode := ""
	if user.FlatID != nil {
		flat, err := s.Storage.GetFlatByID(ctx, *user.FlatID)
		if err != nil {
			return nil, "", utils.NewDatabaseError("authenticate", err)
		}
		if flat != nil {
			flatCode = flat.Code
		}
	}
	return user, flatCode, nil
}
