package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"flatgripe/backend/internal/auth"
	"flatgripe/backend/internal/models"
	"flatgripe/backend/internal/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAuthService(m *MockStorage) *auth.Service {
	return auth.NewService(m, auth.NewTokenIssuer("test-secret", time.Hour), bcrypt.MinCost, zerolog.Nop())
}

func TestRegister_CreatesFlatAndUser(t *testing.T) {
	m := new(MockStorage)
	svc := newAuthService(m)
	ctx := context.Background()
	flat := &models.Flat{ID: 3, Code: "ABC123", Name: "Flat ABC123"}

	m.On("GetUserByUsername", ctx, "alice").Return(nil, nil).Once()
	m.On("Transaction", ctx).Return().Once()
	m.On("GetOrCreateFlat", ctx, "ABC123", "Flat ABC123").Return(flat, true, nil).Once()
	m.On("CreateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "alice" && u.FlatID != nil && *u.FlatID == 3
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 7
	}).Return(nil).Once()

	user, gotFlat, err := svc.Register(ctx, " alice ", "hunter22", "ABC123")

	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, flat, gotFlat)
	assert.Equal(t, 0, user.Karma)
	assert.NotEqual(t, "hunter22", user.PasswordHash, "password is stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))
	m.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		flatCode string
	}{
		{"short username", "al", "hunter22", "ABC123"},
		{"short password", "alice", "12345", "ABC123"},
		{"empty flat code", "alice", "hunter22", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockStorage)
			svc := newAuthService(m)

			_, _, err := svc.Register(context.Background(), tt.username, tt.password, tt.flatCode)

			assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput), "got %v", err)
			m.AssertNotCalled(t, "GetUserByUsername", mock.Anything, mock.Anything)
			m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("found before insert", func(t *testing.T) {
		m := new(MockStorage)
		svc := newAuthService(m)
		m.On("GetUserByUsername", ctx, "alice").Return(&models.User{ID: 1, Username: "alice"}, nil).Once()

		_, _, err := svc.Register(ctx, "alice", "hunter22", "ABC123")

		assert.True(t, utils.IsErrorCode(err, utils.ErrConflict))
		m.AssertNotCalled(t, "Transaction", mock.Anything)
	})

	t.Run("lost the insert race", func(t *testing.T) {
		m := new(MockStorage)
		svc := newAuthService(m)
		m.On("GetUserByUsername", ctx, "alice").Return(nil, nil).Once()
		m.On("Transaction", ctx).Return().Once()
		m.On("GetOrCreateFlat", ctx, "ABC123", "Flat ABC123").Return(&models.Flat{ID: 1, Code: "ABC123"}, false, nil).Once()
		m.On("CreateUser", ctx, mock.Anything).Return(fmt.Errorf("create user %q: %w", "alice", gorm.ErrDuplicatedKey)).Once()
		m.On("GetUserByUsername", ctx, "alice").Return(&models.User{ID: 2, Username: "alice"}, nil).Once()

		_, _, err := svc.Register(ctx, "alice", "hunter22", "ABC123")

		assert.True(t, utils.IsErrorCode(err, utils.ErrConflict))
		m.AssertExpectations(t)
	})
}

func TestRegister_RetriesWhenNewFlatIsCreatedConcurrently(t *testing.T) {
	m := new(MockStorage)
	svc := newAuthService(m)
	ctx := context.Background()
	flat := &models.Flat{ID: 5, Code: "NEW42", Name: "Flat NEW42"}

	m.On("GetUserByUsername", ctx, "carol").Return(nil, nil).Twice()
	m.On("Transaction", ctx).Return().Twice()
	m.On("GetOrCreateFlat", ctx, "NEW42", "Flat NEW42").
		Return(nil, false, fmt.Errorf("get or create flat %q: %w", "NEW42", gorm.ErrDuplicatedKey)).Once()
	m.On("GetOrCreateFlat", ctx, "NEW42", "Flat NEW42").Return(flat, false, nil).Once()
	m.On("CreateUser", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 11
	}).Return(nil).Once()

	user, gotFlat, err := svc.Register(ctx, "carol", "hunter22", "NEW42")

	require.NoError(t, err, "a free username is not reported as taken")
	assert.Equal(t, uint(11), user.ID)
	assert.Equal(t, flat.ID, gotFlat.ID)
	m.AssertExpectations(t)
}

func TestRegister_GivesUpAfterRepeatedFlatRaces(t *testing.T) {
	m := new(MockStorage)
	svc := newAuthService(m)
	ctx := context.Background()

	m.On("GetUserByUsername", ctx, "carol").Return(nil, nil)
	m.On("Transaction", ctx).Return()
	m.On("GetOrCreateFlat", ctx, "NEW42", "Flat NEW42").Return(nil, false, gorm.ErrDuplicatedKey)

	_, _, err := svc.Register(ctx, "carol", "hunter22", "NEW42")

	assert.True(t, utils.IsErrorCode(err, utils.ErrUnavailable), "got %v", err)
	m.AssertNumberOfCalls(t, "GetOrCreateFlat", 3)
	m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_StoreFailureIsDatabaseError(t *testing.T) {
	m := new(MockStorage)
	svc := newAuthService(m)
	ctx := context.Background()
	m.On("GetUserByUsername", ctx, "alice").Return(nil, errors.New("connection reset")).Once()

	_, _, err := svc.Register(ctx, "alice", "hunter22", "ABC123")

	assert.True(t, utils.IsErrorCode(err, utils.ErrDatabase))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	flatID := uint(4)
	alice := &models.User{ID: 9, Username: "alice", PasswordHash: string(hash), FlatID: &flatID}

	t.Run("valid credentials", func(t *testing.T) {
		m := new(MockStorage)
		svc := newAuthService(m)
		m.On("GetUserByUsername", ctx, "alice").Return(alice, nil).Once()
		m.On("GetFlatByID", ctx, flatID).Return(&models.Flat{ID: flatID, Code: "XYZ789"}, nil).Once()

		user, code, err := svc.Authenticate(ctx, "alice", "hunter22")

		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)
		assert.Equal(t, "XYZ789", code)
	})

	t.Run("wrong password", func(t *testing.T) {
		m := new(MockStorage)
		svc := newAuthService(m)
		m.On("GetUserByUsername", ctx, "alice").Return(alice, nil).Once()

		_, _, err := svc.Authenticate(ctx, "alice", "hunter23")

		assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))
		m.AssertNotCalled(t, "GetFlatByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		m := new(MockStorage)
		svc := newAuthService(m)
		m.On("GetUserByUsername", ctx, "bob").Return(nil, nil).Once()

		_, _, err := svc.Authenticate(ctx, "bob", "hunter22")

		assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))
	})
}
