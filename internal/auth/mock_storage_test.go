package auth_test

import (
	"context"

	"flatgripe/backend/internal/models"
	"flatgripe/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

// Transaction runs fn against the mock itself so expectations cover both sides.
func (m *MockStorage) Transaction(ctx context.Context, fn func(tx storage.Storage) error) error {
	m.Called(ctx)
	return fn(m)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) GetOrCreateFlat(ctx context.Context, code, name string) (*models.Flat, bool, error) {
	args := m.Called(ctx, code, name)
	flat, _ := args.Get(0).(*models.Flat)
	return flat, args.Bool(1), args.Error(2)
}

func (m *MockStorage) GetFlatByID(ctx context.Context, id uint) (*models.Flat, error) {
	args := m.Called(ctx, id)
	flat, _ := args.Get(0).(*models.Flat)
	return flat, args.Error(1)
}

func (m *MockStorage) GetFlatByCode(ctx context.Context, code string) (*models.Flat, error) {
	args := m.Called(ctx, code)
	flat, _ := args.Get(0).(*models.Flat)
	return flat, args.Error(1)
}

func (m *MockStorage) ListFlatIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockStorage) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStorage) ListUsersInFlat(ctx context.Context, flatID uint) ([]models.User, error) {
	args := m.Called(ctx, flatID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) AddKarma(ctx context.Context, userID uint, delta int) error {
	args := m.Called(ctx, userID, delta)
	return args.Error(0)
}

func (m *MockStorage) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(ctx context.Context, id uint) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	complaint, _ := args.Get(0).(*models.Complaint)
	return complaint, args.Error(1)
}

func (m *MockStorage) ListComplaintsInFlat(ctx context.Context, flatID uint) ([]models.Complaint, error) {
	args := m.Called(ctx, flatID)
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) ListUnarchivedComplaints(ctx context.Context, flatID uint) ([]models.Complaint, error) {
	args := m.Called(ctx, flatID)
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) UpdateComplaint(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockStorage) SetProblemOfWeek(ctx context.Context, flatID uint, complaintID *uint) error {
	args := m.Called(ctx, flatID, complaintID)
	return args.Error(0)
}

func (m *MockStorage) GetVote(ctx context.Context, userID, complaintID uint) (*models.Vote, error) {
	args := m.Called(ctx, userID, complaintID)
	vote, _ := args.Get(0).(*models.Vote)
	return vote, args.Error(1)
}

func (m *MockStorage) CreateVote(ctx context.Context, vote *models.Vote) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *MockStorage) UpdateVoteType(ctx context.Context, voteID uint, voteType models.VoteType) error {
	args := m.Called(ctx, voteID, voteType)
	return args.Error(0)
}

func (m *MockStorage) DeleteVote(ctx context.Context, voteID uint) error {
	args := m.Called(ctx, voteID)
	return args.Error(0)
}

func (m *MockStorage) CountVotes(ctx context.Context, complaintID uint) (int, int, error) {
	args := m.Called(ctx, complaintID)
	return args.Int(0), args.Int(1), args.Error(2)
}
