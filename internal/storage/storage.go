package storage

import (
	"context"
	"errors"
	"fmt"

	"flatgripe/backend/internal/config"
	"flatgripe/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the Entity Store. Lookups of absent ids return (nil, nil).
type Storage interface {
	// Transaction runs fn against a Storage bound to a single DB transaction.
	// Any error returned by fn rolls back every write made through tx.
	Transaction(ctx context.Context, fn func(tx Storage) error) error
	Ping(ctx context.Context) error

	GetOrCreateFlat(ctx context.Context, code, name string) (*models.Flat, bool, error)
	GetFlatByID(ctx context.Context, id uint) (*models.Flat, error)
	GetFlatByCode(ctx context.Context, code string) (*models.Flat, error)
	ListFlatIDs(ctx context.Context) ([]uint, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsersInFlat(ctx context.Context, flatID uint) ([]models.User, error)
	AddKarma(ctx context.Context, userID uint, delta int) error

	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	GetComplaintByID(ctx context.Context, id uint) (*models.Complaint, error)
	ListComplaintsInFlat(ctx context.Context, flatID uint) ([]models.Complaint, error)
	ListUnarchivedComplaints(ctx context.Context, flatID uint) ([]models.Complaint, error)
	UpdateComplaint(ctx context.Context, id uint, fields map[string]interface{}) error
	SetProblemOfWeek(ctx context.Context, flatID uint, complaintID *uint) error

	GetVote(ctx context.Context, userID, complaintID uint) (*models.Vote, error)
	CreateVote(ctx context.Context, vote *models.Vote) error
	UpdateVoteType(ctx context.Context, voteID uint, voteType models.VoteType) error
	DeleteVote(ctx context.Context, voteID uint) error
	CountVotes(ctx context.Context, complaintID uint) (upvotes int, downvotes int, err error)
}

// Service is the gorm-backed Storage. Redis is optional and only used for health checks here;
// distributed locking lives in RedisLocker.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

func (s *Service) Transaction(ctx context.Context, fn func(tx Storage) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis})
	})
}

// Ping перевіряє з'єднання з базою даних та Redis (якщо налаштовано)
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}
	return nil
}

// GetOrCreateFlat шукає квартиру за кодом або створює нову.
// Другий результат true, якщо квартиру було створено.
func (s *Service) GetOrCreateFlat(ctx context.Context, code, name string) (*models.Flat, bool, error) {
	var flat models.Flat
	result := s.DB.WithContext(ctx).
		Where(models.Flat{Code: code}).
		Attrs(models.Flat{Name: name}).
		FirstOrCreate(&flat)
	if result.Error != nil {
		return nil, false, fmt.Errorf("get or create flat %q: %w", code, result.Error)
	}
	return &flat, result.RowsAffected > 0, nil
}

// EnsureDefaultFlat створює стартову квартиру, якщо її ще немає.
func (s *Service) EnsureDefaultFlat(ctx context.Context) (*models.Flat, error) {
	flat, _, err := s.GetOrCreateFlat(ctx, config.DefaultFlatCode, config.DefaultFlatName)
	return flat, err
}

func (s *Service) GetFlatByID(ctx context.Context, id uint) (*models.Flat, error) {
	var flat models.Flat
	return first(s.DB.WithContext(ctx), &flat, "id = ?", id)
}

func (s *Service) GetFlatByCode(ctx context.Context, code string) (*models.Flat, error) {
	var flat models.Flat
	return first(s.DB.WithContext(ctx), &flat, "code = ?", code)
}

// ListFlatIDs повертає ID усіх квартир у порядку створення
func (s *Service) ListFlatIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.DB.WithContext(ctx).Model(&models.Flat{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list flat ids: %w", err)
	}
	return ids, nil
}

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user %q: %w", user.Username, err)
	}
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	return first(s.DB.WithContext(ctx), &user, "id = ?", id)
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	return first(s.DB.WithContext(ctx), &user, "username = ?", username)
}

// ListUsersInFlat повертає мешканців квартири, відсортованих за ID
func (s *Service) ListUsersInFlat(ctx context.Context, flatID uint) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Where("flat_id = ?", flatID).Order("id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users in flat %d: %w", flatID, err)
	}
	return users, nil
}

// AddKarma атомарно додає delta до карми користувача
func (s *Service) AddKarma(ctx context.Context, userID uint, delta int) error {
	result := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("karma", gorm.Expr("karma + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("add karma to user %d: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("add karma to user %d: %w", userID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Omit("Author").Create(complaint).Error; err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

func (s *Service) GetComplaintByID(ctx context.Context, id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	return first(s.DB.WithContext(ctx), &complaint, "id = ?", id)
}

// ListComplaintsInFlat повертає неархівовані скарги разом з автором, найновіші першими
func (s *Service) ListComplaintsInFlat(ctx context.Context, flatID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.WithContext(ctx).
		Preload("Author").
		Where("flat_id = ? AND is_archived = ?", flatID, false).
		Order("created_at desc").Order("id desc").
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("list complaints in flat %d: %w", flatID, err)
	}
	return complaints, nil
}

// ListUnarchivedComplaints повертає неархівовані скарги квартири без автора, у порядку ID
func (s *Service) ListUnarchivedComplaints(ctx context.Context, flatID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.WithContext(ctx).
		Where("flat_id = ? AND is_archived = ?", flatID, false).
		Order("id asc").
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("list unarchived complaints in flat %d: %w", flatID, err)
	}
	return complaints, nil
}

func (s *Service) UpdateComplaint(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := s.DB.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update complaint %d: %w", id, result.Error)
	}
	return nil
}

// SetProblemOfWeek знімає позначку з усіх скарг квартири і, якщо complaintID не nil,
// ставить її на одну скаргу
func (s *Service) SetProblemOfWeek(ctx context.Context, flatID uint, complaintID *uint) error {
	db := s.DB.WithContext(ctx)
	err := db.Model(&models.Complaint{}).
		Where("flat_id = ? AND is_problem_of_week = ?", flatID, true).
		Update("is_problem_of_week", false).Error
	if err != nil {
		return fmt.Errorf("clear problem of week in flat %d: %w", flatID, err)
	}
	if complaintID == nil {
		return nil
	}
	err = db.Model(&models.Complaint{}).
		Where("id = ? AND flat_id = ? AND is_archived = ?", *complaintID, flatID, false).
		Update("is_problem_of_week", true).Error
	if err != nil {
		return fmt.Errorf("set problem of week %d: %w", *complaintID, err)
	}
	return nil
}

func (s *Service) GetVote(ctx context.Context, userID, complaintID uint) (*models.Vote, error) {
	var vote models.Vote
	return first(s.DB.WithContext(ctx), &vote, "user_id = ? AND complaint_id = ?", userID, complaintID)
}

func (s *Service) CreateVote(ctx context.Context, vote *models.Vote) error {
	if err := s.DB.WithContext(ctx).Create(vote).Error; err != nil {
		return fmt.Errorf("create vote: %w", err)
	}
	return nil
}

func (s *Service) UpdateVoteType(ctx context.Context, voteID uint, voteType models.VoteType) error {
	err := s.DB.WithContext(ctx).Model(&models.Vote{}).Where("id = ?", voteID).Update("vote_type", voteType).Error
	if err != nil {
		return fmt.Errorf("update vote %d: %w", voteID, err)
	}
	return nil
}

func (s *Service) DeleteVote(ctx context.Context, voteID uint) error {
	if err := s.DB.WithContext(ctx).Delete(&models.Vote{}, voteID).Error; err != nil {
		return fmt.Errorf("delete vote %d: %w", voteID, err)
	}
	return nil
}

// CountVotes рахує голоси за скаргою з нуля, згрупувавши їх за типом
func (s *Service) CountVotes(ctx context.Context, complaintID uint) (int, int, error) {
	var rows []struct {
		VoteType models.VoteType
		Total    int
	}
	err := s.DB.WithContext(ctx).Model(&models.Vote{}).
		Select("vote_type, count(*) as total").
		Where("complaint_id = ?", complaintID).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, fmt.Errorf("count votes for complaint %d: %w", complaintID, err)
	}

	var upvotes, downvotes int
	for _, row := range rows {
		switch row.VoteType {
		case models.VoteUp:
			upvotes = row.Total
		case models.VoteDown:
			downvotes = row.Total
		}
	}
	return upvotes, downvotes, nil
}

// first loads one row; a missing row is reported as (nil, nil).
func first[T any](db *gorm.DB, dest *T, query string, args ...interface{}) (*T, error) {
	err := db.Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dest, nil
}
