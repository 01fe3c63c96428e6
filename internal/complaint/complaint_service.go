// Package complaint provides the complaint lifecycle of a flat: filing, voting,
// punishments, the problem of the week, archival of stale complaints and the
// karma credited for resolving them.
package complaint

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"flatgripe/backend/internal/analysis"
	"flatgripe/backend/internal/config"
	"flatgripe/backend/internal/models"
	"flatgripe/backend/internal/storage"
	"flatgripe/backend/internal/utils"

	"github.com/rs/zerolog"
)

// Service handles the business logic for complaints.
// Every mutation of a flat runs under that flat's lock and inside one transaction.
type Service struct {
	Storage storage.Storage
	Locker  storage.FlatLocker
	Log     zerolog.Logger

	// Now and Intn are replaceable for tests.
	Now  func() time.Time
	Intn func(n int) int
}

// NewService creates a new complaint service.
func NewService(s storage.Storage, locker storage.FlatLocker, log zerolog.Logger) *Service {
	return &Service{
		Storage: s,
		Locker:  locker,
		Log:     log.With().Str("component", "complaint").Logger(),
		Now:     time.Now,
		Intn:    rand.Intn,
	}
}

// NewComplaint is the input of FileComplaint.
type NewComplaint struct {
	Title       string
	Description string
	Type        models.ComplaintType
	Severity    models.Severity
	UserID      uint
	FlatID      uint
}

func (in NewComplaint) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return utils.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return utils.NewValidationError("description is required")
	}
	if !in.Type.Valid() {
		return utils.NewValidationError("invalid complaint type: " + string(in.Type))
	}
	if !in.Severity.Valid() {
		return utils.NewValidationError("invalid severity: " + string(in.Severity))
	}
	return nil
}

// FileComplaint creates an unresolved complaint with no votes.
func (s *Service) FileComplaint(ctx context.Context, in NewComplaint) (*models.Complaint, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.member(ctx, in.UserID, in.FlatID); err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		Severity:    in.Severity,
		UserID:      in.UserID,
		FlatID:      in.FlatID,
		CreatedAt:   s.Now(),
	}

	err := s.withFlat(ctx, in.FlatID, func(tx storage.Storage) error {
		return tx.CreateComplaint(ctx, complaint)
	})
	if err != nil {
		return nil, wrapStoreError("file complaint", err)
	}

	s.Log.Info().Uint("complaint_id", complaint.ID).Uint("flat_id", complaint.FlatID).
		Str("type", string(complaint.Type)).Msg("complaint filed")
	return complaint, nil
}

// ListComplaints returns the flat's unarchived complaints, newest first, with authors.
func (s *Service) ListComplaints(ctx context.Context, flatID uint) ([]models.Complaint, error) {
	complaints, err := s.Storage.ListComplaintsInFlat(ctx, flatID)
	if err != nil {
		return nil, wrapStoreError("list complaints", err)
	}
	return complaints, nil
}

// CastVote records, switches or retracts userID's vote on a complaint, recounts
// the tallies, applies the punishment rule and refreshes the flat's problem of the week.
func (s *Service) CastVote(ctx context.Context, complaintID, userID uint, voteType models.VoteType) (*models.Complaint, error) {
	if !voteType.Valid() {
		return nil, utils.NewValidationError("invalid vote type: " + string(voteType))
	}
	complaint, err := s.Storage.GetComplaintByID(ctx, complaintID)
	if err != nil {
		return nil, wrapStoreError("cast vote", err)
	}
	if complaint == nil {
		return nil, utils.NewValidationError("complaint does not exist")
	}
	if _, err := s.member(ctx, userID, complaint.FlatID); err != nil {
		return nil, err
	}

	var updated *models.Complaint
	err = s.withFlat(ctx, complaint.FlatID, func(tx storage.Storage) error {
		if err := applyVote(ctx, tx, complaintID, userID, voteType); err != nil {
			return err
		}
		if err := s.recount(ctx, tx, complaintID); err != nil {
			return err
		}
		if err := s.refreshProblemOfWeek(ctx, tx, complaint.FlatID); err != nil {
			return err
		}
		reloaded, err := tx.GetComplaintByID(ctx, complaintID)
		updated = reloaded
		return err
	})
	if err != nil {
		return nil, wrapStoreError("cast vote", err)
	}
	return updated, nil
}

// applyVote creates the vote, deletes it when repeated, or switches its type.
func applyVote(ctx context.Context, tx storage.Storage, complaintID, userID uint, voteType models.VoteType) error {
	existing, err := tx.GetVote(ctx, userID, complaintID)
	if err != nil {
		return err
	}
	switch {
	case existing == nil:
		return tx.CreateVote(ctx, &models.Vote{UserID: userID, ComplaintID: complaintID, VoteType: voteType})
	case existing.VoteType == voteType:
		return tx.DeleteVote(ctx, existing.ID)
	default:
		return tx.UpdateVoteType(ctx, existing.ID, voteType)
	}
}

// recount recomputes both tallies from the vote set and fires the punishment trigger.
func (s *Service) recount(ctx context.Context, tx storage.Storage, complaintID uint) error {
	upvotes, downvotes, err := tx.CountVotes(ctx, complaintID)
	if err != nil {
		return err
	}
	current, err := tx.GetComplaintByID(ctx, complaintID)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"upvotes":   upvotes,
		"downvotes": downvotes,
	}
	if analysis.ShouldPunish(upvotes, current.Punishment) {
		punishment := analysis.PickPunishment(s.Intn)
		fields["punishment"] = punishment
		s.Log.Info().Uint("complaint_id", complaintID).Int("upvotes", upvotes).
			Str("punishment", punishment).Msg("punishment assigned")
	}
	return tx.UpdateComplaint(ctx, complaintID, fields)
}

// refreshProblemOfWeek re-marks the flat's most upvoted unarchived complaint.
func (s *Service) refreshProblemOfWeek(ctx context.Context, tx storage.Storage, flatID uint) error {
	complaints, err := tx.ListUnarchivedComplaints(ctx, flatID)
	if err != nil {
		return err
	}
	var previous *uint
	for i := range complaints {
		if complaints[i].IsProblemOfWeek {
			previous = &complaints[i].ID
			break
		}
	}
	top := analysis.SelectProblemOfWeek(complaints)
	if err := tx.SetProblemOfWeek(ctx, flatID, top); err != nil {
		return err
	}
	if !sameID(previous, top) {
		event := s.Log.Info().Uint("flat_id", flatID)
		if top != nil {
			event = event.Uint("complaint_id", *top)
		}
		event.Msg("problem of the week changed")
	}
	return nil
}

// Resolve marks the complaint resolved and credits the resolver.
// Resolving an already resolved complaint changes nothing and credits no karma.
func (s *Service) Resolve(ctx context.Context, complaintID, userID uint) (*models.Complaint, error) {
	complaint, err := s.Storage.GetComplaintByID(ctx, complaintID)
	if err != nil {
		return nil, wrapStoreError("resolve complaint", err)
	}
	if complaint == nil {
		return nil, utils.NewNotFoundError("complaint")
	}
	if _, err := s.member(ctx, userID, complaint.FlatID); err != nil {
		return nil, err
	}

	var resolved *models.Complaint
	credited := false
	err = s.withFlat(ctx, complaint.FlatID, func(tx storage.Storage) error {
		current, err := tx.GetComplaintByID(ctx, complaintID)
		if err != nil {
			return err
		}
		if !current.IsResolved {
			if err := tx.UpdateComplaint(ctx, complaintID, map[string]interface{}{"is_resolved": true}); err != nil {
				return err
			}
			if err := tx.AddKarma(ctx, userID, config.ResolveKarmaReward); err != nil {
				return err
			}
			credited = true
		}
		resolved, err = tx.GetComplaintByID(ctx, complaintID)
		return err
	})
	if err != nil {
		return nil, wrapStoreError("resolve complaint", err)
	}

	if credited {
		s.Log.Info().Uint("complaint_id", complaintID).Uint("user_id", userID).
			Int("karma", config.ResolveKarmaReward).Msg("complaint resolved, karma credited")
	} else {
		s.Log.Debug().Uint("complaint_id", complaintID).Msg("complaint already resolved")
	}
	return resolved, nil
}

// ArchiveStale archives every unarchived complaint that is net-downvoted and older
// than the retention window, flat by flat. It returns how many were archived.
func (s *Service) ArchiveStale(ctx context.Context) (int, error) {
	flatIDs, err := s.Storage.ListFlatIDs(ctx)
	if err != nil {
		return 0, wrapStoreError("archive stale complaints", err)
	}

	total := 0
	for _, flatID := range flatIDs {
		archived := 0
		err := s.withFlat(ctx, flatID, func(tx storage.Storage) error {
			archived = 0
			complaints, err := tx.ListUnarchivedComplaints(ctx, flatID)
			if err != nil {
				return err
			}
			now := s.Now()
			for _, c := range complaints {
				if !analysis.IsStale(c, now) {
					continue
				}
				fields := map[string]interface{}{"is_archived": true, "is_problem_of_week": false}
				if err := tx.UpdateComplaint(ctx, c.ID, fields); err != nil {
					return err
				}
				archived++
			}
			if archived == 0 {
				return nil
			}
			return s.refreshProblemOfWeek(ctx, tx, flatID)
		})
		if err != nil {
			return total, wrapStoreError("archive stale complaints", err)
		}
		if archived > 0 {
			s.Log.Info().Uint("flat_id", flatID).Int("archived", archived).Msg("stale complaints archived")
		}
		total += archived
	}
	return total, nil
}

// GetStats summarizes the flat's unarchived complaints.
func (s *Service) GetStats(ctx context.Context, flatID uint) (*models.FlatStats, error) {
	complaints, err := s.Storage.ListComplaintsInFlat(ctx, flatID)
	if err != nil {
		return nil, wrapStoreError("flat stats", err)
	}
	users, err := s.Storage.ListUsersInFlat(ctx, flatID)
	if err != nil {
		return nil, wrapStoreError("flat stats", err)
	}
	stats := analysis.BuildStats(complaints, len(users))
	return &stats, nil
}

// GetLeaderboard returns the flat's users by karma, highest first, ties by id.
func (s *Service) GetLeaderboard(ctx context.Context, flatID uint) ([]models.User, error) {
	users, err := s.Storage.ListUsersInFlat(ctx, flatID)
	if err != nil {
		return nil, wrapStoreError("leaderboard", err)
	}
	analysis.RankLeaderboard(users)
	return users, nil
}

// member loads the user and checks it belongs to flatID.
func (s *Service) member(ctx context.Context, userID, flatID uint) (*models.User, error) {
	user, err := s.Storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, wrapStoreError("load user", err)
	}
	if user == nil {
		return nil, utils.NewNotFoundError("user")
	}
	if !user.BelongsTo(flatID) {
		return nil, utils.NewForbiddenError("user is not a member of this flat")
	}
	return user, nil
}

// withFlat runs fn in one transaction while holding the flat's lock.
func (s *Service) withFlat(ctx context.Context, flatID uint, fn func(tx storage.Storage) error) error {
	unlock, err := s.Locker.Lock(ctx, flatID)
	if err != nil {
		return utils.NewAppError(utils.ErrUnavailable, "flat is busy", err)
	}
	defer unlock()
	return s.Storage.Transaction(ctx, fn)
}

// wrapStoreError keeps AppErrors as they are and turns anything else into a database error.
func wrapStoreError(op string, err error) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return utils.NewDatabaseError(op, err)
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
