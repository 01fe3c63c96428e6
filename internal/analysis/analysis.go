// Package analysis holds the pure scoring rules of the ledger: problem-of-the-week
// selection, punishment triggering, staleness for archival, flat statistics and
// leaderboard ordering. Nothing here touches storage.
package analysis

import (
	"sort"
	"time"

	"flatgripe/backend/internal/config"
	"flatgripe/backend/internal/models"
)

// SelectProblemOfWeek returns the id of the complaint with the most upvotes among
// the unarchived ones, or nil when there is none or the maximum is zero.
// Ties go to the lowest id.
func SelectProblemOfWeek(complaints []models.Complaint) *uint {
	var top *models.Complaint
	for i := range complaints {
		c := &complaints[i]
		if c.IsArchived {
			continue
		}
		if top == nil || c.Upvotes > top.Upvotes || (c.Upvotes == top.Upvotes && c.ID < top.ID) {
			top = c
		}
	}
	if top == nil || top.Upvotes <= 0 {
		return nil
	}
	id := top.ID
	return &id
}

// ShouldPunish reports whether a punishment must be assigned now.
// A complaint that already carries one is never punished again.
func ShouldPunish(upvotes int, current *string) bool {
	return current == nil && upvotes >= config.PunishmentThreshold
}

// PickPunishment draws one entry of the catalog; intn must return a value in [0, n).
func PickPunishment(intn func(n int) int) string {
	return config.Punishments[intn(len(config.Punishments))]
}

// IsStale reports whether the sweeper should archive c at time now.
func IsStale(c models.Complaint, now time.Time) bool {
	return !c.IsArchived &&
		c.Downvotes > c.Upvotes &&
		c.CreatedAt.Before(now.Add(-config.ArchiveRetention))
}

// BuildStats aggregates the dashboard figures. Archived complaints are skipped.
func BuildStats(complaints []models.Complaint, flatmates int) models.FlatStats {
	stats := models.FlatStats{
		ComplaintTypes: make(map[models.ComplaintType]int),
		TotalFlatmates: flatmates,
	}
	for i := range complaints {
		c := complaints[i]
		if c.IsArchived {
			continue
		}
		stats.ComplaintTypes[c.Type]++
		if c.IsResolved {
			stats.ResolvedComplaints++
		} else {
			stats.ActiveComplaints++
		}
		if c.IsProblemOfWeek && stats.ProblemOfWeek == nil {
			stats.ProblemOfWeek = &c
		}
	}
	return stats
}

// RankLeaderboard orders users by karma descending, then id ascending.
func RankLeaderboard(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].Karma != users[j].Karma {
			return users[i].Karma > users[j].Karma
		}
		return users[i].ID < users[j].ID
	})
}
