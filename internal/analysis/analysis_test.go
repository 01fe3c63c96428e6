package analysis_test

import (
	"testing"
	"time"

	"flatgripe/backend/internal/analysis"
	"flatgripe/backend/internal/config"
	"flatgripe/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectProblemOfWeek(t *testing.T) {
	tests := []struct {
		name       string
		complaints []models.Complaint
		want       *uint
	}{
		{name: "empty flat", complaints: nil, want: nil},
		{
			name:       "all zero upvotes",
			complaints: []models.Complaint{{ID: 1}, {ID: 2, Downvotes: 4}},
			want:       nil,
		},
		{
			name: "strict maximum wins",
			complaints: []models.Complaint{
				{ID: 1, Upvotes: 3}, {ID: 2, Upvotes: 5}, {ID: 3, Upvotes: 0},
			},
			want: uintPtr(2),
		},
		{
			name: "tie goes to lowest id regardless of order",
			complaints: []models.Complaint{
				{ID: 7, Upvotes: 4}, {ID: 3, Upvotes: 4}, {ID: 5, Upvotes: 1},
			},
			want: uintPtr(3),
		},
		{
			name: "archived complaints are not eligible",
			complaints: []models.Complaint{
				{ID: 1, Upvotes: 9, IsArchived: true}, {ID: 2, Upvotes: 2},
			},
			want: uintPtr(2),
		},
		{
			name: "resolved complaints stay eligible",
			complaints: []models.Complaint{
				{ID: 1, Upvotes: 6, IsResolved: true}, {ID: 2, Upvotes: 2},
			},
			want: uintPtr(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analysis.SelectProblemOfWeek(tt.complaints))
		})
	}
}

func TestShouldPunish(t *testing.T) {
	existing := "already punished"

	assert.False(t, analysis.ShouldPunish(config.PunishmentThreshold-1, nil))
	assert.True(t, analysis.ShouldPunish(config.PunishmentThreshold, nil))
	assert.True(t, analysis.ShouldPunish(config.PunishmentThreshold+5, nil))
	assert.False(t, analysis.ShouldPunish(config.PunishmentThreshold+5, &existing))
	assert.False(t, analysis.ShouldPunish(0, &existing))
}

func TestPickPunishment(t *testing.T) {
	var gotN int
	first := analysis.PickPunishment(func(n int) int { gotN = n; return 0 })
	last := analysis.PickPunishment(func(n int) int { return n - 1 })

	assert.Equal(t, len(config.Punishments), gotN)
	assert.Equal(t, config.Punishments[0], first)
	assert.Equal(t, config.Punishments[len(config.Punishments)-1], last)
}

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	old := now.Add(-config.ArchiveRetention - time.Minute)
	fresh := now.Add(-config.ArchiveRetention + time.Minute)

	tests := []struct {
		name      string
		complaint models.Complaint
		want      bool
	}{
		{"old and net downvoted", models.Complaint{Upvotes: 1, Downvotes: 2, CreatedAt: old}, true},
		{"old but tied", models.Complaint{Upvotes: 2, Downvotes: 2, CreatedAt: old}, false},
		{"old but upvoted", models.Complaint{Upvotes: 3, Downvotes: 1, CreatedAt: old}, false},
		{"fresh and downvoted", models.Complaint{Downvotes: 5, CreatedAt: fresh}, false},
		{"already archived", models.Complaint{Downvotes: 5, CreatedAt: old, IsArchived: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analysis.IsStale(tt.complaint, now))
		})
	}
}

func TestBuildStats(t *testing.T) {
	complaints := []models.Complaint{
		{ID: 1, Type: models.TypeNoise, Upvotes: 3},
		{ID: 2, Type: models.TypeNoise, Upvotes: 5, IsProblemOfWeek: true},
		{ID: 3, Type: models.TypeBills, IsResolved: true},
		{ID: 4, Type: models.TypePets, IsArchived: true},
	}

	stats := analysis.BuildStats(complaints, 4)

	assert.Equal(t, map[models.ComplaintType]int{models.TypeNoise: 2, models.TypeBills: 1}, stats.ComplaintTypes)
	assert.Equal(t, 2, stats.ActiveComplaints)
	assert.Equal(t, 1, stats.ResolvedComplaints)
	assert.Equal(t, 4, stats.TotalFlatmates)
	require.NotNil(t, stats.ProblemOfWeek)
	assert.Equal(t, uint(2), stats.ProblemOfWeek.ID)
}

func TestBuildStats_Empty(t *testing.T) {
	stats := analysis.BuildStats(nil, 0)

	assert.NotNil(t, stats.ComplaintTypes)
	assert.Empty(t, stats.ComplaintTypes)
	assert.Nil(t, stats.ProblemOfWeek)
}

func TestRankLeaderboard(t *testing.T) {
	users := []models.User{
		{ID: 1, Karma: 50}, {ID: 2, Karma: 100}, {ID: 3, Karma: 50}, {ID: 4, Karma: 0},
	}

	analysis.RankLeaderboard(users)

	var order []uint
	for _, u := range users {
		order = append(order, u.ID)
	}
	assert.Equal(t, []uint{2, 1, 3, 4}, order)
}

func uintPtr(v uint) *uint { return &v }
