package models_test

import (
	"flatgripe/backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplaintType_Valid(t *testing.T) {
	for _, ct := range models.ComplaintTypes {
		assert.True(t, ct.Valid(), "%s should be valid", ct)
	}
	assert.False(t, models.ComplaintType("Smell").Valid())
	assert.False(t, models.ComplaintType("noise").Valid(), "categories are case sensitive")
	assert.False(t, models.ComplaintType("").Valid())
}

func TestSeverity_Valid(t *testing.T) {
	tests := []struct {
		severity models.Severity
		want     bool
	}{
		{models.SeverityMild, true},
		{models.SeverityAnnoying, true},
		{models.SeverityMajor, true},
		{models.SeverityNuclear, true},
		{"Apocalyptic", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.severity.Valid())
		})
	}
}

func TestVoteType_Valid(t *testing.T) {
	assert.True(t, models.VoteUp.Valid())
	assert.True(t, models.VoteDown.Valid())
	assert.False(t, models.VoteType("sideways").Valid())
	assert.False(t, models.VoteType("").Valid())
}
