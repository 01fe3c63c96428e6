package models

// VoteType is the direction of a vote on a complaint.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Vote records one user's opinion on one complaint.
// The composite unique index keeps at most one vote per (user, complaint).
type Vote struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	UserID      uint     `gorm:"not null;uniqueIndex:idx_vote_user_complaint,priority:1" json:"userId"`
	ComplaintID uint     `gorm:"not null;index;uniqueIndex:idx_vote_user_complaint,priority:2" json:"complaintId"`
	VoteType    VoteType `gorm:"type:text;not null" json:"voteType"`
}
