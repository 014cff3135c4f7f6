package domain

import (
	"context"
	"time"
)

// VoteKind distinguishes what a vote attaches to.
type VoteKind string

const (
	VotePhoto  VoteKind = "photo"
	VoteReview VoteKind = "review"
)

// Vote is one voter's mark on one subject. Existence is the whole record;
// there is no vote payload and no stored count.
type Vote struct {
	Kind      VoteKind  `json:"kind"`
	SubjectID string    `json:"subject_id"`
	VoterID   string    `json:"voter_id"`
	CreatedAt time.Time `json:"created_at"`
}

// InsertOutcome reports whether a vote insert created a row or hit the
// uniqueness constraint. The conflict is expected control flow for toggling,
// not an error.
type InsertOutcome int

const (
	OutcomeCreated InsertOutcome = iota + 1
	OutcomeAlreadyExists
)

// Tally is the reduced vote state of one subject as seen by one viewer.
// swagger:model Tally
type Tally struct {
	Count     int  `json:"count"`
	VotedByMe bool `json:"voted_by_me"`
}

// VoteRepository defines storage operations for votes.
type VoteRepository interface {
	Insert(ctx context.Context, kind VoteKind, subjectID, voterID string) (InsertOutcome, error)
	// Delete removes the vote if present. Deleting an absent vote is not an
	// error.
	Delete(ctx context.Context, kind VoteKind, subjectID, voterID string) error
	ListBySubjects(ctx context.Context, kind VoteKind, subjectIDs []string) ([]*Vote, error)
	ListSubjectsVotedBy(ctx context.Context, kind VoteKind, subjectIDs []string, voterID string) ([]string, error)
}

// VoteService defines the vote toggle protocol and tally reduction.
type VoteService interface {
	// Toggle flips the viewer's vote on the subject and reports the resulting
	// state: true when a vote now exists, false when it was removed.
	Toggle(ctx context.Context, kind VoteKind, subjectID, voterID string) (bool, error)
	Unvote(ctx context.Context, kind VoteKind, subjectID, voterID string) error
	// TallyFor returns a Tally for every requested subject, including zero
	// entries for subjects with no votes.
	TallyFor(ctx context.Context, kind VoteKind, subjectIDs []string, viewerID string) (map[string]Tally, error)
}
