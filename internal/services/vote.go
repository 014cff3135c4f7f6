package services

import (
	"context"
	"fmt"

	"parkpack/internal/domain"
)

type voteService struct {
	voteRepo domain.VoteRepository
}

// NewVoteService creates a VoteService over the given repository.
func NewVoteService(voteRepo domain.VoteRepository) domain.VoteService {
	return &voteService{
		voteRepo: voteRepo,
	}
}

// Toggle attempts the insert first. The uniqueness conflict is the toggle
// signal: AlreadyExists means the voter holds a vote, so the opposite
// operation (delete) runs instead. No client-side lock guards rapid taps on
// the same subject; interleavings settle because each attempt observes the
// backend's current truth.
func (s *voteService) Toggle(ctx context.Context, kind domain.VoteKind, subjectID, voterID string) (bool, error) {
	if subjectID == "" || voterID == "" {
		return false, domain.ErrInvalidInput
	}
	outcome, err := s.voteRepo.Insert(ctx, kind, subjectID, voterID)
	if err != nil {
		return false, fmt.Errorf("insert vote: %w", err)
	}
	switch outcome {
	case domain.OutcomeCreated:
		return true, nil
	case domain.OutcomeAlreadyExists:
		if err := s.voteRepo.Delete(ctx, kind, subjectID, voterID); err != nil {
			return true, fmt.Errorf("delete vote: %w", err)
		}
		return false, nil
	default:
		return false, fmt.Errorf("unexpected insert outcome %d", outcome)
	}
}

func (s *voteService) Unvote(ctx context.Context, kind domain.VoteKind, subjectID, voterID string) error {
	if err := s.voteRepo.Delete(ctx, kind, subjectID, voterID); err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	return nil
}

// TallyFor fetches the vote rows in two queries (all votes for the visible
// subjects, then the viewer's) and reduces them client-side. Counts and flags
// are never stored as columns.
func (s *voteService) TallyFor(ctx context.Context, kind domain.VoteKind, subjectIDs []string, viewerID string) (map[string]domain.Tally, error) {
	tallies := make(map[string]domain.Tally, len(subjectIDs))
	for _, id := range subjectIDs {
		tallies[id] = domain.Tally{}
	}
	if len(subjectIDs) == 0 {
		return tallies, nil
	}

	votes, err := s.voteRepo.ListBySubjects(ctx, kind, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	for _, v := range votes {
		t := tallies[v.SubjectID]
		t.Count++
		tallies[v.SubjectID] = t
	}

	mine, err := s.voteRepo.ListSubjectsVotedBy(ctx, kind, subjectIDs, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list own votes: %w", err)
	}
	for _, id := range mine {
		t := tallies[id]
		t.VotedByMe = true
		tallies[id] = t
	}
	return tallies, nil
}
