package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parkpack/internal/domain"
)

type mediaService struct {
	mediaRepo domain.MediaRepository
	votes     domain.VoteService
	now       func() time.Time
}

// NewMediaService creates a MediaService that attaches vote tallies on reads.
func NewMediaService(mediaRepo domain.MediaRepository, votes domain.VoteService) domain.MediaService {
	return &mediaService{
		mediaRepo: mediaRepo,
		votes:     votes,
		now:       time.Now,
	}
}

func (s *mediaService) AddPhoto(ctx context.Context, p *domain.Photo) error {
	if p.LocationID == "" || p.UploaderID == "" || p.URL == "" {
		return domain.ErrInvalidInput
	}
	p.CreatedAt = s.now()
	if err := s.mediaRepo.CreatePhoto(ctx, p); err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

func (s *mediaService) AddReview(ctx context.Context, r *domain.Review) error {
	if r.LocationID == "" || r.AuthorID == "" {
		return domain.ErrInvalidInput
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(r.Body) == "" {
		return fmt.Errorf("%w: review body is required", domain.ErrInvalidInput)
	}
	r.CreatedAt = s.now()
	if err := s.mediaRepo.CreateReview(ctx, r); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (s *mediaService) ListPhotos(ctx context.Context, locationID, viewerID string) ([]*domain.PhotoWithTally, error) {
	photos, err := s.mediaRepo.ListPhotosByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	ids := make([]string, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	tallies, err := s.votes.TallyFor(ctx, domain.VotePhoto, ids, viewerID)
	if err != nil {
		return nil, fmt.Errorf("tally photo votes: %w", err)
	}
	out := make([]*domain.PhotoWithTally, len(photos))
	for i, p := range photos {
		out[i] = &domain.PhotoWithTally{Photo: p, Tally: tallies[p.ID]}
	}
	return out, nil
}

func (s *mediaService) ListReviews(ctx context.Context, locationID, viewerID string) ([]*domain.ReviewWithTally, error) {
	reviews, err := s.mediaRepo.ListReviewsByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	ids := make([]string, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}
	tallies, err := s.votes.TallyFor(ctx, domain.VoteReview, ids, viewerID)
	if err != nil {
		return nil, fmt.Errorf("tally review votes: %w", err)
	}
	out := make([]*domain.ReviewWithTally, len(reviews))
	for i, r := range reviews {
		out[i] = &domain.ReviewWithTally{Review: r, Tally: tallies[r.ID]}
	}
	return out, nil
}
