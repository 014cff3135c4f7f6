package domain

import (
	"context"
	"time"
)

// Photo is a user-submitted park photo. Image selection and content moderation
// happen outside this layer; only the stored reference lives here.
// swagger:model Photo
type Photo struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	UploaderID string    `json:"uploader_id"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption"`
	CreatedAt  time.Time `json:"created_at"`
}

// Review is a user-submitted park review.
// swagger:model Review
type Review struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	AuthorID   string    `json:"author_id"`
	Rating     int       `json:"rating"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// PhotoWithTally bundles a photo with its reduced vote tally.
// swagger:model PhotoWithTally
type PhotoWithTally struct {
	Photo *Photo `json:"photo"`
	Tally Tally  `json:"tally"`
}

// ReviewWithTally bundles a review with its reduced vote tally.
// swagger:model ReviewWithTally
type ReviewWithTally struct {
	Review *Review `json:"review"`
	Tally  Tally   `json:"tally"`
}

// MediaRepository defines storage operations for park photos and reviews.
type MediaRepository interface {
	CreatePhoto(ctx context.Context, p *Photo) error
	ListPhotosByLocation(ctx context.Context, locationID string) ([]*Photo, error)
	CreateReview(ctx context.Context, r *Review) error
	ListReviewsByLocation(ctx context.Context, locationID string) ([]*Review, error)
}

// MediaService defines read/write access to park media, with vote tallies
// attached on the read side.
type MediaService interface {
	AddPhoto(ctx context.Context, p *Photo) error
	AddReview(ctx context.Context, r *Review) error
	ListPhotos(ctx context.Context, locationID, viewerID string) ([]*PhotoWithTally, error)
	ListReviews(ctx context.Context, locationID, viewerID string) ([]*ReviewWithTally, error)
}
