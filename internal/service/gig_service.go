// Package service implements business rules on top of the repositories:
// input validation, existence checks, and ownership enforcement. Existence
// is always resolved before ownership so a missing resource yields 404, not
// 403.
package service

import (
	"context"
	"fmt"
	"time"

	"gigbuddy/internal/auth"
	"gigbuddy/internal/models"
	"gigbuddy/internal/repository"
)

const (
	maxGigTitleLen       = 200
	maxGigDescriptionLen = 5000
	maxVenueLen          = 200
)

// GigService owns gig business rules.
type GigService struct {
	gigRepo repository.GigRepository
	now     func() time.Time
}

// CreateGigInput is the payload for creating a gig.
type CreateGigInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	EventTime   time.Time `json:"event_time"`
	Genre       string    `json:"genre"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	TicketURL   string    `json:"ticket_url"`
}

// UpdateGigInput is the payload for updating a gig. Nil fields are left
// unchanged.
type UpdateGigInput struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Venue       *string           `json:"venue"`
	EventTime   *time.Time        `json:"event_time"`
	Genre       *string           `json:"genre"`
	Price       *float64          `json:"price"`
	ImageURL    *string           `json:"image_url"`
	TicketURL   *string           `json:"ticket_url"`
	Status      *models.GigStatus `json:"status"`
}

// NewGigService returns a GigService backed by the given repository.
func NewGigService(gigRepo repository.GigRepository) *GigService {
	return &GigService{gigRepo: gigRepo, now: time.Now}
}

// Create validates the input and persists a gig owned by the identity.
func (s *GigService) Create(ctx context.Context, identity auth.Identity, in CreateGigInput) (*models.Gig, error) {
	var details []models.FieldError
	if in.Title == "" {
		details = append(details, models.FieldError{Field: "title", Message: "title is required"})
	}
	if len(in.Title) > maxGigTitleLen {
		details = append(details, models.FieldError{Field: "title", Message: fmt.Sprintf("title must not exceed %d characters", maxGigTitleLen)})
	}
	if len(in.Description) > maxGigDescriptionLen {
		details = append(details, models.FieldError{Field: "description", Message: fmt.Sprintf("description must not exceed %d characters", maxGigDescriptionLen)})
	}
	if in.Venue == "" {
		details = append(details, models.FieldError{Field: "venue", Message: "venue is required"})
	}
	if len(in.Venue) > maxVenueLen {
		details = append(details, models.FieldError{Field: "venue", Message: fmt.Sprintf("venue must not exceed %d characters", maxVenueLen)})
	}
	if in.EventTime.IsZero() || !in.EventTime.After(s.now()) {
		details = append(details, models.FieldError{Field: "event_time", Message: "event time must be in the future"})
	}
	if !models.ValidGenre(in.Genre) {
		details = append(details, models.FieldError{Field: "genre", Message: "genre must be one of the supported genres"})
	}
	if in.Price < 0 {
		details = append(details, models.FieldError{Field: "price", Message: "price must not be negative"})
	}
	if len(details) > 0 {
		return nil, models.NewValidationError("Invalid gig", details...)
	}

	gig := &models.Gig{
		Title:       in.Title,
		Description: in.Description,
		Venue:       in.Venue,
		EventTime:   in.EventTime,
		Genre:       in.Genre,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		TicketURL:   in.TicketURL,
		Status:      models.GigStatusActive,
		UserID:      identity.ID,
	}
	if err := s.gigRepo.Create(ctx, gig); err != nil {
		return nil, err
	}
	return gig, nil
}

// Get returns a gig by ID.
func (s *GigService) Get(ctx context.Context, id uint) (*models.Gig, error) {
	return s.gigRepo.GetByID(ctx, id)
}

// List returns gigs matching the filter.
func (s *GigService) List(ctx context.Context, filter repository.GigFilter, limit, offset int) ([]models.Gig, error) {
	if filter.Genre != "" && !models.ValidGenre(filter.Genre) {
		return nil, models.NewValidationError("Unknown genre filter")
	}
	if filter.Status != "" && !models.ValidGigStatus(filter.Status) {
		return nil, models.NewValidationError("Unknown status filter")
	}
	return s.gigRepo.List(ctx, filter, limit, offset)
}

// ListByUser returns the gigs owned by a user.
func (s *GigService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Gig, error) {
	return s.gigRepo.GetByUserID(ctx, userID, limit, offset)
}

// Update applies a partial update to a gig after the ownership guard passes.
func (s *GigService) Update(ctx context.Context, identity auth.Identity, gigID uint, in UpdateGigInput) (*models.Gig, error) {
	ownerID, err := s.gigRepo.OwnerID(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(identity, ownerID); err != nil {
		return nil, err
	}

	gig, err := s.gigRepo.GetByID(ctx, gigID)
	if err != nil {
		return nil, err
	}

	var details []models.FieldError
	if in.Title != nil {
		if *in.Title == "" || len(*in.Title) > maxGigTitleLen {
			details = append(details, models.FieldError{Field: "title", Message: "invalid title"})
		} else {
			gig.Title = *in.Title
		}
	}
	if in.Description != nil {
		if len(*in.Description) > maxGigDescriptionLen {
			details = append(details, models.FieldError{Field: "description", Message: "description too long"})
		} else {
			gig.Description = *in.Description
		}
	}
	if in.Venue != nil {
		if *in.Venue == "" || len(*in.Venue) > maxVenueLen {
			details = append(details, models.FieldError{Field: "venue", Message: "invalid venue"})
		} else {
			gig.Venue = *in.Venue
		}
	}
	if in.EventTime != nil {
		gig.EventTime = *in.EventTime
	}
	if in.Genre != nil {
		if !models.ValidGenre(*in.Genre) {
			details = append(details, models.FieldError{Field: "genre", Message: "genre must be one of the supported genres"})
		} else {
			gig.Genre = *in.Genre
		}
	}
	if in.Price != nil {
		if *in.Price < 0 {
			details = append(details, models.FieldError{Field: "price", Message: "price must not be negative"})
		} else {
			gig.Price = *in.Price
		}
	}
	if in.ImageURL != nil {
		gig.ImageURL = *in.ImageURL
	}
	if in.TicketURL != nil {
		gig.TicketURL = *in.TicketURL
	}
	if in.Status != nil {
		if !models.ValidGigStatus(*in.Status) {
			details = append(details, models.FieldError{Field: "status", Message: "unknown status"})
		} else {
			gig.Status = *in.Status
		}
	}
	if len(details) > 0 {
		return nil, models.NewValidationError("Invalid gig", details...)
	}

	if err := s.gigRepo.Update(ctx, gig); err != nil {
		return nil, err
	}
	return gig, nil
}

// Delete removes a gig after the ownership guard passes. Membership rows in
// every collection referencing the gig are removed in the same transaction.
func (s *GigService) Delete(ctx context.Context, identity auth.Identity, gigID uint) error {
	ownerID, err := s.gigRepo.OwnerID(ctx, gigID)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(identity, ownerID); err != nil {
		return err
	}
	return s.gigRepo.Delete(ctx, gigID)
}
