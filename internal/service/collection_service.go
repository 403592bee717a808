package service

import (
	"context"
	"fmt"

	"gigbuddy/internal/auth"
	"gigbuddy/internal/models"
	"gigbuddy/internal/repository"

	"github.com/gofiber/fiber/v2"
)

const (
	maxCollectionNameLen        = 100
	maxCollectionDescriptionLen = 2000
)

// CollectionService owns collection business rules.
type CollectionService struct {
	collectionRepo repository.CollectionRepository
}

// CreateCollectionInput is the payload for creating a collection.
type CreateCollectionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

// UpdateCollectionInput is the payload for updating a collection. Nil
// fields are left unchanged.
type UpdateCollectionInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Public      *bool   `json:"public"`
}

// NewCollectionService returns a CollectionService backed by the given repository.
func NewCollectionService(collectionRepo repository.CollectionRepository) *CollectionService {
	return &CollectionService{collectionRepo: collectionRepo}
}

// Create validates the input and persists a collection owned by the identity.
func (s *CollectionService) Create(ctx context.Context, identity auth.Identity, in CreateCollectionInput) (*models.Collection, error) {
	var details []models.FieldError
	if in.Name == "" {
		details = append(details, models.FieldError{Field: "name", Message: "name is required"})
	}
	if len(in.Name) > maxCollectionNameLen {
		details = append(details, models.FieldError{Field: "name", Message: fmt.Sprintf("name must not exceed %d characters", maxCollectionNameLen)})
	}
	if len(in.Description) > maxCollectionDescriptionLen {
		details = append(details, models.FieldError{Field: "description", Message: fmt.Sprintf("description must not exceed %d characters", maxCollectionDescriptionLen)})
	}
	if len(details) > 0 {
		return nil, models.NewValidationError("Invalid collection", details...)
	}

	collection := &models.Collection{
		Name:        in.Name,
		Description: in.Description,
		Public:      in.Public,
		UserID:      identity.ID,
	}
	if err := s.collectionRepo.Create(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// Get returns a collection with its gigs. Private collections are visible
// only to their owner or an admin; the existence check still runs first so
// a missing collection is a 404 for everyone.
func (s *CollectionService) Get(ctx context.Context, viewer *auth.Identity, id uint) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !collection.Public {
		if viewer == nil {
			return nil, models.NewAuthenticationError(models.CodeAuthRequired,
				fiber.StatusUnauthorized, "Authentication required")
		}
		if err := auth.RequireOwner(*viewer, collection.UserID); err != nil {
			return nil, err
		}
	}
	return collection, nil
}

// ListPublic returns public collections.
func (s *CollectionService) ListPublic(ctx context.Context, limit, offset int) ([]models.Collection, error) {
	return s.collectionRepo.ListPublic(ctx, limit, offset)
}

// ListMine returns all collections owned by the identity, public and private.
func (s *CollectionService) ListMine(ctx context.Context, identity auth.Identity, limit, offset int) ([]models.Collection, error) {
	return s.collectionRepo.ListByUser(ctx, identity.ID, limit, offset)
}

// Update applies a partial update after the ownership guard passes.
func (s *CollectionService) Update(ctx context.Context, identity auth.Identity, id uint, in UpdateCollectionInput) (*models.Collection, error) {
	ownerID, err := s.collectionRepo.OwnerID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(identity, ownerID); err != nil {
		return nil, err
	}

	collection, err := s.collectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" || len(*in.Name) > maxCollectionNameLen {
			return nil, models.NewValidationError("Invalid collection name")
		}
		collection.Name = *in.Name
	}
	if in.Description != nil {
		if len(*in.Description) > maxCollectionDescriptionLen {
			return nil, models.NewValidationError("Description too long")
		}
		collection.Description = *in.Description
	}
	if in.Public != nil {
		collection.Public = *in.Public
	}

	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// Delete removes the collection and all of its membership rows after the
// ownership guard passes.
func (s *CollectionService) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	ownerID, err := s.collectionRepo.OwnerID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(identity, ownerID); err != nil {
		return err
	}
	return s.collectionRepo.Delete(ctx, id)
}

// AddGig adds a gig to a collection after the ownership guard passes.
// Adding a pair already present is rejected with a conflict and never
// creates a duplicate row.
func (s *CollectionService) AddGig(ctx context.Context, identity auth.Identity, collectionID, gigID uint) error {
	ownerID, err := s.collectionRepo.OwnerID(ctx, collectionID)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(identity, ownerID); err != nil {
		return err
	}
	return s.collectionRepo.AddGig(ctx, collectionID, gigID)
}

// RemoveGig removes a gig from a collection after the ownership guard passes.
func (s *CollectionService) RemoveGig(ctx context.Context, identity auth.Identity, collectionID, gigID uint) error {
	ownerID, err := s.collectionRepo.OwnerID(ctx, collectionID)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(identity, ownerID); err != nil {
		return err
	}
	return s.collectionRepo.RemoveGig(ctx, collectionID, gigID)
}
