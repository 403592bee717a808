package service

import (
	"context"

	"gigbuddy/internal/models"
	"gigbuddy/internal/repository"
	"gigbuddy/internal/validation"

	"gorm.io/datatypes"
)

const maxBioLen = 500

// UserService owns profile business rules.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput is the payload for updating the caller's profile.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	Username    *string            `json:"username"`
	Bio         *string            `json:"bio"`
	Avatar      *string            `json:"avatar"`
	Location    *string            `json:"location"`
	Website     *string            `json:"website"`
	SocialLinks *map[string]string `json:"social_links"`
}

// NewUserService returns a UserService backed by the given repository.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID returns a user profile. The password hash never serializes.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns registered users, newest first.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateProfile applies a partial profile update for the given user.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error(),
				models.FieldError{Field: "username", Message: err.Error()})
		}
		user.Username = *in.Username
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)",
				models.FieldError{Field: "bio", Message: "bio too long"})
		}
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Location != nil {
		user.Location = *in.Location
	}
	if in.Website != nil {
		user.Website = *in.Website
	}
	if in.SocialLinks != nil {
		links := datatypes.JSONMap{}
		for k, v := range *in.SocialLinks {
			links[k] = v
		}
		user.SocialLinks = links
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes a user's role. Callers gate this behind the admin guard.
func (s *UserService) SetRole(ctx context.Context, targetID uint, role models.UserRole) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
