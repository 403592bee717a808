package server

import (
	"strings"

	"gigbuddy/internal/auth"
	"gigbuddy/internal/models"
	"gigbuddy/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
// @Summary User registration
// @Description Register a new user account and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var details []models.FieldError
	if err := validation.ValidateUsername(req.Username); err != nil {
		details = append(details, models.FieldError{Field: "username", Message: err.Error()})
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		details = append(details, models.FieldError{Field: "email", Message: err.Error()})
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		details = append(details, models.FieldError{Field: "password", Message: err.Error()})
	}
	if len(details) > 0 {
		return models.RespondWithError(c, models.NewValidationError("Invalid registration", details...))
	}

	// Check first for a friendly conflict; the unique index still backs
	// this up under concurrent registration.
	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if existing != nil {
		return models.RespondWithError(c, models.NewConflictError("A user with this email already exists"))
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     models.RoleMember,
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return models.Respond(c, fiber.StatusCreated, fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate a user and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	// Same response for unknown email and wrong password.
	if user == nil || !auth.CheckPassword(req.Password, user.Password) {
		return models.RespondWithError(c, models.NewAuthenticationError(
			models.CodeAuthRequired, fiber.StatusUnauthorized, "Invalid credentials"))
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  user,
	})
}
