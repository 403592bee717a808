package server

import (
	"gigbuddy/internal/models"
	"gigbuddy/internal/repository"
	"gigbuddy/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetGigs handles GET /api/gigs
// @Summary List gigs
// @Description Public gig listing with optional genre/status filters
// @Tags gigs
// @Produce json
// @Success 200 {object} models.Envelope
// @Router /gigs [get]
func (s *Server) GetGigs(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	filter := repository.GigFilter{
		Genre:        c.Query("genre"),
		Status:       models.GigStatus(c.Query("status")),
		UpcomingOnly: c.QueryBool("upcoming", false),
	}

	gigs, err := s.gigService.List(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, gigs)
}

// GetGig handles GET /api/gigs/:id
func (s *Server) GetGig(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	gig, err := s.gigService.Get(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, gig)
}

// GetUserGigs handles GET /api/users/:id/gigs
func (s *Server) GetUserGigs(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	gigs, err := s.gigService.ListByUser(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, gigs)
}

// CreateGig handles POST /api/gigs
// @Summary Create gig
// @Tags gigs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /gigs [post]
func (s *Server) CreateGig(c *fiber.Ctx) error {
	var req service.CreateGigInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	gig, err := s.gigService.Create(c.Context(), s.identity(c), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, gig)
}

// UpdateGig handles PUT /api/gigs/:id
func (s *Server) UpdateGig(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateGigInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	gig, err := s.gigService.Update(c.Context(), s.identity(c), id, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, gig)
}

// DeleteGig handles DELETE /api/gigs/:id
func (s *Server) DeleteGig(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.gigService.Delete(c.Context(), s.identity(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Gig deleted")
}
