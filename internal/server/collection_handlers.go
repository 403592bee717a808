package server

import (
	"gigbuddy/internal/models"
	"gigbuddy/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPublicCollections handles GET /api/collections
func (s *Server) GetPublicCollections(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	collections, err := s.collectionService.ListPublic(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, collections)
}

// GetMyCollections handles GET /api/collections/me
func (s *Server) GetMyCollections(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	collections, err := s.collectionService.ListMine(c.Context(), s.identity(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, collections)
}

// GetCollection handles GET /api/collections/:id
// Private collections are visible only to their owner or an admin.
func (s *Server) GetCollection(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	collection, err := s.collectionService.Get(c.Context(), s.optionalIdentity(c), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, collection)
}

// CreateCollection handles POST /api/collections
// @Summary Create collection
// @Tags collections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /collections [post]
func (s *Server) CreateCollection(c *fiber.Ctx) error {
	var req service.CreateCollectionInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.Create(c.Context(), s.identity(c), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, collection)
}

// UpdateCollection handles PUT /api/collections/:id
func (s *Server) UpdateCollection(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateCollectionInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	collection, err := s.collectionService.Update(c.Context(), s.identity(c), id, req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, collection)
}

// DeleteCollection handles DELETE /api/collections/:id
// Removes the collection and every one of its membership rows atomically.
func (s *Server) DeleteCollection(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.collectionService.Delete(c.Context(), s.identity(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Collection deleted")
}

// AddGigToCollection handles POST /api/collections/:id/gigs/:gigId
func (s *Server) AddGigToCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	gigID, err := s.parseID(c, "gigId")
	if err != nil {
		return nil
	}

	if err := s.collectionService.AddGig(c.Context(), s.identity(c), collectionID, gigID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondMessage(c, fiber.StatusCreated, "Gig added to collection")
}

// RemoveGigFromCollection handles DELETE /api/collections/:id/gigs/:gigId
func (s *Server) RemoveGigFromCollection(c *fiber.Ctx) error {
	collectionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	gigID, err := s.parseID(c, "gigId")
	if err != nil {
		return nil
	}

	if err := s.collectionService.RemoveGig(c.Context(), s.identity(c), collectionID, gigID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Gig removed from collection")
}
