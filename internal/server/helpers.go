package server

import (
	"errors"

	"gigbuddy/internal/auth"
	"gigbuddy/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxPaginationLimit = 100

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid "+param+" parameter"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// identity returns the verified identity attached by AuthRequired.
func (s *Server) identity(c *fiber.Ctx) auth.Identity {
	return c.Locals("identity").(auth.Identity)
}

// optionalIdentity returns the identity attached by OptionalAuth, or nil
// when the request is anonymous.
func (s *Server) optionalIdentity(c *fiber.Ctx) *auth.Identity {
	if v := c.Locals("identity"); v != nil {
		if identity, ok := v.(auth.Identity); ok {
			return &identity
		}
	}
	return nil
}
