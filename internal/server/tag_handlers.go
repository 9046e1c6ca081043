package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetTags handles GET /api/tags
// @Summary List tags
// @Description List known tags for autocomplete and browsing
// @Tags tags
// @Produce json
// @Param limit query int false "Page size"
// @Success 200 {object} object{tags=[]models.Tag}
// @Router /tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	tags, err := s.tagRepo.List(c.Context(), page.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"tags": tags})
}
