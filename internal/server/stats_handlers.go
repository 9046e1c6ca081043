package server

import (
	"gitforum/internal/cache"
	"gitforum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PlatformStats is the public activity summary served at /api/stats.
type PlatformStats struct {
	Users    int64 `json:"users"`
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
	Likes    int64 `json:"likes"`
	Views    int64 `json:"views"`
}

// GetPlatformStats handles GET /api/stats
// @Summary Platform activity summary
// @Tags stats
// @Produce json
// @Success 200 {object} server.PlatformStats
// @Router /stats [get]
func (s *Server) GetPlatformStats(c *fiber.Ctx) error {
	var stats PlatformStats

	fetch := func() error {
		db := s.db.WithContext(c.Context())
		counts := []struct {
			model any
			dest  *int64
		}{
			{&models.User{}, &stats.Users},
			{&models.Post{}, &stats.Posts},
			{&models.Comment{}, &stats.Comments},
			{&models.Like{}, &stats.Likes},
			{&models.PostView{}, &stats.Views},
		}
		for _, cnt := range counts {
			if err := db.Model(cnt.model).Count(cnt.dest).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	}

	if err := cache.Aside(c.Context(), cache.StatsKey, &stats, cache.StatsTTL, fetch); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(stats)
}
