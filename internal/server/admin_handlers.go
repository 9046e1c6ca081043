package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/admin/feature-flags
// @Summary List configured feature flags
// @Description Configured flag values plus their evaluation for the caller,
// @Description which shows where a percentage rollout lands for this account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{flags=object,evaluated=object}
// @Failure 403 {object} object{error=string}
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	return c.JSON(fiber.Map{
		"flags":     s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}

// ReconcileCounters handles POST /api/admin/reconcile-counters
// @Summary Reconcile denormalized counters
// @Description Recompute every denormalized counter from ground truth and
// @Description repair any drift. Returns a per-counter drift report.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} counters.Report
// @Failure 403 {object} object{error=string}
// @Router /admin/reconcile-counters [post]
func (s *Server) ReconcileCounters(c *fiber.Ctx) error {
	report, err := s.counterEngine.Reconcile(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(report)
}
