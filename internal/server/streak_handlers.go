package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetBadges handles GET /api/badges
func (s *Server) GetBadges(c *fiber.Ctx) error {
	return c.JSON(s.streakService.Badges())
}

// GetStreak handles GET /api/streak
func (s *Server) GetStreak(c *fiber.Ctx) error {
	view, err := s.streakService.GetStreak(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// ReportRelapse handles POST /api/streak/relapse
func (s *Server) ReportRelapse(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}

	view, err := s.streakService.Relapse(c.UserContext(), currentUserID(c), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// RestartStreak handles POST /api/streak/restart
func (s *Server) RestartStreak(c *fiber.Ctx) error {
	view, err := s.streakService.Restart(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// GetRelapses handles GET /api/streak/relapses
func (s *Server) GetRelapses(c *fiber.Ctx) error {
	entries, err := s.wellbeingService.ListRelapses(c.UserContext(), currentUserID(c), parseLimit(c, 20))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
