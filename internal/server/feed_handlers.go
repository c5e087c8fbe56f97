package server

import (
	"sankalpa/internal/feed"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed?mode=relevant|recent|following.
// Unknown modes fall back to relevant.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	mode, _ := feed.ParseMode(c.Query("mode"))

	ranked, err := s.feedService.Feed(c.UserContext(), currentUserID(c), mode)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"mode":  mode,
		"posts": ranked,
	})
}
