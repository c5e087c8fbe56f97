package server

import (
	"github.com/gofiber/fiber/v2"
)

// CheckIn handles POST /api/wellbeing/check-in
func (s *Server) CheckIn(c *fiber.Ctx) error {
	out, err := s.wellbeingService.CheckIn(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetGratitude handles GET /api/wellbeing/gratitude
func (s *Server) GetGratitude(c *fiber.Ctx) error {
	entries, err := s.wellbeingService.ListGratitude(c.UserContext(), currentUserID(c), parseLimit(c, 20))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// CreateGratitude handles POST /api/wellbeing/gratitude
func (s *Server) CreateGratitude(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	entry, err := s.wellbeingService.AddGratitude(c.UserContext(), currentUserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// CompleteMentalWorkout handles POST /api/wellbeing/mental-workout. The body
// may name the exercise kind; without one it is the dashboard workout.
func (s *Server) CompleteMentalWorkout(c *fiber.Ctx) error {
	var req struct {
		Kind string `json:"kind"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}
	return s.completeExercise(c, req.Kind)
}

// CompleteExercise handles POST /api/wellbeing/exercises/:kind
func (s *Server) CompleteExercise(c *fiber.Ctx) error {
	return s.completeExercise(c, c.Params("kind"))
}

func (s *Server) completeExercise(c *fiber.Ctx, kind string) error {
	g, err := s.wellbeingService.CompleteExercise(c.UserContext(), currentUserID(c), kind)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"coins_awarded": g.Total(),
		"reason":        g.Reason,
	})
}
