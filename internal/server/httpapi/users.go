package httpapi

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/reviewhub/internal/common"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrValidation)
	}
	return nil
}

func (s *HTTPServer) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := s.users.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		s.metrics.Registration(resultLabel(err))
		return err
	}

	s.metrics.Registration("created")
	s.logger.Info(c.UserContext(), "Registered", "username", user.UserName, "user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := s.users.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		s.metrics.Login(resultLabel(err))
		return err
	}

	s.metrics.Login("success")
	return c.JSON(session)
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, common.ErrValidation):
		return "invalid"
	case errors.Is(err, common.ErrConflict):
		return "conflict"
	case errors.Is(err, common.ErrUnauthorized):
		return "failure"
	default:
		return "error"
	}
}

func (s *HTTPServer) listUsers(c *fiber.Ctx) error {
	users, err := s.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(emptyIfNil(users))
}

func (s *HTTPServer) getUser(c *fiber.Ctx) error {
	user, err := s.users.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (s *HTTPServer) me(c *fiber.Ctx) error {
	user, err := s.users.FindByID(c.UserContext(), principal(c).UserID)
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: account no longer exists", common.ErrUnauthorized)
	}
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (s *HTTPServer) deleteUser(c *fiber.Ctx) error {
	if err := s.users.Delete(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
