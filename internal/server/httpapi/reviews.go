package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/reviewhub/internal/server/services"
)

func emptyIfNil[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}

func (s *HTTPServer) listReviews(c *fiber.Ctx) error {
	reviews, err := s.reviews.List(c.UserContext(), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return err
	}
	return c.JSON(emptyIfNil(reviews))
}

func (s *HTTPServer) listUserReviews(c *fiber.Ctx) error {
	reviews, err := s.reviews.ListByUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(emptyIfNil(reviews))
}

func (s *HTTPServer) getReview(c *fiber.Ctx) error {
	review, err := s.reviews.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(review)
}

func (s *HTTPServer) createReview(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	review, err := s.reviews.Create(c.UserContext(), principal(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (s *HTTPServer) updateReview(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	review, err := s.reviews.Update(c.UserContext(), principal(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(review)
}

func (s *HTTPServer) deleteReview(c *fiber.Ctx) error {
	if err := s.reviews.Delete(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) requestImageUpload(c *fiber.Ctx) error {
	upload, err := s.reviews.RequestImageUpload(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(upload)
}

func (s *HTTPServer) imageURL(c *fiber.Ctx) error {
	url, err := s.reviews.ImageURL(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": url})
}

type commentRequest struct {
	Text string `json:"text"`
}

func (s *HTTPServer) listComments(c *fiber.Ctx) error {
	comments, err := s.comments.ListByReview(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(emptyIfNil(comments))
}

func (s *HTTPServer) createComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := s.comments.Create(c.UserContext(), principal(c), c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (s *HTTPServer) updateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := s.comments.Update(c.UserContext(), principal(c), c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(comment)
}

func (s *HTTPServer) deleteComment(c *fiber.Ctx) error {
	if err := s.comments.Delete(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

