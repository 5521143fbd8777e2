package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/dmitrijs2005/reviewhub/internal/server/auth"
)

type localsKey string

const principalKey localsKey = "principal"

// requireAuth admits only requests carrying a valid token in the
// Authorization header, either bare or with the Bearer scheme. Every failure
// ends the request with 401 before any handler runs.
func (s *HTTPServer) requireAuth(c *fiber.Ctx) error {
	ctx := c.UserContext()

	token := bearerToken(c.Get(common.AuthorizationHeaderName))
	if token == "" {
		s.metrics.AuthFailure("missing")
		s.logger.Warn(ctx, "rejected request", "reason", "missing", "path", c.Path())
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}

	p, err := s.tokens.Verify(token)
	if err != nil {
		reason := failureReason(err)
		s.metrics.AuthFailure(reason)
		s.logger.Warn(ctx, "rejected request", "reason", reason, "path", c.Path())
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	c.Locals(principalKey, p)
	c.SetUserContext(auth.ContextWithPrincipal(ctx, p))
	return c.Next()
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, rest, ok := strings.Cut(header, " ")
	if ok && strings.EqualFold(scheme, common.BearerScheme) {
		return strings.TrimSpace(rest)
	}
	return header
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "expired"
	case errors.Is(err, common.ErrInvalidSignature):
		return "signature"
	default:
		return "malformed"
	}
}

// principal returns the caller admitted by requireAuth.
func principal(c *fiber.Ctx) auth.Principal {
	if p, ok := c.Locals(principalKey).(auth.Principal); ok {
		return p
	}
	p, _ := auth.PrincipalFromContext(c.UserContext())
	return p
}

// observe logs and counts every request once the chain has produced a
// response. Errors are rendered here so the recorded status is final.
func (s *HTTPServer) observe(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.errorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	latency := time.Since(start)
	route := c.Route().Path

	s.metrics.ObserveRequest(c.Method(), route, status, latency)
	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"latency", latency,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)
	return nil
}

// errorHandler renders err as {"error": message}. Unexpected errors are
// logged and answered with a generic 500.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	code, msg := statusFor(err)
	if code == fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
		msg = "internal error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, common.ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, common.ErrUnauthorized):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrForbidden):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, common.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	default:
		return fiber.StatusInternalServerError, ""
	}
}
