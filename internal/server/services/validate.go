package services

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/reviewhub/internal/common"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 6
	maxPasswordLen = 72

	maxTitleLen   = 200
	maxTagCount   = 20
	maxTagLen     = 50
	maxCommentLen = 2000
	minRating     = 0
	maxRating     = 10
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

func validateUsername(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minUsernameLen || n > maxUsernameLen {
		return validationError("username must be %d to %d characters", minUsernameLen, maxUsernameLen)
	}
	if !usernamePattern.MatchString(name) {
		return validationError("username may contain only letters, digits, '_', '.' and '-'")
	}
	return nil
}

// validateEmail accepts a bare address only; "Name <a@b>" forms are rejected.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return validationError("email is not a valid address")
	}
	return nil
}

func validatePassword(password string) error {
	n := len(password)
	if n < minPasswordLen || n > maxPasswordLen {
		return validationError("password must be %d to %d bytes", minPasswordLen, maxPasswordLen)
	}
	return nil
}

func validateReview(in ReviewInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return validationError("title is required")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return validationError("title must be at most %d characters", maxTitleLen)
	}
	if strings.TrimSpace(in.Item) == "" {
		return validationError("item is required")
	}
	if strings.TrimSpace(in.Group) == "" {
		return validationError("group is required")
	}
	if strings.TrimSpace(in.Text) == "" {
		return validationError("text is required")
	}
	if in.Rating < minRating || in.Rating > maxRating {
		return validationError("rating must be between %d and %d", minRating, maxRating)
	}
	if len(in.Tags) > maxTagCount {
		return validationError("at most %d tags are allowed", maxTagCount)
	}
	for _, tag := range in.Tags {
		if strings.TrimSpace(tag) == "" || utf8.RuneCountInString(tag) > maxTagLen {
			return validationError("tags must be 1 to %d characters", maxTagLen)
		}
	}
	return nil
}

func validateComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return validationError("text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return validationError("text must be at most %d characters", maxCommentLen)
	}
	return nil
}

// validID reports whether id can name a stored row. Anything else cannot
// exist, so callers answer common.ErrNotFound without touching the database.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
