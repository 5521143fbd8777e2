// Package access decides whether an authenticated principal may mutate a
// resource. Ownership is the default rule; admins may act on anything.
package access

import (
	"fmt"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/dmitrijs2005/reviewhub/internal/server/auth"
)

// Authorize returns nil when p owns the resource recorded as ownerID or
// holds the admin role, and common.ErrForbidden otherwise.
//
// Callers load the resource before asking, so a missing resource surfaces
// as common.ErrNotFound and an existing foreign one as common.ErrForbidden.
func Authorize(p auth.Principal, ownerID string) error {
	if p.UserID == "" {
		return common.ErrUnauthorized
	}
	if p.Admin {
		return nil
	}
	if ownerID == "" || p.UserID != ownerID {
		return fmt.Errorf("%w: not the owner", common.ErrForbidden)
	}
	return nil
}
