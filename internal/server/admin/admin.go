// Package admin implements the operator commands: applying schema
// migrations and granting or revoking the admin role.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/repomanager"
)

const usage = `usage: reviewhub-admin [flags] <command>

commands:
  migrate                  apply pending schema migrations
  grant-admin <username>   give a user the admin role
  revoke-admin <username>  take the admin role away`

var ErrUsage = errors.New(usage)

// Run executes the command found among args. Flag arguments are skipped;
// they have already been consumed by the configuration loader.
func Run(ctx context.Context, args []string, out io.Writer, rm repomanager.RepositoryManager, db *sql.DB) error {
	cmd := positionals(args)
	if len(cmd) == 0 {
		return ErrUsage
	}

	switch cmd[0] {
	case "migrate":
		if err := rm.RunMigrations(ctx, db); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations applied")
		return nil

	case "grant-admin", "revoke-admin":
		if len(cmd) != 2 {
			return ErrUsage
		}
		grant := cmd[0] == "grant-admin"
		if err := rm.Users(db).SetAdmin(ctx, cmd[1], grant); err != nil {
			return fmt.Errorf("%s %s: %w", cmd[0], cmd[1], err)
		}
		fmt.Fprintf(out, "%s: admin=%t (takes effect at next login)\n", cmd[1], grant)
		return nil

	default:
		return ErrUsage
	}
}

// positionals drops flags and the value following a bare flag.
func positionals(args []string) []string {
	var result []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		result = append(result, arg)
	}
	return result
}
