package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/router"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session and the page it routes to",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := contextOrBackground(cmd.Context())
	rt, err := openRuntime(ctx, cmd.OutOrStdout(), domain.HashNone)
	if err != nil {
		return err
	}
	defer rt.Close()

	return printStatus(ctx, rt, cmd.OutOrStdout())
}

func printStatus(ctx context.Context, rt *clientRuntime, out io.Writer) error {
	storeState := "ok"
	if err := rt.storage.Ping(ctx); err != nil {
		storeState = "unreachable: " + err.Error()
	}
	fmt.Fprintf(out, "store:   %s (%s)\n", rt.storage.Backend, storeState)
	fmt.Fprintf(out, "api:     %s\n", rt.cfg.API.BaseURL)

	claims, decodeErr := rt.app.Current(ctx)
	decision := router.Decide(claims, decodeErr, rt.app.Nav.Hash())
	switch {
	case decision.InvalidRole:
		fmt.Fprintf(out, "session: unrecognized role %q\n", claims.Role)
	case decision.State.Authenticated():
		fmt.Fprintf(out, "session: %s (%s)\n", claims.Role, describeUser(claims))
		if claims.ExpiresAt != nil {
			fmt.Fprintf(out, "expires: %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
		}
	default:
		fmt.Fprintln(out, "session: signed out")
	}
	if decision.Page != "" {
		fmt.Fprintf(out, "page:    %s\n", decision.Page)
	}
	return nil
}

func describeUser(claims *domain.Claims) string {
	if claims.Email != "" {
		return claims.Email
	}
	return "user " + claims.UserID
}
