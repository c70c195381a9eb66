package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/routepath"
)

func resolveCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show which view a path resolves to",
		Long: `Resolve a path against the route table and print the redirect
chain and the view it reaches.

Examples:
  navctl resolve /
  navctl resolve "/module2?tab=1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, table, err := loadTable(cmd.Context(), flags)
			if err != nil {
				return err
			}

			loc, err := routepath.CanonicalizeNav(args[0])
			if err != nil {
				return errors.ErrInvalidPath.WithPath(args[0]).Wrap(err)
			}

			out := cmd.OutOrStdout()
			res, err := table.ResolveWithRedirects(loc.Path)
			if err != nil {
				if cfg.NotFoundView != "" && usesNotFoundView(err) {
					info(out, "path:  %s", loc.Path)
					info(out, "view:  %s (%s)", cfg.NotFoundView, fallbackReason(err))
					return nil
				}
				return err
			}

			info(out, "path:  %s", res.Requested)
			if res.Redirected() {
				info(out, "chain: %s", strings.Join(res.Chain, " → "))
			}
			info(out, "view:  %s", res.Route.View)
			if full := routepath.Join(res.Path, loc.Query, loc.Fragment); full != res.Path {
				info(out, "url:   %s", full)
			}
			return nil
		},
	}
	return cmd
}

// usesNotFoundView reports whether a session router would mount the
// not-found view for err.
func usesNotFoundView(err error) bool {
	switch errors.CodeOf(err) {
	case errors.CodeNotFound, errors.CodeRedirectCycle:
		return true
	}
	return false
}

func fallbackReason(err error) string {
	if errors.CodeOf(err) == errors.CodeRedirectCycle {
		return "redirect cycle"
	}
	return "not found"
}

func routesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := loadTable(cmd.Context(), flags)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatRoutes(table))
			return nil
		},
	}
	return cmd
}
