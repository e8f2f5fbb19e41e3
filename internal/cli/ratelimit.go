package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tansive/ghrest/pkg/api"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func (a *app) newRateLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Show the rate limit status and token scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connection()
			if err != nil {
				return err
			}
			rsp, err := api.Get[api.RateLimitResponse](cmd.Context(), conn, "rate_limit", nil)
			if err != nil {
				return err
			}
			info := conn.LastApiInfo()
			out := map[string]any{
				"rate":                  rsp.Body.Rate,
				"resources":             rsp.Body.Resources,
				"oauth_scopes":          info.OAuthScopes,
				"accepted_oauth_scopes": info.AcceptedOAuthScopes,
			}
			return a.print(cmd, out, func() {
				names := make([]string, 0, len(rsp.Body.Resources))
				for name := range rsp.Body.Resources {
					names = append(names, name)
				}
				sort.Strings(names)
				title := cases.Title(language.English)
				for _, name := range names {
					r := rsp.Body.Resources[name]
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d remaining, resets %s\n", title.String(name), r.Remaining, r.Limit, formatReset(r.Reset))
				}
				if len(info.OAuthScopes) > 0 {
					okLabel.Fprintf(cmd.OutOrStdout(), "Scopes: ")
					fmt.Fprintf(cmd.OutOrStdout(), "%v\n", info.OAuthScopes)
				}
			})
		},
	}
}
