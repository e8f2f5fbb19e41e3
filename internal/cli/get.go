package cli

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/tansive/ghrest/internal/common/httpclient"
	"github.com/tansive/ghrest/pkg/api"
)

func (a *app) newGetCmd() *cobra.Command {
	var params []string
	var accept string
	cmd := &cobra.Command{
		Use:   "get ENDPOINT [flags]",
		Short: "Get a resource",
		Long: `Get a resource. ENDPOINT is relative to the configured server, or an absolute URL.
JSON bodies are pretty printed, other bodies are written as they are.

Examples:
  # Get a repository
  ghrest get repos/octocat/hello-world

  # Get the raw README
  ghrest get repos/octocat/hello-world/readme --accept application/vnd.github.raw

  # Get a commit as YAML
  ghrest get repos/octocat/hello-world/git/commits/7638417d --yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseParams(params)
			if err != nil {
				return err
			}
			conn, err := a.connection()
			if err != nil {
				return err
			}
			raw, info, err := conn.Send(cmd.Context(), api.Call{
				Method:     http.MethodGet,
				Endpoint:   args[0],
				Parameters: p,
				Accepts:    accept,
			})
			if err != nil {
				return err
			}
			return a.printResponse(cmd, raw, info)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Query parameter as key=value, repeatable")
	cmd.Flags().StringVar(&accept, "accept", "", "Accept header override")
	return cmd
}

func (a *app) printResponse(cmd *cobra.Command, raw *httpclient.Response, info *api.ApiInfo) error {
	if api.IsJSONMediaType(raw.ContentType) {
		body, parsed, err := api.DeserializeResponse[any](raw)
		if err != nil {
			return err
		}
		if !parsed {
			body = map[string]any{}
		}
		if a.yamlOutput {
			return printYAML(cmd.OutOrStdout(), body)
		}
		if err := a.printJSON(cmd, body); err != nil {
			return err
		}
	} else if _, err := cmd.OutOrStdout().Write(raw.BodyBytes()); err != nil {
		return err
	}
	if !a.jsonOutput && !a.yamlOutput {
		a.printRateLimit(cmd, info)
	}
	return nil
}

// printRateLimit writes a one line rate limit summary to stderr.
func (a *app) printRateLimit(cmd *cobra.Command, info *api.ApiInfo) {
	if info == nil || info.RateLimit.Limit == 0 {
		return
	}
	label := okLabel
	if info.RateLimit.Remaining*10 < info.RateLimit.Limit {
		label = warnLabel
	}
	label.Fprintf(cmd.ErrOrStderr(), "Rate limit: %d/%d remaining, resets %s\n",
		info.RateLimit.Remaining, info.RateLimit.Limit, info.RateLimit.Reset.Local().Format(time.RFC3339))
}

func formatReset(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}
