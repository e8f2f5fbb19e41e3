package cli

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tansive/ghrest/pkg/api"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func (a *app) newListCmd() *cobra.Command {
	var params []string
	var opts api.PageOptions
	var field string
	cmd := &cobra.Command{
		Use:   "list ENDPOINT [flags]",
		Short: "List a collection, following pagination",
		Long: `List a collection. Pages are fetched in order by following the "next" link until
the collection ends or --page-count pages were fetched.

Examples:
  # List all open issues
  ghrest list repos/octocat/hello-world/issues -p state=open

  # List the second page of 50 issues only
  ghrest list repos/octocat/hello-world/issues --page-size 50 --start-page 2 --page-count 1

  # Search results wrap the list in an object
  ghrest list search/issues -p q=repo:octocat/hello-world --field items`,
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
			call := api.Call{Method: http.MethodGet, Endpoint: args[0], Parameters: p}
			var seq *api.Sequence[any]
			if field != "" {
				seq = api.PaginateField[any](conn, call, opts, field)
			} else {
				seq = api.Paginate[any](conn, call, opts)
			}
			items, err := seq.Collect(cmd.Context())
			if err != nil {
				return err
			}
			if items == nil {
				items = []any{}
			}
			return a.print(cmd, items, func() {
				printItemsHumanReadable(cmd, resourceName(args[0]), items)
				fmt.Fprintf(cmd.ErrOrStderr(), "%d items from %d pages\n", len(items), seq.PagesFetched())
				a.printRateLimit(cmd, seq.LastApiInfo())
			})
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Query parameter as key=value, repeatable")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Items per page (per_page)")
	cmd.Flags().IntVar(&opts.PageCount, "page-count", 0, "Maximum number of pages to fetch")
	cmd.Flags().IntVar(&opts.StartPage, "start-page", 0, "First page to fetch")
	cmd.Flags().StringVar(&field, "field", "", "Path of the list inside each page, for wrapped results")
	return cmd
}

// resourceName returns the last path segment of an endpoint.
func resourceName(endpoint string) string {
	p, _, _ := strings.Cut(endpoint, "?")
	return path.Base(strings.TrimRight(p, "/"))
}

// printItemsHumanReadable prints one line per item using the first identifying field
// the item has.
func printItemsHumanReadable(cmd *cobra.Command, resource string, items []any) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", cases.Title(language.English).String(strings.ReplaceAll(resource, "_", " ")))
	for _, item := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", describeItem(item))
	}
}

func describeItem(item any) string {
	m, ok := item.(map[string]any)
	if !ok {
		return fmt.Sprint(item)
	}
	if n, ok := m["number"]; ok {
		return fmt.Sprintf("#%v %v", n, m["title"])
	}
	for _, key := range []string{"full_name", "name", "login", "sha", "id"} {
		if v, ok := m[key]; ok {
			return fmt.Sprint(v)
		}
	}
	out, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprint(m)
	}
	return string(out)
}
