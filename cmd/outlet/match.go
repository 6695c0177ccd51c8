package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/pkg/route"
	"github.com/vango-dev/outlet/pkg/routepath"
)

func matchCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Show the routes a path matches",
		Long: `Match a path against the route tree without running loaders.

Examples:
  outlet match /users/7
  outlet match "/files/a/b?x=1" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			c, err := routepath.Canonicalize(args[0])
			if err != nil {
				return errors.Newf(errors.CategoryCLI, "invalid path %q", args[0]).Wrap(err)
			}

			matches, found := a.tree.Match(c.Path)
			if !found {
				matches = a.tree.NotFoundMatches()
			}
			if asJSON {
				return printMatchesJSON(cmd, c.Path, found, matches)
			}
			printMatches(cmd, c.Path, found, matches)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print matches as JSON")

	return cmd
}

func printMatches(cmd *cobra.Command, path string, found bool, matches route.Matches) {
	out := cmd.OutOrStdout()
	if !found {
		fmt.Fprintf(out, "no route matches %s\n", path)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPATHNAME\tPARAMS")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Pathname, formatParams(m.Params))
	}
	w.Flush()
}

func printMatchesJSON(cmd *cobra.Command, path string, found bool, matches route.Matches) error {
	type matchJSON struct {
		ID           string       `json:"id"`
		Pathname     string       `json:"pathname"`
		PathnameBase string       `json:"pathnameBase"`
		Params       route.Params `json:"params"`
	}
	body := struct {
		Path    string      `json:"path"`
		Found   bool        `json:"found"`
		Matches []matchJSON `json:"matches"`
	}{Path: path, Found: found}
	for _, m := range matches {
		body.Matches = append(body.Matches, matchJSON{m.ID, m.Pathname, m.PathnameBase, m.Params.Clone()})
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(body)
}

func formatParams(p route.Params) string {
	if len(p) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, " ")
}
