package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/pkg/navigation"
	"github.com/vango-dev/outlet/pkg/route"
)

func navigateCmd(flags *rootFlags) *cobra.Command {
	var (
		method string
		data   []string
		from   string
	)

	cmd := &cobra.Command{
		Use:   "navigate <path>",
		Short: "Run loaders and actions for a path and print the plan",
		Long: `Run a navigation and print the resolved plan as JSON.

Without --from the navigation is a document load. With --from, the
first path is loaded as a document and the target runs as a client
transition that can reuse its loader data.

Examples:
  outlet navigate /users/7
  outlet navigate /action/child-catch --method=POST --data name=ada
  outlet navigate /about --from /`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := parseForm(data)
			if err != nil {
				return err
			}
			a, err := loadApp(flags)
			if err != nil {
				return err
			}

			nav := navigation.New(a.runner(), navigation.WithLogger(a.logger.With("component", "navigation")))
			ctx := cmd.Context()
			req := &route.Request{Method: strings.ToUpper(method), Path: args[0], Form: form}

			if from == "" && !req.IsSubmission() {
				plan, err := nav.Document(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd, plan)
			}
			if from != "" {
				if _, err := nav.Document(ctx, &route.Request{Method: http.MethodGet, Path: from}); err != nil {
					return err
				}
			}
			plan, err := nav.Navigate(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, plan)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method; POST, PUT, PATCH and DELETE run actions")
	cmd.Flags().StringArrayVarP(&data, "data", "d", nil, "Form field as key=value (repeatable)")
	cmd.Flags().StringVar(&from, "from", "", "Load this path first and navigate from it")

	return cmd
}

func parseForm(fields []string) (url.Values, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	form := url.Values{}
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return nil, errors.New("E410").WithDetail("Form fields are passed as key=value, got " + f + ".")
		}
		form.Add(k, v)
	}
	return form, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
