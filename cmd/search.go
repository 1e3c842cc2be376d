package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/docpane/docpane/pkg/config"
	"github.com/docpane/docpane/pkg/docsearch"
	"github.com/docpane/docpane/pkg/facets"
	"github.com/docpane/docpane/pkg/render"
	"github.com/docpane/docpane/pkg/results"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the documentation from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query",
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of result pages to fetch",
				Value: 1,
			},
			&cli.StringSliceFlag{
				Name:  "version",
				Usage: "Version override in the form group:version. Can be used multiple times",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return searchDocs(ctx, c.String("config"), c.String("query"), c.Int("pages"), c.StringSlice("version"))
		},
	}
}

// searchDocs runs one query against the configured backend and prints the
// accumulated pages the way the results page would show them.
func searchDocs(ctx context.Context, configPath, query string, pages int, overrides []string) error {
	if query == "" {
		return fmt.Errorf("a query is required (use --query)")
	}
	if pages < 1 {
		pages = 1
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	selection := facets.DefaultSelection(cfg.Groups)
	for _, override := range overrides {
		group, ver, ok := strings.Cut(override, ":")
		if !ok {
			return fmt.Errorf("version override %q must use the form group:version", override)
		}
		if err := selection.Select(cfg.Groups, group, ver); err != nil {
			return fmt.Errorf("selecting version: %w", err)
		}
	}

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBackend(); err != nil {
			fmt.Printf("Warning: failed to close backend: %v\n", err)
		}
	}()

	state := results.State{}.StartLoading(query)
	for fetched := 0; ; fetched++ {
		req := docsearch.Request{
			Query:   query,
			Page:    state.LastPage,
			PerPage: cfg.Search.PageSize,
			Params:  cfg.Search.Params,
		}
		if cfg.Search.Filter != "" {
			req.Filter = cfg.Search.Filter
		} else {
			req.Tags = facets.Tags(cfg.Groups, selection, cfg.Search.Locale)
		}

		resp, err := backend.Search(ctx, req)
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}

		next, ok := state.Apply(resp)
		if !ok {
			return fmt.Errorf("backend echoed query %q for %q", resp.Query, query)
		}
		state = next

		if fetched+1 >= pages {
			break
		}
		advanced, ok := state.Advance()
		if !ok {
			break
		}
		state = advanced
	}

	fmt.Print(render.FormatState(state))
	return nil
}
