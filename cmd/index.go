package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/docpane/docpane/pkg/config"
	"github.com/docpane/docpane/pkg/localsearch"
)

// IndexCommand creates the index command and its subcommands
func IndexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Manage the local search index",
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Build the local index from a JSON Lines export",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Usage:    "Path to the records file (JSON Lines, one section per line)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Index location (defaults to the configured or XDG data path)",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return buildIndex(c.String("config"), c.String("input"), c.String("output"))
				},
			},
			{
				Name:  "stats",
				Usage: "Show local index statistics",
				Action: func(ctx context.Context, c *cli.Command) error {
					return indexStats(c.String("config"))
				},
			},
		},
	}
}

// buildIndex replaces the local index with one built from the export file.
func buildIndex(configPath, inputPath, outputPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if outputPath == "" {
		outputPath, err = indexPath(cfg)
		if err != nil {
			return err
		}
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening records file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close records file: %v\n", err)
		}
	}()

	records, err := localsearch.ReadRecords(f)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", inputPath)
	}

	// Rebuild from scratch: a stale index would keep serving sections that
	// no longer exist on the site.
	if err := os.RemoveAll(outputPath); err != nil {
		return fmt.Errorf("removing old index: %w", err)
	}

	ix, err := localsearch.Build(outputPath, records)
	if err != nil {
		return err
	}
	defer func() {
		if err := ix.Close(); err != nil {
			fmt.Printf("Warning: failed to close index: %v\n", err)
		}
	}()

	count, err := ix.DocCount()
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}
	fmt.Printf("Indexed %d records at %s\n", count, outputPath)
	return nil
}

func indexStats(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	path, err := indexPath(cfg)
	if err != nil {
		return err
	}

	ix, err := localsearch.Open(path)
	if err != nil {
		return fmt.Errorf("opening local index: %w", err)
	}
	defer func() {
		if err := ix.Close(); err != nil {
			fmt.Printf("Warning: failed to close index: %v\n", err)
		}
	}()

	count, err := ix.DocCount()
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}

	fmt.Printf("Index: %s\n", path)
	fmt.Printf("Documents: %d\n", count)
	return nil
}
