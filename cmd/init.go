package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/docpane/docpane/pkg/config"
)

// InitCommand creates the init command
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return initConfig(c.String("config"), c.Bool("force"))
		},
	}
}

// initConfig writes the annotated sample configuration. An existing file
// is left alone unless --force is given; a half-edited config is too easy
// to clobber otherwise.
func initConfig(configPath string, force bool) error {
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", configPath)
		}
	}

	cfg := config.GetDefaultConfig()
	if err := cfg.SaveTemplateConfig(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration initialized at %s\n", configPath)
	return nil
}
