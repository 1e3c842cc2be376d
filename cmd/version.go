package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/docpane/docpane/pkg/version"
)

// VersionCommand creates the version command
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "short",
				Usage: "Print only the version number",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("short") {
				fmt.Println(version.Version)
				return nil
			}
			fmt.Printf("%s (%s %s/%s)\n", version.BuildVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
