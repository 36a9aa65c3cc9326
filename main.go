package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/triplog/cmd"
	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/log"
)

var logger = log.ForService("triplog")

func main() {
	app := &cli.Command{
		Name:  "triplog",
		Usage: "A travel journal over a map of GPS tracks",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: getDefaultConfigPathOrExit(),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			log.SetGlobalDebug(c.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.WebCommand(),
			cmd.ImportCommand(),
			cmd.SearchCommand(),
			cmd.DaysCommand(),
			cmd.TracksCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("%v", err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
