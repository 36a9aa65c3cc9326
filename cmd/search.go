package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/triplog/pkg/source"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search journal entries",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (0 for no limit)",
				Value: 10,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("a search query is required")
			}
			return searchJournal(ctx, c.String("config"), query, c.Int("limit"))
		},
	}
}

func searchJournal(ctx context.Context, configPath, query string, limit int) error {
	env, err := openJournal(configPath)
	if err != nil {
		return err
	}
	defer env.Close()

	snap := source.Load(ctx, env.src)
	if err := env.indexEntries(ctx, snap.Content.Items()); err != nil {
		return fmt.Errorf("indexing entries: %w", err)
	}

	res := env.filter().Apply(ctx, query, snap.Content.Items())
	if len(res.Items) == 0 {
		fmt.Println(noDataStyle.Render(fmt.Sprintf("No entries match %q", query)))
		return nil
	}

	items := res.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("%d entries match %q (%s)", len(res.Items), query, env.cfg.Search.Engine)))
	for _, item := range items {
		fmt.Println(formatEntry(item))
	}
	return nil
}
