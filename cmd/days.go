package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/paginate"
	"github.com/rubiojr/triplog/pkg/source"
)

// DaysCommand creates the days command
func DaysCommand() *cli.Command {
	return &cli.Command{
		Name:  "days",
		Usage: "List journal days, a page at a time",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page to show",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Days per page (defaults to journal.wide_page_size)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return listDays(ctx, c.String("config"), c.Int("page"), c.Int("page-size"))
		},
	}
}

func listDays(ctx context.Context, configPath string, page, pageSize int) error {
	env, err := openJournal(configPath)
	if err != nil {
		return err
	}
	defer env.Close()

	if pageSize <= 0 {
		pageSize = env.cfg.Journal.WidePageSize
	}
	items := source.Load(ctx, env.src).Content.Items()
	if len(items) == 0 {
		fmt.Println(noDataStyle.Render("The journal is empty."))
		return nil
	}

	res := paginate.Paginate(len(items), page, pageSize, env.cfg.Journal.MaxPageButtons)
	fmt.Println(titleStyle.Render(fmt.Sprintf("Page %d of %d, %d days", res.CurrentPage, res.TotalPages, res.TotalItems)))
	for _, item := range items[res.StartIndex : res.EndIndex+1] {
		fmt.Println(formatEntry(item))
	}
	return nil
}

// formatEntry is one line per day: number, route and a muted summary.
func formatEntry(item journal.ContentItem) string {
	route := item.Fields.Locations.Route()
	if route == "" {
		route = journal.ParseHeadings(item.Title, false).Main
	}

	var meta []string
	if item.Date != "" {
		meta = append(meta, item.Date)
	}
	stats := item.Fields.MilesAndElevation
	if stats.RestDay {
		meta = append(meta, "Rest Day")
	} else if stats.Miles != "" {
		meta = append(meta, stats.Miles+" mi")
	}
	if w := strings.TrimSpace(item.Fields.Weather); w != "" {
		meta = append(meta, strings.TrimSpace(label(w)+" "+journal.WeatherEmoji(w)))
	}

	line := dayStyle.Render("Day "+item.Day().String()) + routeStyle.Render(route)
	if len(meta) > 0 {
		line += "  " + metaStyle.Render(strings.Join(meta, " · "))
	}
	return line
}
