package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/source"
	"github.com/rubiojr/triplog/pkg/storage"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import journal entries into the SQLite index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "Directory or http(s) URL to import from (defaults to the configured source)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runImport(ctx, c.String("config"), c.String("from"))
		},
	}
}

func runImport(ctx context.Context, configPath, from string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	src, err := importSource(cfg, from)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}
	st, err := storage.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := importEntries(ctx, src, st)
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Imported journal into %s", cfg.DBPath())))
	fmt.Println(metaStyle.Render(fmt.Sprintf("%d entries, days %d to %d", stats.Entries, stats.FirstDay, stats.LastDay)))
	return nil
}

// importSource picks where entries come from: --from when given, otherwise
// the configured source unless that is the index itself.
func importSource(cfg *config.Config, from string) (source.Source, error) {
	switch {
	case strings.HasPrefix(from, "http://") || strings.HasPrefix(from, "https://"):
		return source.NewHTTPSource(from, cfg.Source.Timeout.Duration)
	case from != "":
		return source.NewDirSource(from)
	case cfg.Source.Type == config.SourceSQLite:
		return nil, fmt.Errorf("the configured source is the index itself, use --from")
	}
	return source.New(cfg)
}

// importEntries copies every entry from src into st. Unlike serving, a
// failed fetch or an empty journal is an error here: importing nothing would
// look like success.
func importEntries(ctx context.Context, src source.Source, st *storage.Storage) (storage.Stats, error) {
	content, err := src.Content(ctx)
	if err != nil {
		return storage.Stats{}, fmt.Errorf("fetching entries: %w", err)
	}
	if content.Len() == 0 {
		return storage.Stats{}, fmt.Errorf("no entries to import")
	}
	if err := st.StoreEntries(ctx, content.Items()); err != nil {
		return storage.Stats{}, err
	}
	if err := st.Optimize(); err != nil {
		return storage.Stats{}, err
	}
	return st.Stats(ctx)
}
